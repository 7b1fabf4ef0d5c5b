package mse

import (
	"context"
	"log/slog"
	"strings"

	"vizmse/internal/logging"
	"vizmse/internal/msehttp"
	"vizmse/internal/pep"
	"vizmse/internal/services"
)

// Endpoint holds the engine addresses.
type Endpoint struct {
	Hostname string
	RESTHost string
	RESTPort int
}

// CommandHost returns the host that serves HTTP commands.
func (e Endpoint) CommandHost() string {
	if host := strings.TrimSpace(e.RESTHost); host != "" {
		return host
	}
	return e.Hostname
}

// Playlist is the activation state of one playlist.
type Playlist struct {
	ID               string
	ActiveProfile    string
	HasActiveProfile bool
}

// Active reports whether the playlist is initialized on a profile.
func (p *Playlist) Active() bool {
	return p != nil && p.HasActiveProfile
}

// Engine is the engine-wide surface a rundown depends on.
type Engine interface {
	CheckConnection(ctx context.Context) error
	Pep() pep.Client
	GetPlaylist(ctx context.Context, id string) (*Playlist, error)
	Endpoint() Endpoint
}

// Session implements Engine over a property-tree client.
type Session struct {
	pep      pep.Client
	endpoint Endpoint
	logger   *slog.Logger
}

var _ Engine = (*Session)(nil)

// NewSession wraps client and endpoint into an Engine.
func NewSession(client pep.Client, endpoint Endpoint, logger *slog.Logger) *Session {
	return &Session{
		pep:      client,
		endpoint: endpoint,
		logger:   logging.NewComponentLogger(logger, "mse"),
	}
}

func (s *Session) Pep() pep.Client { return s.pep }

func (s *Session) Endpoint() Endpoint { return s.endpoint }

// CheckConnection verifies the property-tree connection is usable.
func (s *Session) CheckConnection(ctx context.Context) error {
	if s.pep == nil {
		return services.Wrap(services.ErrConfiguration, "mse", "check connection", "no property-tree client", nil)
	}
	if err := s.pep.Ping(ctx); err != nil {
		return services.Wrap(services.ErrTransport, "mse", "check connection", "property tree unreachable", err)
	}
	return nil
}

// GetPlaylist reads the playlist node and its active_profile entry. A
// playlist is active when active_profile carries a value.
func (s *Session) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	if err := s.CheckConnection(ctx); err != nil {
		return nil, err
	}
	res, err := s.pep.GetJS(ctx, msehttp.PlaylistPath(id), 1)
	if err != nil {
		return nil, err
	}
	entry := pep.Flatten(res.Tree)
	playlist := &Playlist{ID: id}
	if profile := entry.Child("active_profile"); profile != nil && profile.Value != "" {
		playlist.ActiveProfile = profile.Value
		playlist.HasActiveProfile = true
	}
	s.logger.Debug("playlist state",
		logging.String(logging.FieldRundown, id),
		logging.Bool("active", playlist.HasActiveProfile),
	)
	return playlist, nil
}
