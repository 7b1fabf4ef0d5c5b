package rundown

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vizmse/internal/logging"
	"vizmse/internal/mse"
	"vizmse/internal/msehttp"
	"vizmse/internal/pep"
	"vizmse/internal/services"
)

const defaultCreator = "vizmse"

// Commander issues HTTP commands for one profile. *msehttp.Client satisfies it.
type Commander interface {
	Command(ctx context.Context, verb, target string) (*msehttp.CommandResult, error)
	InitializePlaylist(ctx context.Context, playlistID string) (*msehttp.CommandResult, error)
	CleanupPlaylist(ctx context.Context, playlistID string) (*msehttp.CommandResult, error)
	CleanupShow(ctx context.Context, showID string) (*msehttp.CommandResult, error)
}

// Options configures a Rundown.
type Options struct {
	Show        string
	Profile     string
	Playlist    string
	Description string
	// Creator is stamped on internal elements. Defaults to "vizmse".
	Creator string
	// Prefetch populates the channel map in the background at construction.
	Prefetch bool
	// Commands overrides the HTTP command client built from the engine endpoint.
	Commands    Commander
	HTTPOptions []msehttp.Option
	Logger      *slog.Logger
	// Now is the clock used for element timestamps.
	Now func() time.Time
}

// Rundown coordinates one show and one playlist against an engine.
type Rundown struct {
	show        string
	playlist    string
	profile     string
	description string
	creator     string

	engine   mse.Engine
	commands Commander
	channels *ChannelMap
	logger   *slog.Logger
	now      func() time.Time

	ready chan struct{}
}

// New binds a rundown to engine. Show, playlist and profile identifiers are
// normalized to their bare form. When opts.Prefetch is set, the channel map is
// populated in the background; a failure there is logged and otherwise
// ignored.
func New(ctx context.Context, engine mse.Engine, opts Options) (*Rundown, error) {
	if engine == nil {
		return nil, services.Wrap(services.ErrConfiguration, "rundown", "new", "engine is required", nil)
	}
	show := NormalizeShow(strings.TrimSpace(opts.Show))
	playlist := NormalizePlaylist(strings.TrimSpace(opts.Playlist))
	profile := NormalizeProfile(strings.TrimSpace(opts.Profile))
	if show == "" || playlist == "" {
		return nil, services.Wrap(services.ErrUsage, "rundown", "new", "show and playlist are required", nil)
	}
	if profile == "" {
		return nil, services.Wrap(services.ErrUsage, "rundown", "new", "profile is required", nil)
	}

	r := &Rundown{
		show:        show,
		playlist:    playlist,
		profile:     profile,
		description: opts.Description,
		creator:     strings.TrimSpace(opts.Creator),
		engine:      engine,
		commands:    opts.Commands,
		now:         opts.Now,
		ready:       make(chan struct{}),
	}
	if r.creator == "" {
		r.creator = defaultCreator
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.logger = logging.NewComponentLogger(opts.Logger, "rundown").With(
		logging.String(logging.FieldRundown, r.label()),
	)
	if r.commands == nil {
		endpoint := engine.Endpoint()
		httpOpts := append([]msehttp.Option{msehttp.WithLogger(opts.Logger)}, opts.HTTPOptions...)
		r.commands = msehttp.New(profile, endpoint.CommandHost(), endpoint.RESTPort, httpOpts...)
	}
	r.channels = newChannelMap(r.resolveChannel, r.ListElements, r.logger)

	if !opts.Prefetch {
		close(r.ready)
		return r, nil
	}
	go func() {
		defer close(r.ready)
		if err := r.channels.EnsureAll(ctx); err != nil {
			logging.WarnWithContext(r.logger, "failed to build channel map", "channel_map_prefetch",
				logging.Error(err),
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.String(logging.FieldErrorHint, "channels resolve on first command instead"),
				logging.String(logging.FieldImpact, "first command per external element fetches its channel"),
			)
		}
	}()
	return r, nil
}

// WaitReady blocks until construction-time prefetch finishes or ctx ends.
func (r *Rundown) WaitReady(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Rundown) Show() string        { return r.show }
func (r *Rundown) Playlist() string    { return r.playlist }
func (r *Rundown) Profile() string     { return r.profile }
func (r *Rundown) Description() string { return r.description }

// Channels exposes the rundown's channel map.
func (r *Rundown) Channels() *ChannelMap { return r.channels }

func (r *Rundown) pep() pep.Client { return r.engine.Pep() }

func (r *Rundown) label() string {
	if r.description != "" {
		return r.description
	}
	return r.show + "/" + r.playlist
}

func (r *Rundown) opLogger(ctx context.Context, op string) *slog.Logger {
	return logging.WithContext(services.WithOperation(ctx, op), r.logger)
}
