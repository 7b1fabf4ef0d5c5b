package msehttp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vizmse/internal/logging"
	"vizmse/internal/services"
)

const (
	userAgent         = "vizmse/0.1.0"
	defaultTimeout    = 10 * time.Second
	maxResponseBytes  = 1 << 20
	maxErrorBodyBytes = 2048
)

// Verbs understood by the command interface.
const (
	VerbCue             = "cue"
	VerbTake            = "take"
	VerbContinue        = "continue"
	VerbContinueReverse = "continue_reverse"
	VerbOut             = "out"
	VerbInitialize      = "initialize"
	VerbCleanup         = "cleanup"
)

// HTTPDoer describes the HTTP client used to reach the command interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CommandResult is the reply to one command.
type CommandResult struct {
	Status   int    `json:"status"`
	Response string `json:"response"`
	Path     string `json:"path"`
	Body     string `json:"body"`
}

// StatusError reports a non-2xx reply from the command interface.
type StatusError struct {
	Verb       string
	Target     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: engine returned %d", e.Verb, e.Target, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is lets errors.Is match services.ErrTransport.
func (e *StatusError) Is(target error) bool {
	return target == services.ErrTransport
}

// Client addresses one profile on one engine host.
type Client struct {
	profile string
	host    string
	port    int
	client  HTTPDoer
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "msehttp")
	}
}

// New constructs a client for profile at host:port.
func New(profile, host string, port int, opts ...Option) *Client {
	c := &Client{
		profile: strings.TrimSpace(profile),
		host:    strings.TrimSpace(host),
		port:    port,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logging.NewComponentLogger(nil, "msehttp"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Profile returns the addressed profile.
func (c *Client) Profile() string { return c.profile }

// BaseURL returns the scheme, host and port used for requests.
func (c *Client) BaseURL() string {
	return "http://" + net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

func (c *Client) Cue(ctx context.Context, path string) (*CommandResult, error) {
	return c.Command(ctx, VerbCue, path)
}

func (c *Client) Take(ctx context.Context, path string) (*CommandResult, error) {
	return c.Command(ctx, VerbTake, path)
}

func (c *Client) Continue(ctx context.Context, path string) (*CommandResult, error) {
	return c.Command(ctx, VerbContinue, path)
}

func (c *Client) ContinueReverse(ctx context.Context, path string) (*CommandResult, error) {
	return c.Command(ctx, VerbContinueReverse, path)
}

func (c *Client) Out(ctx context.Context, path string) (*CommandResult, error) {
	return c.Command(ctx, VerbOut, path)
}

// InitializePlaylist activates the playlist on the profile.
func (c *Client) InitializePlaylist(ctx context.Context, playlistID string) (*CommandResult, error) {
	return c.Command(ctx, VerbInitialize, PlaylistPath(playlistID))
}

// CleanupPlaylist deactivates the playlist on the profile.
func (c *Client) CleanupPlaylist(ctx context.Context, playlistID string) (*CommandResult, error) {
	return c.Command(ctx, VerbCleanup, PlaylistPath(playlistID))
}

// CleanupShow clears the show's graphics from the profile.
func (c *Client) CleanupShow(ctx context.Context, showID string) (*CommandResult, error) {
	return c.Command(ctx, VerbCleanup, ShowPath(showID))
}

// PlaylistPath returns the tree path of a playlist given its bare identifier.
func PlaylistPath(id string) string {
	return "/storage/playlists/{" + id + "}"
}

// ShowPath returns the tree path of a show given its bare identifier.
func ShowPath(id string) string {
	return "/storage/shows/{" + id + "}"
}

// Command issues verb against target and returns the engine's reply.
func (c *Client) Command(ctx context.Context, verb, target string) (*CommandResult, error) {
	verb = strings.TrimSpace(verb)
	if verb == "" {
		return nil, services.Wrap(services.ErrUsage, "msehttp", "command", "verb is required", nil)
	}
	if c.host == "" {
		return nil, services.Wrap(services.ErrConfiguration, "msehttp", verb, "engine host is not configured", nil)
	}

	path := "/profiles/" + url.PathEscape(c.profile) + "/" + url.PathEscape(verb)
	endpoint := c.BaseURL() + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(target))
	if err != nil {
		return nil, services.Wrap(services.ErrUsage, "msehttp", verb, "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "msehttp", verb, "send command", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{
			Verb:       verb,
			Target:     target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "msehttp", verb, "read response", err)
	}

	c.logger.Debug("engine command",
		logging.String("verb", verb),
		logging.String("target", target),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)
	return &CommandResult{
		Status:   resp.StatusCode,
		Response: string(body),
		Path:     path,
		Body:     target,
	}, nil
}

// Ping checks that the command interface answers at all. Any HTTP reply
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/", nil)
	if err != nil {
		return services.Wrap(services.ErrUsage, "msehttp", "ping", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "msehttp", "ping", "engine unreachable", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}
