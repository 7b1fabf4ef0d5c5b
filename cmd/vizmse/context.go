package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"vizmse/internal/config"
	"vizmse/internal/logging"
	"vizmse/internal/manifest"
	"vizmse/internal/mse"
	"vizmse/internal/msehttp"
	"vizmse/internal/registry"
	"vizmse/internal/rundown"
	"vizmse/internal/services"
	"vizmse/internal/treestore"
)

type globalFlags struct {
	config   string
	rundown  string
	show     string
	playlist string
	profile  string
	json     bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.flags != nil {
			path = strings.TrimSpace(c.flags.config)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonMode() bool {
	return c.flags != nil && c.flags.json
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) withTree(fn func(*treestore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := treestore.Open(cfg.Paths.TreeDB, c.log())
	if err != nil {
		return fmt.Errorf("open property tree: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) withRegistry(fn func(*registry.Registry) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	reg, err := registry.Open(cfg.Paths.RegistryDB, c.log())
	if err != nil {
		return fmt.Errorf("open rundown registry: %w", err)
	}
	defer reg.Close()
	return fn(reg)
}

// rundownOptions resolves the rundown identity from the registry entry named
// by --rundown, then applies --show/--playlist/--profile on top.
func (c *commandContext) rundownOptions(ctx context.Context) (rundown.Options, error) {
	return c.selectRundown(ctx, nil)
}

// manifestOptions layers the manifest's identifiers between the registry
// entry and the command-line flags.
func (c *commandContext) manifestOptions(ctx context.Context, m *manifest.Manifest) (rundown.Options, error) {
	return c.selectRundown(ctx, m.Options)
}

func (c *commandContext) selectRundown(ctx context.Context, overlay func(rundown.Options) rundown.Options) (rundown.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return rundown.Options{}, err
	}
	opts := rundown.Options{
		Profile:     cfg.Engine.Profile,
		Creator:     cfg.Engine.Creator,
		Prefetch:    cfg.Engine.PrefetchChannels,
		HTTPOptions: []msehttp.Option{msehttp.WithTimeout(time.Duration(cfg.Engine.RequestTimeout) * time.Second)},
		Logger:      c.log(),
	}
	if name := strings.TrimSpace(c.flags.rundown); name != "" {
		err := c.withRegistry(func(reg *registry.Registry) error {
			entry, err := reg.Get(ctx, name)
			if err != nil {
				return err
			}
			opts.Show = entry.Show
			opts.Playlist = entry.Playlist
			opts.Profile = entry.Profile
			opts.Description = entry.Description
			return nil
		})
		if err != nil {
			return rundown.Options{}, err
		}
	}
	if overlay != nil {
		opts = overlay(opts)
	}
	if v := strings.TrimSpace(c.flags.show); v != "" {
		opts.Show = v
	}
	if v := strings.TrimSpace(c.flags.playlist); v != "" {
		opts.Playlist = v
	}
	if v := strings.TrimSpace(c.flags.profile); v != "" {
		opts.Profile = v
	}
	if opts.Show == "" || opts.Playlist == "" {
		return rundown.Options{}, services.Wrap(services.ErrUsage, "cli", "rundown", "select a rundown with --rundown or --show and --playlist", nil)
	}
	return opts, nil
}

func (c *commandContext) registerManifest(ctx context.Context, name string, opts rundown.Options) error {
	return c.withRegistry(func(reg *registry.Registry) error {
		_, err := reg.Put(ctx, registry.Entry{
			Name:        name,
			Show:        opts.Show,
			Playlist:    opts.Playlist,
			Profile:     opts.Profile,
			Description: opts.Description,
		})
		return err
	})
}

func (c *commandContext) engineEndpoint() mse.Endpoint {
	cfg := c.configValue()
	return mse.Endpoint{
		Hostname: cfg.Engine.Hostname,
		RESTHost: cfg.Engine.RESTHost,
		RESTPort: cfg.Engine.RESTPort,
	}
}

// withRundown binds the selected rundown to the local property tree and runs fn.
func (c *commandContext) withRundown(cmd *cobra.Command, fn func(context.Context, *rundown.Rundown) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := c.rundownOptions(ctx)
	if err != nil {
		return err
	}
	return c.openRundown(ctx, opts, fn)
}

func (c *commandContext) openRundown(ctx context.Context, opts rundown.Options, fn func(context.Context, *rundown.Rundown) error) error {
	return c.withTree(func(store *treestore.Store) error {
		session := mse.NewSession(store, c.engineEndpoint(), c.log())
		rd, err := rundown.New(ctx, session, opts)
		if err != nil {
			return err
		}
		// The prefetch goroutine reads the tree; it must finish before the store closes.
		defer func() { _ = rd.WaitReady(context.Background()) }()
		ctx = services.WithRundown(ctx, rd.Show()+"/"+rd.Playlist())
		return fn(ctx, rd)
	})
}

// withPlaylistLock serializes lifecycle operations on one playlist across
// vizmse processes.
func (c *commandContext) withPlaylistLock(playlist string, fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lockPath := filepath.Join(cfg.Paths.LockDir, "playlist-"+rundown.NormalizePlaylist(playlist)+".lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire playlist lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrConflict, "cli", "lock", fmt.Sprintf("playlist %s is busy in another vizmse process (lock %s)", playlist, lockPath), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			c.log().Warn("failed to release playlist lock", logging.String("lock", lockPath), logging.Error(err))
		}
	}()
	return fn()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitMessage appends a hint for the error classes an operator can act on.
func exitMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNotImplemented):
		return err.Error()
	case errors.Is(err, services.ErrNotFound):
		return err.Error() + "\nhint: check the show, playlist and element identifiers"
	case errors.Is(err, services.ErrTransport):
		return err.Error() + "\nhint: verify engine.hostname and engine.rest_port are reachable"
	case errors.Is(err, services.ErrConfiguration):
		return err.Error() + "\nhint: run `vizmse config show` to inspect the effective configuration"
	default:
		return err.Error()
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
