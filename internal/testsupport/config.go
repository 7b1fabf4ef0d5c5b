package testsupport

import (
	"path/filepath"
	"testing"

	"vizmse/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Engine.PrefetchChannels = false
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LockDir = filepath.Join(base, "locks")
	cfgVal.Paths.TreeDB = filepath.Join(base, "state", "tree.db")
	cfgVal.Paths.RegistryDB = filepath.Join(base, "state", "registry.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithEngine points the test config at host:port for HTTP commands.
func WithEngine(host string, port int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.Hostname = host
		b.cfg.Engine.RESTPort = port
	}
}

// WithProfile overrides the engine profile.
func WithProfile(profile string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.Profile = profile
	}
}

// WithPrefetch toggles construction-time channel prefetch.
func WithPrefetch(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.PrefetchChannels = enabled
	}
}
