package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vizmse/internal/config"
	"vizmse/internal/testsupport"
	"vizmse/internal/treestore"
)

const (
	testShow     = "2A4C7D1E-0000-4000-8000-000000000001"
	testPlaylist = "9B1F3A2C-0000-4000-8000-000000000002"
)

type cliTestEnv struct {
	cfg        *config.Config
	engine     *testsupport.CommandServer
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("VIZMSE_HOST", "")
	t.Setenv("VIZMSE_REST_HOST", "")
	t.Setenv("VIZMSE_PROFILE", "")

	engine := testsupport.NewCommandServer(t)
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithEngine(engine.Host, engine.Port)}, opts...)...)

	configPath := filepath.Join(homeDir, ".config", "vizmse", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		engine:     engine,
		configPath: configPath,
		baseDir:    base,
	}
}

// seedTree opens the configured tree, runs fn, and closes it again so the
// CLI can open the database itself.
func (env *cliTestEnv) seedTree(t *testing.T, fn func(*treestore.Store)) {
	t.Helper()
	store, err := treestore.Open(env.cfg.Paths.TreeDB, nil)
	if err != nil {
		t.Fatalf("treestore.Open: %v", err)
	}
	defer store.Close()
	fn(store)
}

func (env *cliTestEnv) seedRundown(t *testing.T, activeProfile string) {
	t.Helper()
	env.seedTree(t, func(store *treestore.Store) {
		testsupport.SeedRundown(t, store, testShow, testPlaylist, activeProfile)
		testsupport.Seed(t, store, "/storage/shows/{"+testShow+"}/mastertemplates", testsupport.Template("lower_third", "title", "name"))
		testsupport.Seed(t, store, "/external/pilotdb/elements", `<entry name="42"/>`)
	})
}

func (env *cliTestEnv) readTree(t *testing.T, path string) string {
	t.Helper()
	var xml string
	env.seedTree(t, func(store *treestore.Store) {
		res, err := store.GetJS(context.Background(), path, -1)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		xml = res.Tree.XML()
	})
	return xml
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runRundown runs a command against the test show and playlist.
func (env *cliTestEnv) runRundown(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"--show", testShow, "--playlist", testPlaylist}, args...)
	out, _, err := runCLI(t, env.configPath, full...)
	return out, err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[engine]\nhostname = %q\nrest_port = %d\nprofile = %q\nprefetch_channels = %t\n\n"+
			"[paths]\nstate_dir = %q\nlog_dir = %q\nlock_dir = %q\ntree_db = %q\nregistry_db = %q\n\n"+
			"[logging]\nlevel = \"error\"\n",
		cfg.Engine.Hostname,
		cfg.Engine.RESTPort,
		cfg.Engine.Profile,
		cfg.Engine.PrefetchChannels,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Paths.LockDir,
		cfg.Paths.TreeDB,
		cfg.Paths.RegistryDB,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
