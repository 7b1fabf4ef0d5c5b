package rundown_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"vizmse/internal/mse"
	"vizmse/internal/rundown"
	"vizmse/internal/testsupport"
	"vizmse/internal/treestore"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

type fixture struct {
	store    *treestore.Store
	pep      *testsupport.RecordingPep
	commands *testsupport.CommandRecorder
	journal  *testsupport.Journal
	rundown  *rundown.Rundown
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	activeProfile string
	seed          func(t *testing.T, store *treestore.Store)
	options       func(*rundown.Options)
	prepare       func(*testsupport.RecordingPep)
}

func withActiveProfile(profile string) fixtureOption {
	return func(c *fixtureConfig) { c.activeProfile = profile }
}

func withSeed(seed func(t *testing.T, store *treestore.Store)) fixtureOption {
	return func(c *fixtureConfig) { c.seed = seed }
}

func withOptions(fn func(*rundown.Options)) fixtureOption {
	return func(c *fixtureConfig) { c.options = fn }
}

func withPep(fn func(*testsupport.RecordingPep)) fixtureOption {
	return func(c *fixtureConfig) { c.prepare = fn }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	var cfg fixtureConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	store := testsupport.MustOpenTree(t)
	testsupport.SeedRundown(t, store, "S", "P", cfg.activeProfile)
	if cfg.seed != nil {
		cfg.seed(t, store)
	}

	journal := &testsupport.Journal{}
	rec := testsupport.NewRecordingPep(store, journal)
	if cfg.prepare != nil {
		cfg.prepare(rec)
	}
	commands := testsupport.NewCommandRecorder(journal)
	engine := mse.NewSession(rec, mse.Endpoint{Hostname: "localhost", RESTPort: 8580}, nil)

	options := rundown.Options{
		Show:     "/storage/shows/{S}",
		Playlist: "{P}",
		Profile:  "/config/profiles/MOSART",
		Commands: commands,
		Now:      func() time.Time { return fixedNow },
	}
	if cfg.options != nil {
		cfg.options(&options)
	}
	r, err := rundown.New(context.Background(), engine, options)
	if err != nil {
		t.Fatalf("rundown.New failed: %v", err)
	}
	if err := r.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady failed: %v", err)
	}
	return &fixture{store: store, pep: rec, commands: commands, journal: journal, rundown: r}
}

// effects returns journal entries for mutations and commands only.
func (f *fixture) effects() []string {
	var out []string
	for _, entry := range f.journal.Entries() {
		if strings.HasPrefix(entry, "pep getjs") {
			continue
		}
		out = append(out, entry)
	}
	return out
}

const (
	showElements     = "/storage/shows/{S}/elements"
	playlistElements = "/storage/playlists/{P}/elements"
	templates        = "/storage/shows/{S}/mastertemplates"
	pilotElements    = "/external/pilotdb/elements"
)

func seedRef(t *testing.T, store *treestore.Store, vcpid, channel string) {
	t.Helper()
	attrs := ""
	if channel != "" {
		attrs = ` viz_program="` + channel + `"`
	}
	testsupport.Seed(t, store, playlistElements, `<ref`+attrs+`>`+pilotElements+`/`+vcpid+`</ref>`)
	testsupport.Seed(t, store, pilotElements, `<entry name="`+vcpid+`"/>`)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
