package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"vizmse/internal/services"
	"vizmse/internal/testsupport"
	"vizmse/internal/treestore"
)

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.TreeDB)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}

func TestRundownRegistryLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "--show", "{"+testShow+"}", "--playlist", testPlaylist, "rundown", "add", "news", "-d", "evening news")
	if err != nil {
		t.Fatalf("rundown add: %v", err)
	}
	requireContains(t, out, "Registered rundown news")

	out, _, err = runCLI(t, env.configPath, "--json", "rundown", "list")
	if err != nil {
		t.Fatalf("rundown list: %v", err)
	}
	var entries []struct {
		Name     string `json:"name"`
		Show     string `json:"show"`
		Playlist string `json:"playlist"`
		Profile  string `json:"profile"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(entries) != 1 || entries[0].Show != testShow || entries[0].Profile != "MOSART" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	if _, _, err := runCLI(t, env.configPath, "rundown", "remove", "news"); err != nil {
		t.Fatalf("rundown remove: %v", err)
	}
	_, _, err = runCLI(t, env.configPath, "rundown", "remove", "news")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}
}

func TestRegisteredRundownSelectsTree(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	if _, _, err := runCLI(t, env.configPath, "--show", testShow, "--playlist", testPlaylist, "rundown", "add", "news"); err != nil {
		t.Fatalf("rundown add: %v", err)
	}
	out, _, err := runCLI(t, env.configPath, "--rundown", "news", "--json", "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(out), &names); err != nil {
		t.Fatalf("decode templates: %v\n%s", err, out)
	}
	if len(names) != 1 || names[0] != "lower_third" {
		t.Fatalf("unexpected templates %v", names)
	}
}

func TestMissingRundownSelection(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env.configPath, "templates")
	if !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestTemplateShowsSortedFields(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	out, err := env.runRundown(t, "template", "lower_third")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if strings.Index(out, "name") > strings.Index(out, "title") {
		t.Fatalf("expected fields in sorted order:\n%s", out)
	}
}

func TestCreateInternalAndTake(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	out, err := env.runRundown(t, "--json", "elements", "create", "intro", "-t", "lower_third", "-f", "Jane Doe", "-f", "Reporter")
	if err != nil {
		t.Fatalf("elements create: %v", err)
	}
	var created struct {
		Ref      string            `json:"ref"`
		Template string            `json:"template"`
		Data     map[string]string `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode created: %v\n%s", err, out)
	}
	if created.Ref != "intro" || created.Data["name"] != "Jane Doe" || created.Data["title"] != "Reporter" {
		t.Fatalf("unexpected created element %+v", created)
	}

	_, err = env.runRundown(t, "elements", "create", "intro", "-t", "lower_third")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}

	_, err = env.runRundown(t, "elements", "create", " ", "-t", "lower_third")
	if !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error for blank name, got %v", err)
	}

	out, err = env.runRundown(t, "take", "intro")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	requireContains(t, out, "take intro: 200 OK")

	reqs := env.engine.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one engine request, got %+v", reqs)
	}
	if reqs[0].Path != "/profiles/MOSART/take" || reqs[0].Body != "/storage/shows/{"+testShow+"}/elements/intro" {
		t.Fatalf("unexpected request %+v", reqs[0])
	}
}

func TestExternalElementChannelReachesTree(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	if _, err := env.runRundown(t, "elements", "create", "42", "--channel", "WALL"); err != nil {
		t.Fatalf("elements create external: %v", err)
	}

	out, err := env.runRundown(t, "--json", "channels")
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	requireContains(t, out, `"channel": "WALL"`)

	if _, err := env.runRundown(t, "cue", "42"); err != nil {
		t.Fatalf("cue: %v", err)
	}
	requireContains(t, env.readTree(t, "/external/pilotdb/elements/42"), `viz_program="WALL"`)

	reqs := env.engine.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/profiles/MOSART/cue" || reqs[0].Body != "/external/pilotdb/elements/42" {
		t.Fatalf("unexpected requests %+v", reqs)
	}

	out, err = env.runRundown(t, "--json", "elements", "list")
	if err != nil {
		t.Fatalf("elements list: %v", err)
	}
	var refs []any
	if err := json.Unmarshal([]byte(out), &refs); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(refs) != 1 || refs[0] != float64(42) {
		t.Fatalf("unexpected refs %v", refs)
	}
}

func TestPrefetchedChannelsAndProfileOverride(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithPrefetch(true), testsupport.WithProfile("GALLERY"))
	env.seedRundown(t, "")
	env.seedTree(t, func(store *treestore.Store) {
		testsupport.Seed(t, store, "/storage/playlists/{"+testPlaylist+"}/elements",
			`<ref viz_program="FULL1">/external/pilotdb/elements/42</ref>`)
	})

	out, err := env.runRundown(t, "--json", "channels")
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	requireContains(t, out, `"channel": "FULL1"`)

	if _, err := env.runRundown(t, "take", "42"); err != nil {
		t.Fatalf("take: %v", err)
	}
	reqs := env.engine.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/profiles/GALLERY/take" {
		t.Fatalf("unexpected requests %+v", reqs)
	}
}

func TestDeleteExternalIsNotImplemented(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	_, err := env.runRundown(t, "elements", "delete", "42")
	if !errors.Is(err, services.ErrNotImplemented) {
		t.Fatalf("expected not implemented, got %v", err)
	}
}

func TestActivateSendsInitialize(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	if _, err := env.runRundown(t, "activate"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	reqs := env.engine.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/profiles/MOSART/initialize" || reqs[0].Body != "/storage/playlists/{"+testPlaylist+"}" {
		t.Fatalf("unexpected requests %+v", reqs)
	}
}

func TestActivateRespectsPlaylistLock(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	if err := os.MkdirAll(env.cfg.Paths.LockDir, 0o755); err != nil {
		t.Fatalf("mkdir lock dir: %v", err)
	}
	lock := flock.New(filepath.Join(env.cfg.Paths.LockDir, "playlist-"+testPlaylist+".lock"))
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()

	_, err := env.runRundown(t, "activate")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict while locked, got %v", err)
	}
	if reqs := env.engine.Requests(); len(reqs) != 0 {
		t.Fatalf("expected no engine requests, got %+v", reqs)
	}
}

func TestPurgeRefusesActivePlaylist(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "MOSART")

	_, err := env.runRundown(t, "purge")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPurgeEmptiesCollections(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	if _, err := env.runRundown(t, "elements", "create", "42"); err != nil {
		t.Fatalf("elements create: %v", err)
	}
	out, err := env.runRundown(t, "--json", "purge")
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	requireContains(t, out, `"id": "*"`)

	out, err = env.runRundown(t, "--json", "elements", "list")
	if err != nil {
		t.Fatalf("elements list: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty list after purge, got %s", out)
	}
}

func TestStatusReportsInactivePlaylist(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	out, err := env.runRundown(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "[WARN] inactive")
	requireContains(t, out, "Engine:")
}

func TestApplyManifest(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRundown(t, "")

	manifestPath := filepath.Join(env.baseDir, "rundown.yaml")
	manifest := "show: \"{" + testShow + "}\"\n" +
		"playlist: \"" + testPlaylist + "\"\n" +
		"elements:\n" +
		"  - template: lower_third\n" +
		"    name: intro\n" +
		"    fields: [Jane Doe, Reporter]\n" +
		"  - vcpid: 42\n" +
		"    channel: WALL\n"
	testsupport.WriteFile(t, manifestPath, manifest)

	out, _, err := runCLI(t, env.configPath, "apply", manifestPath, "--register", "evening")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	requireContains(t, out, "Applied 2 elements")

	out, _, err = runCLI(t, env.configPath, "--rundown", "evening", "--json", "elements", "list")
	if err != nil {
		t.Fatalf("elements list: %v", err)
	}
	requireContains(t, out, `"intro"`)
	requireContains(t, out, "42")
}

func TestRawCommandDefaultsProfile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, "", "command", "cleanup", "/storage/shows/{X}", "--host", env.engine.Host, "--port", strconv.Itoa(env.engine.Port))
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	requireContains(t, out, "cleanup /storage/shows/{X}: 200")
	reqs := env.engine.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/profiles/MOSART/cleanup" {
		t.Fatalf("unexpected requests %+v", reqs)
	}

	if _, _, err := runCLI(t, "", "command", "explode", "/x", "--host", env.engine.Host); !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error for unknown verb, got %v", err)
	}
}

func TestTreeSeedAndGet(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env.configPath, "tree", "seed", "/storage/shows/{S}/elements", `<element name="a"/>`); err != nil {
		t.Fatalf("tree seed: %v", err)
	}
	out, _, err := runCLI(t, env.configPath, "tree", "get", "/storage/shows/{S}/elements")
	if err != nil {
		t.Fatalf("tree get: %v", err)
	}
	requireContains(t, out, `<element name="a"`)

	_, _, err = runCLI(t, env.configPath, "tree", "get", "/storage/missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExitMessageHints(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "rundown", "get", "missing", nil)
	requireContains(t, exitMessage(err), "hint:")
	if got := exitMessage(errors.New("plain")); got != "plain" {
		t.Fatalf("unexpected message %q", got)
	}
}
