package testsupport

import (
	"context"
	"html"
	"path/filepath"
	"testing"

	"vizmse/internal/treestore"
)

// MustOpenTree opens an empty property tree for tests and registers cleanup.
func MustOpenTree(t testing.TB) *treestore.Store {
	t.Helper()

	store, err := treestore.Open(filepath.Join(t.TempDir(), "tree.db"), nil)
	if err != nil {
		t.Fatalf("treestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Seed appends fragment under path, creating missing containers.
func Seed(t testing.TB, store *treestore.Store, path, fragment string) {
	t.Helper()

	if _, err := store.Seed(context.Background(), path, fragment); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}

// SeedRundown builds the containers a rundown expects: the show with its
// elements and mastertemplates, and the playlist with its elements and an
// active_profile entry holding activeProfile (empty for inactive).
func SeedRundown(t testing.TB, store *treestore.Store, show, playlist, activeProfile string) {
	t.Helper()

	showPath := "/storage/shows/{" + show + "}"
	playlistPath := "/storage/playlists/{" + playlist + "}"
	Seed(t, store, showPath+"/mastertemplates", "")
	Seed(t, store, showPath+"/elements", "")
	Seed(t, store, playlistPath+"/elements", "")
	if activeProfile == "" {
		Seed(t, store, playlistPath, `<entry name="active_profile"/>`)
		return
	}
	Seed(t, store, playlistPath, `<entry name="active_profile">`+activeProfile+`</entry>`)
}

// Template returns a master template fragment whose model declares fields in
// the given order.
func Template(name string, fields ...string) string {
	model := "<model><schema>"
	for _, f := range fields {
		model += `<fielddef name="` + f + `"/>`
	}
	model += "</schema></model>"
	return `<template name="` + name + `"><entry name="model_xml">` + html.EscapeString(model) + `</entry></template>`
}
