package rundown_test

import (
	"context"
	"errors"
	"testing"

	"vizmse/internal/rundown"
	"vizmse/internal/services"
	"vizmse/internal/testsupport"
	"vizmse/internal/treestore"
)

func TestEnsureIsIdempotentAfterResolution(t *testing.T) {
	f := newFixture(t, withSeed(func(t *testing.T, store *treestore.Store) {
		seedRef(t, store, "42", "WALL")
	}))
	ctx := context.Background()
	channels := f.rundown.Channels()

	for i := 0; i < 3; i++ {
		ok, err := channels.Ensure(ctx, 42)
		if err != nil {
			t.Fatalf("Ensure #%d failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("Ensure #%d: expected resolved", i)
		}
	}
	if n := f.pep.Count("getjs", playlistElements); n != 1 {
		t.Fatalf("expected a single fetch, got %d", n)
	}
	if channel, ok := channels.Get(42); !ok || channel != "WALL" {
		t.Fatalf("unexpected cached channel %q %v", channel, ok)
	}
}

func TestEnsureRecordsExplicitAbsence(t *testing.T) {
	f := newFixture(t, withSeed(func(t *testing.T, store *treestore.Store) {
		seedRef(t, store, "42", "")
	}))
	ok, err := f.rundown.Channels().Ensure(context.Background(), 42)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if ok {
		t.Fatal("expected unresolved channel")
	}
	snap := f.rundown.Channels().Snapshot()
	if len(snap) != 1 || snap[0].VCPID != 42 || snap[0].Known {
		t.Fatalf("expected explicit absence recorded, got %#v", snap)
	}
}

func TestEnsurePropagatesFetchFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.rundown.Channels().Ensure(context.Background(), 99)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.rundown.Channels().Snapshot()) != 0 {
		t.Fatal("expected nothing cached after a failed fetch")
	}
}

func TestEnsureAllResolvesPlaylist(t *testing.T) {
	f := newFixture(t, withSeed(func(t *testing.T, store *treestore.Store) {
		testsupport.Seed(t, store, showElements, `<element name="intro"/>`)
		seedRef(t, store, "42", "WALL")
		seedRef(t, store, "7", "")
	}))
	if err := f.rundown.Channels().EnsureAll(context.Background()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	snap := f.rundown.Channels().Snapshot()
	want := []rundown.ChannelBinding{
		{VCPID: 7, Known: false},
		{VCPID: 42, Channel: "WALL", Known: true},
	}
	if len(snap) != len(want) {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("binding %d = %#v, want %#v", i, snap[i], want[i])
		}
	}
}

func TestChannelMapMutations(t *testing.T) {
	f := newFixture(t)
	channels := f.rundown.Channels()

	channels.Set(1, "A")
	channels.Set(2, "")
	if channel, ok := channels.Get(1); !ok || channel != "A" {
		t.Fatalf("unexpected Get(1) %q %v", channel, ok)
	}
	if _, ok := channels.Get(2); ok {
		t.Fatal("expected absence for 2")
	}
	channels.Invalidate(1)
	if _, ok := channels.Get(1); ok {
		t.Fatal("expected 1 invalidated")
	}
	if n := len(channels.Snapshot()); n != 1 {
		t.Fatalf("expected one entry, got %d", n)
	}
	channels.Reset()
	if n := len(channels.Snapshot()); n != 0 {
		t.Fatalf("expected empty map, got %d", n)
	}
}

func TestPrefetchPopulatesChannelMap(t *testing.T) {
	f := newFixture(t,
		withSeed(func(t *testing.T, store *treestore.Store) { seedRef(t, store, "42", "WALL") }),
		withOptions(func(o *rundown.Options) { o.Prefetch = true }),
	)
	if channel, ok := f.rundown.Channels().Get(42); !ok || channel != "WALL" {
		t.Fatalf("expected prefetched channel, got %q %v", channel, ok)
	}
}

func TestPrefetchFailureIsIgnored(t *testing.T) {
	f := newFixture(t,
		withOptions(func(o *rundown.Options) { o.Prefetch = true }),
		withPep(func(p *testsupport.RecordingPep) {
			p.FailOn("getjs", playlistElements, errors.New("listing failed"))
		}),
	)
	if n := len(f.rundown.Channels().Snapshot()); n != 0 {
		t.Fatalf("expected empty map after failed prefetch, got %d", n)
	}
	if _, err := f.rundown.Cue(context.Background(), rundown.Internal("intro")); err != nil {
		t.Fatalf("rundown unusable after prefetch failure: %v", err)
	}
}
