package rundown

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"vizmse/internal/logging"
)

type channelEntry struct {
	channel string
	known   bool
}

// ChannelBinding is one cached channel-map entry. Known is false when the
// element was resolved and has no channel.
type ChannelBinding struct {
	VCPID   int    `json:"vcpid"`
	Channel string `json:"channel,omitempty"`
	Known   bool   `json:"known"`
}

type channelResolver func(ctx context.Context, vcpid int) (string, error)

type elementLister func(ctx context.Context) ([]ElementRef, error)

// ChannelMap caches the output channel of external elements.
//
// The mutex protects the map only. It is never held across a remote fetch,
// so concurrent callers racing on the same unresolved id may each fetch it;
// the writes are idempotent and the last one wins.
type ChannelMap struct {
	mu      sync.Mutex
	entries map[int]channelEntry

	resolve channelResolver
	list    elementLister
	logger  *slog.Logger
}

func newChannelMap(resolve channelResolver, list elementLister, logger *slog.Logger) *ChannelMap {
	return &ChannelMap{
		entries: make(map[int]channelEntry),
		resolve: resolve,
		list:    list,
		logger:  logger,
	}
}

// Get returns the cached channel for vcpid. ok is false unless a non-empty
// channel is cached.
func (m *ChannelMap) Get(vcpid int) (channel string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, found := m.entries[vcpid]
	if !found || !entry.known {
		return "", false
	}
	return entry.channel, true
}

// Set records a channel for vcpid. An empty channel records an explicit
// absence.
func (m *ChannelMap) Set(vcpid int, channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[vcpid] = channelEntry{channel: channel, known: channel != ""}
}

// Invalidate forgets vcpid.
func (m *ChannelMap) Invalidate(vcpid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, vcpid)
}

// Reset forgets every entry.
func (m *ChannelMap) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}

// Snapshot returns the cached entries ordered by id.
func (m *ChannelMap) Snapshot() []ChannelBinding {
	m.mu.Lock()
	out := make([]ChannelBinding, 0, len(m.entries))
	for id, entry := range m.entries {
		out = append(out, ChannelBinding{VCPID: id, Channel: entry.channel, Known: entry.known})
	}
	m.mu.Unlock()
	slices.SortFunc(out, func(a, b ChannelBinding) int { return a.VCPID - b.VCPID })
	return out
}

// Ensure makes sure vcpid has been resolved and reports whether it now maps
// to a channel. A cached channel answers without any fetch; a cached absence
// is fetched again.
func (m *ChannelMap) Ensure(ctx context.Context, vcpid int) (bool, error) {
	if _, ok := m.Get(vcpid); ok {
		return true, nil
	}
	channel, err := m.resolve(ctx, vcpid)
	if err != nil {
		return false, err
	}
	m.Set(vcpid, channel)
	return channel != "", nil
}

// EnsureAll resolves every external element currently in the playlist.
func (m *ChannelMap) EnsureAll(ctx context.Context) error {
	refs, err := m.list(ctx)
	if err != nil {
		return err
	}
	resolved := 0
	for _, ref := range refs {
		if !ref.IsExternal() {
			continue
		}
		channel, err := m.resolve(ctx, ref.VCPID)
		if err != nil {
			return err
		}
		m.Set(ref.VCPID, channel)
		resolved++
	}
	m.logger.Debug("channel map built", logging.Int("external_elements", resolved))
	return nil
}
