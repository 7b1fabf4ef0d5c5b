package registry

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vizmse/internal/logging"
	"vizmse/internal/rundown"
	"vizmse/internal/services"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one named rundown definition. Identifiers are stored bare.
type Entry struct {
	Name        string    `json:"name"`
	Show        string    `json:"show"`
	Playlist    string    `json:"playlist"`
	Profile     string    `json:"profile"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Registry persists rundown definitions in SQLite.
type Registry struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Open initializes or connects to the registry database at path.
func Open(path string, logger *slog.Logger) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("registry database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	reg := &Registry{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "registry"),
		now:    time.Now,
	}
	if err := reg.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return reg, nil
}

// Close closes the underlying database connection.
func (r *Registry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Registry) initSchema(ctx context.Context) error {
	var tableExists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists > 0 {
		var version int
		if err := r.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if version != schemaVersion {
			return fmt.Errorf("registry schema version %d, expected %d (delete %s to start over)", version, schemaVersion, r.path)
		}
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Put creates or updates the named entry. Show, playlist and profile are
// normalized before they are stored.
func (r *Registry) Put(ctx context.Context, entry Entry) (*Entry, error) {
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Show = rundown.NormalizeShow(strings.TrimSpace(entry.Show))
	entry.Playlist = rundown.NormalizePlaylist(strings.TrimSpace(entry.Playlist))
	entry.Profile = rundown.NormalizeProfile(strings.TrimSpace(entry.Profile))
	if entry.Name == "" {
		return nil, services.Wrap(services.ErrUsage, "registry", "put", "rundown name is required", nil)
	}
	if entry.Show == "" || entry.Playlist == "" || entry.Profile == "" {
		return nil, services.Wrap(services.ErrUsage, "registry", "put", "show, playlist and profile are required", nil)
	}

	now := r.now().UTC()
	stamp := now.Format(time.RFC3339Nano)
	err := retryOnBusy(ctx, func() error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO rundowns (name, show, playlist, profile, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				show = excluded.show,
				playlist = excluded.playlist,
				profile = excluded.profile,
				description = excluded.description,
				updated_at = excluded.updated_at`,
			entry.Name, entry.Show, entry.Playlist, entry.Profile, entry.Description, stamp, stamp,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store rundown %q: %w", entry.Name, err)
	}
	r.logger.Debug("rundown registered", logging.String(logging.FieldRundown, entry.Name))
	return r.Get(ctx, entry.Name)
}

// Get returns the named entry or an error matching services.ErrNotFound.
func (r *Registry) Get(ctx context.Context, name string) (*Entry, error) {
	name = strings.TrimSpace(name)
	row := r.db.QueryRowContext(ctx,
		"SELECT name, show, playlist, profile, description, created_at, updated_at FROM rundowns WHERE name = ?", name)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "registry", "get", fmt.Sprintf("no rundown named %q", name), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read rundown %q: %w", name, err)
	}
	return entry, nil
}

// List returns every entry ordered by name.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, show, playlist, profile, description, created_at, updated_at FROM rundowns ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list rundowns: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rundown: %w", err)
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

// Remove deletes the named entry.
func (r *Registry) Remove(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = r.db.ExecContext(ctx, "DELETE FROM rundowns WHERE name = ?", name)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("remove rundown %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "registry", "remove", fmt.Sprintf("no rundown named %q", name), nil)
	}
	r.logger.Debug("rundown removed", logging.String(logging.FieldRundown, name))
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		entry            Entry
		created, updated string
	)
	if err := s.Scan(&entry.Name, &entry.Show, &entry.Playlist, &entry.Profile, &entry.Description, &created, &updated); err != nil {
		return nil, err
	}
	entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	entry.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &entry, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
