// Package cache persists name-normalization decisions across runs in a
// local SQLite database. The store is a plain key-value table keyed by the
// lowercased original name; upserts are last-write-wins with a usage
// counter, so concurrent sessions normalizing the same name are harmless.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pbscan/pbscan-cli/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS normalization_cache (
	original_name   TEXT PRIMARY KEY,
	normalized_name TEXT NOT NULL,
	confidence      REAL NOT NULL,
	source          TEXT NOT NULL,
	use_count       INTEGER NOT NULL DEFAULT 1,
	updated_at      TEXT NOT NULL
);`

// Store is a SQLite-backed normalization cache.
type Store struct {
	db *sql.DB
}

// Row is one cache entry with its bookkeeping columns.
type Row struct {
	model.NormalizationEntry
	UseCount  int
	UpdatedAt time.Time
}

// Stats summarizes cache contents for the operator.
type Stats struct {
	Total    int
	BySource map[model.NormalizationSource]int
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get looks up entries for the given lowercased names. Missing names are
// simply absent from the result map.
func (s *Store) Get(ctx context.Context, names []string) (map[string]model.NormalizationEntry, error) {
	out := make(map[string]model.NormalizationEntry, len(names))
	if len(names) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT original_name, normalized_name, confidence, source
		 FROM normalization_cache WHERE original_name IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e model.NormalizationEntry
		var src string
		if err := rows.Scan(&e.OriginalName, &e.NormalizedName, &e.Confidence, &src); err != nil {
			return nil, fmt.Errorf("scan cache row: %w", err)
		}
		e.Source = model.NormalizationSource(src)
		out[e.OriginalName] = e
	}
	return out, rows.Err()
}

// Put upserts entries keyed by lowercased original name, incrementing the
// usage counter on conflict. Last write wins on the normalized value.
func (s *Store) Put(ctx context.Context, entries []model.NormalizationEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO normalization_cache (original_name, normalized_name, confidence, source, use_count, updated_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(original_name) DO UPDATE SET
			normalized_name = excluded.normalized_name,
			confidence      = excluded.confidence,
			source          = excluded.source,
			use_count       = use_count + 1,
			updated_at      = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare cache upsert: %w", err)
	}
	defer stmt.Close()
	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.OriginalName))
		if key == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, key, e.NormalizedName, e.Confidence, string(e.Source), now); err != nil {
			return fmt.Errorf("upsert %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// List returns up to limit entries ordered by most used.
func (s *Store) List(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT original_name, normalized_name, confidence, source, use_count, updated_at
		 FROM normalization_cache ORDER BY use_count DESC, original_name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var r Row
		var src, updated string
		if err := rows.Scan(&r.OriginalName, &r.NormalizedName, &r.Confidence, &src, &r.UseCount, &updated); err != nil {
			return nil, fmt.Errorf("scan cache row: %w", err)
		}
		r.Source = model.NormalizationSource(src)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CollectStats counts entries per source.
func (s *Store) CollectStats(ctx context.Context) (Stats, error) {
	st := Stats{BySource: make(map[model.NormalizationSource]int)}
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, COUNT(*) FROM normalization_cache GROUP BY source`)
	if err != nil {
		return st, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return st, fmt.Errorf("scan stats row: %w", err)
		}
		st.BySource[model.NormalizationSource(src)] = n
		st.Total += n
	}
	return st, rows.Err()
}

// Clear deletes all cached mappings and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM normalization_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}
