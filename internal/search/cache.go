package search

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/query"
)

const defaultCacheTTL = 7 * 24 * time.Hour

// Store is the persistent provider-response cache. It keys on
// (provider, kind, normalized query, limit) and expires entries after a
// TTL so stale provider data eventually refreshes.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, ttl: defaultCacheTTL}
}

// CacheEntry is list metadata for cache admin commands.
type CacheEntry struct {
	Provider       string    `json:"provider"`
	Kind           string    `json:"kind"`
	Query          string    `json:"query"`
	LimitRequested int       `json:"limit_requested"`
	FetchedAt      time.Time `json:"fetched_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Lookup returns the cached items for the request, reporting found
// only when a fresh entry exists. An entry fetched with a larger limit
// satisfies a narrower request; its items are truncated to fit.
func (s *Store) Lookup(source model.Source, kind model.SearchKind, q string, limit int) ([]model.FoodItem, bool, error) {
	var raw, expiresRaw string
	err := s.db.QueryRow(`
SELECT items_json, expires_at
FROM provider_search_cache
WHERE provider = ? AND kind = ? AND query_norm = ? AND limit_requested >= ?
ORDER BY limit_requested ASC
LIMIT 1
`, string(source), string(kind), query.Normalize(q), limit).Scan(&raw, &expiresRaw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup provider search cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresRaw)
	if err != nil {
		return nil, false, fmt.Errorf("parse provider search cache expiry: %w", err)
	}
	if time.Now().After(expiresAt) {
		return nil, false, nil
	}
	var items []model.FoodItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("decode provider search cache: %w", err)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, true, nil
}

// Upsert stores the provider response, replacing any previous entry
// for the same key.
func (s *Store) Upsert(source model.Source, kind model.SearchKind, q string, limit int, items []model.FoodItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal provider search cache payload: %w", err)
	}
	now := time.Now()
	_, err = s.db.Exec(`
INSERT INTO provider_search_cache(provider, kind, query, query_norm, limit_requested, items_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, kind, query_norm, limit_requested) DO UPDATE SET
  query=excluded.query,
  items_json=excluded.items_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, string(source), string(kind), strings.TrimSpace(q), query.Normalize(q), limit,
		string(payload), now.Format(time.RFC3339), now.Add(s.ttl).Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert provider search cache: %w", err)
	}
	return nil
}

// List returns cache metadata, optionally filtered by provider and
// query, newest first.
func (s *Store) List(source, q string, limit int) ([]CacheEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	base := `SELECT provider, kind, query, limit_requested, fetched_at, expires_at FROM provider_search_cache`
	args := make([]any, 0, 3)
	clauses := make([]string, 0, 2)
	if source != "" {
		clauses = append(clauses, "provider = ?")
		args = append(args, source)
	}
	if strings.TrimSpace(q) != "" {
		clauses = append(clauses, "query_norm = ?")
		args = append(args, query.Normalize(q))
	}
	if len(clauses) > 0 {
		base += " WHERE " + strings.Join(clauses, " AND ")
	}
	base += " ORDER BY fetched_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(base, args...)
	if err != nil {
		return nil, fmt.Errorf("list provider search cache: %w", err)
	}
	defer rows.Close()
	out := make([]CacheEntry, 0)
	for rows.Next() {
		var entry CacheEntry
		var fetched, expires string
		if err := rows.Scan(&entry.Provider, &entry.Kind, &entry.Query, &entry.LimitRequested, &fetched, &expires); err != nil {
			return nil, fmt.Errorf("scan provider search cache: %w", err)
		}
		entry.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
		entry.ExpiresAt, _ = time.Parse(time.RFC3339, expires)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider search cache: %w", err)
	}
	return out, nil
}

// Purge deletes cache entries by provider and/or query, or everything
// when purgeAll is set. It returns the number of rows removed.
func (s *Store) Purge(source, q string, purgeAll bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	switch {
	case purgeAll:
		res, err = s.db.Exec(`DELETE FROM provider_search_cache`)
	case source != "" && strings.TrimSpace(q) != "":
		res, err = s.db.Exec(`DELETE FROM provider_search_cache WHERE provider = ? AND query_norm = ?`, source, query.Normalize(q))
	case source != "":
		res, err = s.db.Exec(`DELETE FROM provider_search_cache WHERE provider = ?`, source)
	case strings.TrimSpace(q) != "":
		res, err = s.db.Exec(`DELETE FROM provider_search_cache WHERE query_norm = ?`, query.Normalize(q))
	default:
		return 0, fmt.Errorf("specify --all, --source, --query, or source+query")
	}
	if err != nil {
		return 0, fmt.Errorf("purge provider search cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("provider search cache rows affected: %w", err)
	}
	return affected, nil
}
