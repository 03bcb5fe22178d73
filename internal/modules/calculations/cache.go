// Package calculations provides a TTL cache for computed analytics reports,
// backed by cache.db. Payloads are msgpack-encoded so whole report structs
// round-trip without a per-report schema. The cache is a pure accelerator:
// deleting cache.db loses nothing that cannot be recomputed.
package calculations

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Report categories. Used as the cache namespace so invalidation can target
// one engine's reports without touching the others.
const (
	CategoryRisk       = "risk"
	CategoryDividends  = "dividends"
	CategoryProjection = "projection"
	CategoryMonteCarlo = "montecarlo"
)

// Cache stores computed reports with an expiry, keyed by (category, key).
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCache creates a new report cache.
func NewCache(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "report_cache").Logger(),
	}
}

// Get loads a cached report into dest. Returns false when the key is absent
// or expired; expired rows are left for PurgeExpired rather than deleted on
// the read path.
func (c *Cache) Get(category, key string, dest interface{}) (bool, error) {
	var payload []byte
	err := c.db.QueryRow(
		`SELECT payload FROM report_cache WHERE category = ? AND cache_key = ? AND expires_at > ?`,
		category, key, time.Now().Unix(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query report cache: %w", err)
	}

	if err := msgpack.Unmarshal(payload, dest); err != nil {
		// A payload that no longer decodes (e.g. the report struct changed
		// shape) is treated as a miss so the caller recomputes.
		c.log.Warn().Err(err).Str("category", category).Str("key", key).Msg("Discarding undecodable cache entry")
		_ = c.Delete(category, key)
		return false, nil
	}

	return true, nil
}

// Set stores a report under (category, key) with the given TTL, replacing any
// previous entry.
func (c *Cache) Set(category, key string, report interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %v", ttl)
	}

	payload, err := msgpack.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO report_cache (category, cache_key, payload, expires_at) VALUES (?, ?, ?, ?)`,
		category, key, payload, time.Now().Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	c.log.Debug().Str("category", category).Str("key", key).Int("bytes", len(payload)).Msg("Report cached")
	return nil
}

// Delete removes a single entry. Missing entries are not an error.
func (c *Cache) Delete(category, key string) error {
	_, err := c.db.Exec(`DELETE FROM report_cache WHERE category = ? AND cache_key = ?`, category, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// InvalidateCategory removes every entry in a category. Called when the
// underlying inputs change, e.g. a holdings mutation invalidates risk
// reports.
func (c *Cache) InvalidateCategory(category string) error {
	result, err := c.db.Exec(`DELETE FROM report_cache WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("failed to invalidate category: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	c.log.Info().Str("category", category).Int64("entries", rowsAffected).Msg("Cache category invalidated")
	return nil
}

// PurgeExpired removes all expired entries and returns how many were removed.
func (c *Cache) PurgeExpired() (int64, error) {
	result, err := c.db.Exec(`DELETE FROM report_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired entries: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		c.log.Debug().Int64("entries", rowsAffected).Msg("Purged expired cache entries")
	}
	return rowsAffected, nil
}
