package calculations

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupCacheDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE report_cache (
			category   TEXT NOT NULL,
			cache_key  TEXT NOT NULL,
			payload    BLOB NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (category, cache_key)
		)
	`)
	require.NoError(t, err)

	return db
}

type fakeReport struct {
	Beta   float64 `msgpack:"beta"`
	Sharpe float64 `msgpack:"sharpe"`
	Labels []string
}

func TestCache_SetAndGet(t *testing.T) {
	cache := NewCache(setupCacheDB(t), zerolog.Nop())

	stored := fakeReport{Beta: 1.2, Sharpe: 0.8, Labels: []string{"PETR4", "VALE3"}}
	require.NoError(t, cache.Set(CategoryRisk, "12m", stored, time.Minute))

	var got fakeReport
	hit, err := cache.Get(CategoryRisk, "12m", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, stored, got)
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	cache := NewCache(setupCacheDB(t), zerolog.Nop())

	var got fakeReport
	hit, err := cache.Get(CategoryRisk, "nope", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_MissOnExpiredEntry(t *testing.T) {
	db := setupCacheDB(t)
	cache := NewCache(db, zerolog.Nop())

	require.NoError(t, cache.Set(CategoryRisk, "12m", fakeReport{Beta: 1}, time.Minute))

	// Push the entry into the past.
	_, err := db.Exec(`UPDATE report_cache SET expires_at = ?`, time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)

	var got fakeReport
	hit, err := cache.Get(CategoryRisk, "12m", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	purged, err := cache.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestCache_SetReplaces(t *testing.T) {
	cache := NewCache(setupCacheDB(t), zerolog.Nop())

	require.NoError(t, cache.Set(CategoryRisk, "12m", fakeReport{Beta: 1}, time.Minute))
	require.NoError(t, cache.Set(CategoryRisk, "12m", fakeReport{Beta: 2}, time.Minute))

	var got fakeReport
	hit, err := cache.Get(CategoryRisk, "12m", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2.0, got.Beta)
}

func TestCache_CategoriesAreIsolated(t *testing.T) {
	cache := NewCache(setupCacheDB(t), zerolog.Nop())

	require.NoError(t, cache.Set(CategoryRisk, "12m", fakeReport{Beta: 1}, time.Minute))
	require.NoError(t, cache.Set(CategoryDividends, "12m", fakeReport{Beta: 9}, time.Minute))

	require.NoError(t, cache.InvalidateCategory(CategoryRisk))

	var got fakeReport
	hit, err := cache.Get(CategoryRisk, "12m", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = cache.Get(CategoryDividends, "12m", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 9.0, got.Beta)
}

func TestCache_RejectsNonPositiveTTL(t *testing.T) {
	cache := NewCache(setupCacheDB(t), zerolog.Nop())

	err := cache.Set(CategoryRisk, "12m", fakeReport{}, 0)
	require.Error(t, err)
}

func TestCache_Delete(t *testing.T) {
	cache := NewCache(setupCacheDB(t), zerolog.Nop())

	require.NoError(t, cache.Set(CategoryRisk, "12m", fakeReport{Beta: 1}, time.Minute))
	require.NoError(t, cache.Delete(CategoryRisk, "12m"))

	var got fakeReport
	hit, err := cache.Get(CategoryRisk, "12m", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	// Deleting a missing key is a no-op.
	require.NoError(t, cache.Delete(CategoryRisk, "12m"))
}

func TestPurgeJob_RemovesOnlyExpiredEntries(t *testing.T) {
	db := setupCacheDB(t)
	cache := NewCache(db, zerolog.Nop())

	require.NoError(t, cache.Set(CategoryRisk, "stale", fakeReport{Beta: 1}, time.Minute))
	_, err := db.Exec(`UPDATE report_cache SET expires_at = ?`, time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)
	require.NoError(t, cache.Set(CategoryRisk, "live", fakeReport{Beta: 2}, time.Minute))

	job := NewPurgeJob(cache)
	assert.Equal(t, "cache_purge", job.Name())
	require.NoError(t, job.Run())

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM report_cache`).Scan(&count))
	assert.Equal(t, 1, count)

	var got fakeReport
	hit, err := cache.Get(CategoryRisk, "live", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2.0, got.Beta)
}
