package marketdata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/aristath/folio/internal/domain"
)

func setupHistoryDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE daily_prices (
			ticker TEXT NOT NULL,
			date   INTEGER NOT NULL,
			close  REAL NOT NULL CHECK (close > 0),
			PRIMARY KEY (ticker, date)
		);
		CREATE TABLE rate_curve (
			tenor_days INTEGER PRIMARY KEY CHECK (tenor_days > 0),
			rate       REAL NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	require.NoError(t, err)

	return db
}

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestHistoryRepository_SaveAndGetPrices(t *testing.T) {
	repo := NewHistoryRepository(setupHistoryDB(t), zerolog.Nop())

	points := []domain.PricePoint{
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 101},
		{Date: day(2), Close: 99.5},
	}
	require.NoError(t, repo.SavePrices("petr4", points))

	series, err := repo.GetPriceSeries("PETR4", time.Time{})
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())
	assert.Equal(t, "PETR4", series.Ticker)
	assert.Equal(t, []float64{100, 101, 99.5}, series.Closes())
	assert.True(t, series.Points[0].Date.Equal(day(0)))
}

func TestHistoryRepository_GetPriceSeriesSince(t *testing.T) {
	repo := NewHistoryRepository(setupHistoryDB(t), zerolog.Nop())

	require.NoError(t, repo.SavePrices("PETR4", []domain.PricePoint{
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 101},
		{Date: day(2), Close: 102},
	}))

	series, err := repo.GetPriceSeries("PETR4", day(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{101, 102}, series.Closes())
}

func TestHistoryRepository_ResaveOverwrites(t *testing.T) {
	repo := NewHistoryRepository(setupHistoryDB(t), zerolog.Nop())

	require.NoError(t, repo.SavePrices("PETR4", []domain.PricePoint{{Date: day(0), Close: 100}}))
	require.NoError(t, repo.SavePrices("PETR4", []domain.PricePoint{{Date: day(0), Close: 105}}))

	series, err := repo.GetPriceSeries("PETR4", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []float64{105}, series.Closes())
}

func TestHistoryRepository_SaveRejectsNonPositive(t *testing.T) {
	repo := NewHistoryRepository(setupHistoryDB(t), zerolog.Nop())

	err := repo.SavePrices("PETR4", []domain.PricePoint{{Date: day(0), Close: 0}})
	require.Error(t, err)

	var malformed *domain.MalformedSeriesError
	assert.ErrorAs(t, err, &malformed)

	// The failed batch must not leave partial rows behind.
	series, err := repo.GetPriceSeries("PETR4", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestHistoryRepository_GetLatestPrices(t *testing.T) {
	repo := NewHistoryRepository(setupHistoryDB(t), zerolog.Nop())

	require.NoError(t, repo.SavePrices("PETR4", []domain.PricePoint{
		{Date: day(0), Close: 100},
		{Date: day(5), Close: 110},
	}))
	require.NoError(t, repo.SavePrices("VALE3", []domain.PricePoint{
		{Date: day(3), Close: 60},
	}))

	prices, err := repo.GetLatestPrices([]string{"PETR4", "VALE3", "MISSING3"})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"PETR4": 110, "VALE3": 60}, prices)
}

func TestHistoryRepository_RateCurveRoundTrip(t *testing.T) {
	repo := NewHistoryRepository(setupHistoryDB(t), zerolog.Nop())

	curve, err := domain.NewRateCurve([]domain.RatePoint{
		{TenorDays: 30, Rate: 0.105},
		{TenorDays: 180, Rate: 0.11},
		{TenorDays: 360, Rate: 0.115},
	})
	require.NoError(t, err)

	require.NoError(t, repo.SaveRateCurve(curve))

	got, err := repo.GetRateCurve()
	require.NoError(t, err)
	assert.Equal(t, curve.Points, got.Points)

	// Saving again replaces the curve instead of merging.
	shorter, err := domain.NewRateCurve([]domain.RatePoint{{TenorDays: 90, Rate: 0.12}})
	require.NoError(t, err)
	require.NoError(t, repo.SaveRateCurve(shorter))

	got, err = repo.GetRateCurve()
	require.NoError(t, err)
	assert.Equal(t, shorter.Points, got.Points)
}

func TestHistoryRepository_EmptyRateCurve(t *testing.T) {
	repo := NewHistoryRepository(setupHistoryDB(t), zerolog.Nop())

	_, err := repo.GetRateCurve()
	require.Error(t, err)

	var malformed *domain.MalformedCurveError
	assert.ErrorAs(t, err, &malformed)
}
