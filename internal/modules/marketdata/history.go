// Package marketdata provides read and write access to the market history
// database: daily closing prices, latest quotes and the benchmark rate curve.
package marketdata

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
)

// HistoryRepository accesses history.db. Dates are stored as Unix timestamps
// at UTC midnight; prices are adjusted closes.
type HistoryRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sql.DB, log zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// GetPriceSeries fetches all stored prices for a ticker since the given date,
// in ascending date order, as a validated series. A zero since fetches the
// full history.
func (h *HistoryRepository) GetPriceSeries(ticker string, since time.Time) (domain.PriceSeries, error) {
	ticker = normalizeTicker(ticker)

	query := `
		SELECT date, close
		FROM daily_prices
		WHERE ticker = ? AND date >= ?
		ORDER BY date ASC
	`

	rows, err := h.db.Query(query, ticker, since.Unix())
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var dateUnix int64
		var close float64
		if err := rows.Scan(&dateUnix, &close); err != nil {
			return domain.PriceSeries{}, fmt.Errorf("failed to scan daily price: %w", err)
		}
		points = append(points, domain.PricePoint{
			Date:  time.Unix(dateUnix, 0).UTC(),
			Close: close,
		})
	}
	if err := rows.Err(); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return domain.NewPriceSeries(ticker, points)
}

// SavePrices stores a batch of price points for a ticker in one transaction.
// Re-saving an existing (ticker, date) pair overwrites the close, so
// corrected data wins.
func (h *HistoryRepository) SavePrices(ticker string, points []domain.PricePoint) error {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return &domain.MalformedSeriesError{Reason: "ticker is required"}
	}

	err := database.WithTransaction(h.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO daily_prices (ticker, date, close) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if p.Close <= 0 {
				return &domain.MalformedSeriesError{Ticker: ticker, Reason: "non-positive price"}
			}
			if _, err := stmt.Exec(ticker, midnightUTC(p.Date), p.Close); err != nil {
				return fmt.Errorf("failed to insert price: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.log.Debug().Str("ticker", ticker).Int("points", len(points)).Msg("Saved daily prices")
	return nil
}

// GetLatestPrices returns the most recent stored close for each requested
// ticker. Tickers with no stored history are absent from the result map.
func (h *HistoryRepository) GetLatestPrices(tickers []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(tickers))

	query := `
		SELECT close
		FROM daily_prices
		WHERE ticker = ?
		ORDER BY date DESC
		LIMIT 1
	`

	for _, ticker := range tickers {
		var close float64
		err := h.db.QueryRow(query, normalizeTicker(ticker)).Scan(&close)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query latest price: %w", err)
		}
		prices[normalizeTicker(ticker)] = close
	}

	return prices, nil
}

// GetRateCurve fetches the stored benchmark rate curve in tenor order.
func (h *HistoryRepository) GetRateCurve() (domain.RateCurve, error) {
	rows, err := h.db.Query(`SELECT tenor_days, rate FROM rate_curve ORDER BY tenor_days ASC`)
	if err != nil {
		return domain.RateCurve{}, fmt.Errorf("failed to query rate curve: %w", err)
	}
	defer rows.Close()

	var points []domain.RatePoint
	for rows.Next() {
		var p domain.RatePoint
		if err := rows.Scan(&p.TenorDays, &p.Rate); err != nil {
			return domain.RateCurve{}, fmt.Errorf("failed to scan rate point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return domain.RateCurve{}, fmt.Errorf("error iterating rate curve: %w", err)
	}

	return domain.NewRateCurve(points)
}

// SaveRateCurve replaces the stored curve with the given one atomically.
func (h *HistoryRepository) SaveRateCurve(curve domain.RateCurve) error {
	if err := curve.Validate(); err != nil {
		return err
	}

	err := database.WithTransaction(h.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM rate_curve`); err != nil {
			return fmt.Errorf("failed to clear rate curve: %w", err)
		}

		now := time.Now().Unix()
		for _, p := range curve.Points {
			if _, err := tx.Exec(`INSERT INTO rate_curve (tenor_days, rate, updated_at) VALUES (?, ?, ?)`,
				p.TenorDays, p.Rate, now); err != nil {
				return fmt.Errorf("failed to insert rate point: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.log.Info().Int("points", len(curve.Points)).Msg("Rate curve replaced")
	return nil
}

func midnightUTC(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
