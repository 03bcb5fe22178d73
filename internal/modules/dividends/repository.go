package dividends

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
)

// Repository handles dividend event storage in history.db. Events are the
// raw per-share payments supplied by the market-data collaborator; the
// projector consumes them as an immutable snapshot.
type Repository struct {
	historyDB *sql.DB
	log       zerolog.Logger
}

// dividendEventColumns is the column list for the dividend_events table.
// Column order must match the scan calls below.
const dividendEventColumns = `ticker, payment_date, amount_per_share`

// NewRepository creates a new dividend event repository.
func NewRepository(historyDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		historyDB: historyDB,
		log:       log.With().Str("repo", "dividends").Logger(),
	}
}

// Save upserts a batch of dividend events. Duplicate (ticker, date, amount)
// rows are ignored so re-syncs from the data provider are idempotent.
func (r *Repository) Save(events []domain.DividendEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT OR IGNORE INTO dividend_events (ticker, payment_date, amount_per_share)
		VALUES (?, ?, ?)
	`

	err := database.WithTransaction(r.historyDB, func(tx *sql.Tx) error {
		for _, ev := range events {
			if _, err := tx.Exec(query, strings.ToUpper(ev.Ticker), ev.Date.Unix(), ev.AmountPerShare); err != nil {
				return fmt.Errorf("failed to save dividend event for %s: %w", ev.Ticker, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().Int("events", len(events)).Msg("Saved dividend events")
	return nil
}

// GetByTicker retrieves all events for a ticker ordered by payment date.
func (r *Repository) GetByTicker(ticker string) ([]domain.DividendEvent, error) {
	query := "SELECT " + dividendEventColumns + ` FROM dividend_events
		WHERE ticker = ? ORDER BY payment_date ASC`

	rows, err := r.historyDB.Query(query, strings.ToUpper(ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetAll retrieves every stored event ordered by payment date.
func (r *Repository) GetAll() ([]domain.DividendEvent, error) {
	query := "SELECT " + dividendEventColumns + " FROM dividend_events ORDER BY payment_date ASC"

	rows, err := r.historyDB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]domain.DividendEvent, error) {
	var events []domain.DividendEvent
	for rows.Next() {
		var ev domain.DividendEvent
		var dateUnix int64
		if err := rows.Scan(&ev.Ticker, &dateUnix, &ev.AmountPerShare); err != nil {
			return nil, fmt.Errorf("failed to scan dividend event: %w", err)
		}
		ev.Date = time.Unix(dateUnix, 0).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend events: %w", err)
	}
	return events, nil
}
