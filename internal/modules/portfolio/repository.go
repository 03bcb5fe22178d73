package portfolio

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
)

const holdingColumns = "ticker, name, sector, asset_class, quantity, average_cost"

// Repository handles holding persistence on portfolio.db. Tickers are
// normalized to upper case before every read and write so lookups are
// case-insensitive.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new holdings repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

// GetAll returns every holding, ordered by ticker.
func (r *Repository) GetAll() ([]domain.Asset, error) {
	query := fmt.Sprintf("SELECT %s FROM holdings ORDER BY ticker", holdingColumns)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		asset, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return assets, nil
}

// Get returns a holding by ticker, or nil when no such holding exists.
func (r *Repository) Get(ticker string) (*domain.Asset, error) {
	query := fmt.Sprintf("SELECT %s FROM holdings WHERE ticker = ?", holdingColumns)

	rows, err := r.db.Query(query, normalizeTicker(ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to query holding: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	asset, err := scanHolding(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan holding: %w", err)
	}
	return &asset, nil
}

// Upsert inserts or replaces a holding keyed by ticker.
func (r *Repository) Upsert(asset domain.Asset) error {
	asset.Ticker = normalizeTicker(asset.Ticker)
	if err := asset.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT OR REPLACE INTO holdings (%s, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, holdingColumns)

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(query,
			asset.Ticker,
			asset.Name,
			asset.Sector,
			string(asset.AssetClass),
			asset.Quantity,
			asset.AverageCost,
			time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert holding: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("ticker", asset.Ticker).Float64("quantity", asset.Quantity).Msg("Holding upserted")
	return nil
}

// Delete removes a holding by ticker. Deleting a ticker that does not exist
// is not an error.
func (r *Repository) Delete(ticker string) error {
	ticker = normalizeTicker(ticker)

	result, err := r.db.Exec("DELETE FROM holdings WHERE ticker = ?", ticker)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Info().Str("ticker", ticker).Int64("rows_affected", rowsAffected).Msg("Holding deleted")
	return nil
}

// Count returns the number of holdings.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM holdings").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return count, nil
}

// Load reads all holdings and assembles them into a validated Portfolio.
func (r *Repository) Load() (domain.Portfolio, error) {
	assets, err := r.GetAll()
	if err != nil {
		return domain.Portfolio{}, err
	}
	return domain.NewPortfolio(assets)
}

func scanHolding(rows *sql.Rows) (domain.Asset, error) {
	var asset domain.Asset
	var class string
	err := rows.Scan(
		&asset.Ticker,
		&asset.Name,
		&asset.Sector,
		&class,
		&asset.Quantity,
		&asset.AverageCost,
	)
	if err != nil {
		return asset, err
	}
	asset.AssetClass = domain.AssetClass(class)
	return asset, nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
