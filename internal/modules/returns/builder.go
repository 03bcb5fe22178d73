// Package returns converts raw price series into aligned periodic return
// series. It is the leaf computation every risk and simulation engine
// consumes: prices go in once, returns come out validated and date-ordered.
package returns

import (
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// Builder derives periodic return series from price series.
type Builder struct {
	log zerolog.Logger
}

// NewBuilder creates a new return series builder.
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{
		log: log.With().Str("component", "returns").Logger(),
	}
}

// Build derives a periodic return series from a price series.
// The return at step i is prices[i+1]/prices[i] - 1, dated at the later
// price. Requires at least two price points.
func (b *Builder) Build(prices domain.PriceSeries) (domain.ReturnSeries, error) {
	if prices.Len() < 2 {
		return domain.ReturnSeries{}, &domain.InsufficientDataError{
			Op:   "returns.Build",
			Need: 2,
			Got:  prices.Len(),
		}
	}

	points := make([]domain.ReturnPoint, prices.Len()-1)
	for i := 1; i < prices.Len(); i++ {
		prev := prices.Points[i-1]
		cur := prices.Points[i]
		points[i-1] = domain.ReturnPoint{
			Date:   cur.Date,
			Return: cur.Close/prev.Close - 1,
		}
	}

	b.log.Debug().
		Str("ticker", prices.Ticker).
		Int("num_returns", len(points)).
		Msg("Built return series")

	return domain.ReturnSeries{Ticker: prices.Ticker, Points: points}, nil
}

// Align intersects two return series by date (inner join), preserving date
// order. Both outputs have identical length and date sequences. Fails if
// fewer than two overlapping observations remain.
func (b *Builder) Align(a, c domain.ReturnSeries) (domain.ReturnSeries, domain.ReturnSeries, error) {
	inC := make(map[int64]domain.ReturnPoint, c.Len())
	for _, p := range c.Points {
		inC[p.Date.Unix()] = p
	}

	var outA, outC []domain.ReturnPoint
	for _, p := range a.Points {
		if match, ok := inC[p.Date.Unix()]; ok {
			outA = append(outA, p)
			outC = append(outC, match)
		}
	}

	if len(outA) < 2 {
		return domain.ReturnSeries{}, domain.ReturnSeries{}, &domain.InsufficientDataError{
			Op:   "returns.Align",
			Need: 2,
			Got:  len(outA),
		}
	}

	b.log.Debug().
		Str("a", a.Ticker).
		Str("b", c.Ticker).
		Int("overlap", len(outA)).
		Msg("Aligned return series")

	return domain.ReturnSeries{Ticker: a.Ticker, Points: outA},
		domain.ReturnSeries{Ticker: c.Ticker, Points: outC},
		nil
}
