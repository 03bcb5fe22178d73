package returns

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func priceSeries(t *testing.T, ticker string, closes ...float64) domain.PriceSeries {
	t.Helper()
	points := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = domain.PricePoint{Date: day(i), Close: c}
	}
	s, err := domain.NewPriceSeries(ticker, points)
	require.NoError(t, err)
	return s
}

func TestBuild(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	prices := priceSeries(t, "PETR4", 100, 110, 99)
	rs, err := b.Build(prices)

	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())
	assert.InDelta(t, 0.10, rs.Points[0].Return, 1e-12)
	assert.InDelta(t, -0.10, rs.Points[1].Return, 1e-12)
	// Dates match the input shifted by one
	assert.True(t, rs.Points[0].Date.Equal(day(1)))
	assert.True(t, rs.Points[1].Date.Equal(day(2)))
}

func TestBuild_LengthProperty(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	for n := 2; n <= 10; n++ {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		rs, err := b.Build(priceSeries(t, "VALE3", closes...))
		require.NoError(t, err)
		assert.Equal(t, n-1, rs.Len())
	}
}

func TestBuild_InsufficientData(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	_, err := b.Build(priceSeries(t, "PETR4", 100))

	var insufficientErr *domain.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 2, insufficientErr.Need)
	assert.Equal(t, 1, insufficientErr.Got)
}

func TestAlign(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	a := domain.ReturnSeries{Ticker: "PORT", Points: []domain.ReturnPoint{
		{Date: day(1), Return: 0.01},
		{Date: day(2), Return: 0.02},
		{Date: day(4), Return: 0.04},
	}}
	c := domain.ReturnSeries{Ticker: "IBOV", Points: []domain.ReturnPoint{
		{Date: day(2), Return: 0.002},
		{Date: day(3), Return: 0.003},
		{Date: day(4), Return: 0.004},
	}}

	alignedA, alignedC, err := b.Align(a, c)

	require.NoError(t, err)
	require.Equal(t, alignedA.Len(), alignedC.Len())
	require.Equal(t, 2, alignedA.Len())
	for i := range alignedA.Points {
		assert.True(t, alignedA.Points[i].Date.Equal(alignedC.Points[i].Date))
	}
	assert.InDelta(t, 0.02, alignedA.Points[0].Return, 1e-12)
	assert.InDelta(t, 0.002, alignedC.Points[0].Return, 1e-12)
}

func TestAlign_InsufficientOverlap(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	a := domain.ReturnSeries{Points: []domain.ReturnPoint{
		{Date: day(1), Return: 0.01},
		{Date: day(2), Return: 0.02},
	}}
	c := domain.ReturnSeries{Points: []domain.ReturnPoint{
		{Date: day(2), Return: 0.002},
		{Date: day(3), Return: 0.003},
	}}

	_, _, err := b.Align(a, c)

	var insufficientErr *domain.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
}
