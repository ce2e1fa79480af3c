package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jadewell/loon/internal/models"
)

// MockRateSource provides fixed exchange rates for testing and development.
type MockRateSource struct {
	rates map[string]decimal.Decimal
	asOf  time.Time

	// Fail makes every GetRate call error, exercising the fallback path.
	Fail bool
}

// NewMockRateSource creates a new mock rate source with hardcoded rates.
func NewMockRateSource() *MockRateSource {
	return &MockRateSource{
		rates: map[string]decimal.Decimal{
			"USD:CAD": decimal.NewFromFloat(1.40),
			"CNY:CAD": decimal.NewFromFloat(0.20),
			"CAD:USD": decimal.NewFromFloat(1.0 / 1.40),
			"CAD:CNY": decimal.NewFromFloat(1.0 / 0.20),

			// Same currency rates
			"CAD:CAD": decimal.NewFromInt(1),
			"USD:USD": decimal.NewFromInt(1),
			"CNY:CNY": decimal.NewFromInt(1),
		},
		asOf: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

// SetRate overrides one directional rate.
func (p *MockRateSource) SetRate(from, to models.Currency, rate decimal.Decimal) {
	p.rates[string(from)+":"+string(to)] = rate
}

// GetRate retrieves the mock exchange rate from one currency to another.
func (p *MockRateSource) GetRate(ctx context.Context, from, to models.Currency) (decimal.Decimal, time.Time, error) {
	if p.Fail {
		return decimal.Zero, time.Time{}, fmt.Errorf("rate source unavailable")
	}
	if from == to {
		return decimal.NewFromInt(1), p.asOf, nil
	}

	key := string(from) + ":" + string(to)
	if rate, exists := p.rates[key]; exists {
		return rate, p.asOf, nil
	}

	return decimal.Zero, time.Time{}, fmt.Errorf("exchange rate not available for %s to %s", from, to)
}
