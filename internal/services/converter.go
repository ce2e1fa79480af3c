package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
)

type currencyConverter struct {
	snapshots FxSnapshotService
}

// NewCurrencyConverter creates a new currency converter
func NewCurrencyConverter(snapshots FxSnapshotService) CurrencyConverter {
	return &currencyConverter{snapshots: snapshots}
}

// Convert prices amountCents of currency in every supported currency under
// one snapshot. The amount in the source currency is carried through exactly;
// the others are derived from the unrounded CAD value so a round trip through
// the same snapshot stays within one cent.
func (c *currencyConverter) Convert(ctx context.Context, currency models.Currency, amountCents int64, snapshot *models.FxSnapshot) (*models.Conversion, error) {
	if !currency.Supported() {
		return nil, &apperrors.ErrValidation{Field: "currency", Message: "must be one of CAD, USD, CNY"}
	}
	if amountCents < 0 {
		return nil, &apperrors.ErrValidation{Field: "amount_cents", Message: "must be non-negative"}
	}

	if snapshot == nil {
		captured, err := c.snapshots.Capture(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to capture snapshot: %w", err)
		}
		snapshot = captured
	}

	amount := decimal.NewFromInt(amountCents)
	cadExact := amount.Mul(snapshot.CadPer(currency))

	conv := &models.Conversion{
		AmountCadCents: roundCents(cadExact),
		AmountUsdCents: roundCents(cadExact.Div(snapshot.CadPerUsd)),
		AmountCnyCents: roundCents(cadExact.Div(snapshot.CadPerCny)),
		Snapshot:       snapshot,
	}
	// CAD is the fixed reporting base.
	conv.AmountBaseCadCents = conv.AmountCadCents

	// Identity in the source currency: no rounding artifacts on the amount
	// the user typed.
	switch currency {
	case models.CurrencyCAD:
		conv.AmountCadCents = amountCents
		conv.AmountBaseCadCents = amountCents
	case models.CurrencyUSD:
		conv.AmountUsdCents = amountCents
	case models.CurrencyCNY:
		conv.AmountCnyCents = amountCents
	}

	return conv, nil
}

// roundCents rounds half away from zero to whole cents.
func roundCents(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
