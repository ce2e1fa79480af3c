package models

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/jadewell/loon/internal/errors"
)

// Rate sources recorded on a snapshot.
const (
	FxSourceLive     = "live"
	FxSourceFallback = "fallback"
	FxSourceMock     = "mock"
)

// FxSnapshot is an immutable point-in-time set of conversion rates against
// the CAD base. Every transaction references the snapshot it was priced
// with; edits reuse the referenced snapshot so historical pricing never
// drifts.
type FxSnapshot struct {
	ID         string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	CadPerUsd  decimal.Decimal `json:"cad_per_usd" gorm:"column:cad_per_usd;type:decimal(20,10);not null"`
	CadPerCny  decimal.Decimal `json:"cad_per_cny" gorm:"column:cad_per_cny;type:decimal(20,10);not null"`
	CapturedAt time.Time       `json:"captured_at" gorm:"column:captured_at;not null"`
	Source     string          `json:"source" gorm:"column:source;type:varchar(50);not null"`

	// Degraded marks snapshots priced from the fallback rate set because
	// the rate source was unavailable. Downstream auditing uses it to
	// separate market-priced transactions from fallback-priced ones.
	Degraded bool `json:"degraded" gorm:"column:degraded;not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the FxSnapshot model
func (FxSnapshot) TableName() string {
	return "fx_snapshots"
}

// Validate validates the snapshot data
func (s *FxSnapshot) Validate() error {
	if s.CadPerUsd.IsZero() || s.CadPerUsd.IsNegative() {
		return &apperrors.ErrValidation{Field: "cad_per_usd", Message: "must be positive"}
	}
	if s.CadPerCny.IsZero() || s.CadPerCny.IsNegative() {
		return &apperrors.ErrValidation{Field: "cad_per_cny", Message: "must be positive"}
	}
	if s.CapturedAt.IsZero() {
		return &apperrors.ErrValidation{Field: "captured_at", Message: "is required"}
	}
	if s.Source == "" {
		return &apperrors.ErrValidation{Field: "source", Message: "is required"}
	}
	return nil
}

// CadPer returns the CAD-per-unit rate for a currency. The base currency
// converts at 1.
func (s *FxSnapshot) CadPer(c Currency) decimal.Decimal {
	switch c {
	case CurrencyUSD:
		return s.CadPerUsd
	case CurrencyCNY:
		return s.CadPerCny
	default:
		return decimal.NewFromInt(1)
	}
}
