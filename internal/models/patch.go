package models

import (
	"time"

	apperrors "github.com/jadewell/loon/internal/errors"
)

// TransactionPatch is a typed partial update: nil means "leave unchanged",
// non-nil means "set to this value". The set of changed fields is therefore
// an enumerable value rather than a dynamically shaped object.
type TransactionPatch struct {
	Type        *string    `json:"type,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Merchant    *string    `json:"merchant,omitempty"`
	Place       *string    `json:"place,omitempty"`
	City        *string    `json:"city,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Subcategory *string    `json:"subcategory,omitempty"`
	Details     *string    `json:"details,omitempty"`

	OriginalCurrency    *Currency `json:"original_currency,omitempty"`
	OriginalAmountCents *int64    `json:"original_amount_cents,omitempty"`
}

// TouchesMoney reports whether the patch changes the fx basis inputs, which
// forces the derived amounts to be recomputed against the record's own
// snapshot.
func (p *TransactionPatch) TouchesMoney() bool {
	return p.OriginalCurrency != nil || p.OriginalAmountCents != nil
}

// Empty reports whether the patch changes nothing.
func (p *TransactionPatch) Empty() bool {
	return p.Type == nil && p.Date == nil && p.Merchant == nil && p.Place == nil &&
		p.City == nil && p.Category == nil && p.Subcategory == nil && p.Details == nil &&
		p.OriginalCurrency == nil && p.OriginalAmountCents == nil
}

// Validate validates the patch values before any side effect.
func (p *TransactionPatch) Validate() error {
	if p.Type != nil && *p.Type != TypeExpense && *p.Type != TypeIncome {
		return &apperrors.ErrValidation{Field: "type", Message: "must be 'expense' or 'income'"}
	}
	if p.Date != nil && p.Date.IsZero() {
		return &apperrors.ErrValidation{Field: "date", Message: "is required"}
	}
	if p.OriginalCurrency != nil && !p.OriginalCurrency.Supported() {
		return &apperrors.ErrValidation{Field: "original_currency", Message: "must be one of CAD, USD, CNY"}
	}
	if p.OriginalAmountCents != nil && *p.OriginalAmountCents < 0 {
		return &apperrors.ErrValidation{Field: "original_amount_cents", Message: "must be non-negative"}
	}
	return nil
}

// Apply writes the patch onto a transaction. Derived amounts are not
// recomputed here; the caller re-converts when TouchesMoney reports true.
func (p *TransactionPatch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	if p.Merchant != nil {
		t.Merchant = p.Merchant
	}
	if p.Place != nil {
		t.Place = p.Place
	}
	if p.City != nil {
		t.City = p.City
	}
	if p.Category != nil {
		t.Category = p.Category
	}
	if p.Subcategory != nil {
		t.Subcategory = p.Subcategory
	}
	if p.Details != nil {
		t.Details = p.Details
	}
	if p.OriginalCurrency != nil {
		t.OriginalCurrency = *p.OriginalCurrency
	}
	if p.OriginalAmountCents != nil {
		t.OriginalAmountCents = *p.OriginalAmountCents
	}
}
