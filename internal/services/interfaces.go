package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jadewell/loon/internal/models"
)

// Scope selects how far an update or delete reaches within a series.
type Scope string

const (
	// ScopeSingle mutates only the target occurrence.
	ScopeSingle Scope = "single"
	// ScopeAll mutates the target and every later occurrence of its series.
	ScopeAll Scope = "all"
)

// RateSource is the external collaborator that prices one currency against
// another. Implementations must bound the call; the snapshot service falls
// back to a documented rate set when the source fails.
type RateSource interface {
	GetRate(ctx context.Context, from, to models.Currency) (decimal.Decimal, time.Time, error)
}

// FxSnapshotService captures "now" snapshots and resolves historical ones.
type FxSnapshotService interface {
	// Capture prices CAD against every supported currency and returns a new
	// snapshot with an assigned id. The snapshot is persisted together with
	// the records that reference it, not here.
	Capture(ctx context.Context) (*models.FxSnapshot, error)
	// Resolve returns the immutable snapshot with the given id.
	Resolve(ctx context.Context, id string) (*models.FxSnapshot, error)
}

// CurrencyConverter computes all derived currency amounts for one source
// amount under one snapshot.
type CurrencyConverter interface {
	// Convert prices amountCents of currency in every supported currency.
	// A nil snapshot means "price at the current market": a fresh snapshot
	// is captured. A non-nil snapshot is reused verbatim, which is what
	// keeps historical edits from drifting.
	Convert(ctx context.Context, currency models.Currency, amountCents int64, snapshot *models.FxSnapshot) (*models.Conversion, error)
}

// ScheduleExpander produces the future occurrence dates of a series.
type ScheduleExpander interface {
	// Expand returns the strictly increasing occurrence dates after anchor.
	// Pure: same inputs always produce the same sequence.
	Expand(anchor time.Time, frequency models.Frequency, maxOccurrences int) ([]time.Time, error)
}

// LineItemDraft is one structured sub-item supplied at creation time.
type LineItemDraft struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
	Position    int    `json:"position"`
}

// TransactionDraft carries the user-entered seed of a creation request.
type TransactionDraft struct {
	UserID              string          `json:"user_id"`
	Type                string          `json:"type"`
	Date                time.Time       `json:"date"`
	Merchant            *string         `json:"merchant"`
	Place               *string         `json:"place"`
	City                *string         `json:"city"`
	Category            *string         `json:"category"`
	Subcategory         *string         `json:"subcategory"`
	Details             *string         `json:"details"`
	OriginalCurrency    models.Currency `json:"original_currency"`
	OriginalAmountCents int64           `json:"original_amount_cents"`
	LineItems           []LineItemDraft `json:"line_items"`
}

// SeriesPlan is the materialized but not yet persisted output of BuildSeries:
// one rule (nil for ad hoc creations), one shared snapshot, and the seed plus
// generated occurrences in ascending date order.
type SeriesPlan struct {
	Rule        *models.ScheduleRule
	Snapshot    *models.FxSnapshot
	Occurrences []*models.Transaction
}

// OccurrenceMaterializer turns a seed draft into a full series plan.
type OccurrenceMaterializer interface {
	BuildSeries(ctx context.Context, draft *TransactionDraft, frequency models.Frequency) (*SeriesPlan, error)
}

// ResolvedScope is the set of records a scoped mutation touches.
type ResolvedScope struct {
	Cutoff       time.Time
	Transactions []*models.Transaction
}

// ScopeResolver computes the affected set for scoped mutations.
type ScopeResolver interface {
	Resolve(ctx context.Context, target *models.Transaction, scope Scope) (*ResolvedScope, error)
}

// SeriesResult is the outcome of a create request.
type SeriesResult struct {
	Seed      *models.Transaction   `json:"seed"`
	Generated []*models.Transaction `json:"generated"`
}

// SeriesService is the external surface of the engine: create a transaction
// (optionally recurring), update an occurrence, delete an occurrence.
type SeriesService interface {
	// CreateSeries creates an ad hoc transaction when frequency is empty, or
	// eagerly materializes the whole bounded series when a frequency is given.
	CreateSeries(ctx context.Context, userID string, draft *TransactionDraft, frequency models.Frequency) (*SeriesResult, error)
	// UpdateOccurrence applies a patch to the target, or to the target and
	// all later occurrences when scope is "all".
	UpdateOccurrence(ctx context.Context, userID, targetID string, scope Scope, patch *models.TransactionPatch) ([]*models.Transaction, error)
	// DeleteOccurrence removes the target, or the target and all later
	// occurrences when scope is "all". Returns the deleted ids.
	DeleteOccurrence(ctx context.Context, userID, targetID string, scope Scope) ([]string, error)
	// ListOccurrences returns every occurrence of one rule in date order.
	ListOccurrences(ctx context.Context, userID, ruleID string) ([]*models.Transaction, error)
}
