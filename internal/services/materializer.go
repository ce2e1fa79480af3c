package services

import (
	"context"
	"fmt"

	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
	"github.com/jadewell/loon/internal/repositories"
)

type occurrenceMaterializer struct {
	expander  ScheduleExpander
	converter CurrencyConverter
}

// NewOccurrenceMaterializer creates a new occurrence materializer
func NewOccurrenceMaterializer(expander ScheduleExpander, converter CurrencyConverter) OccurrenceMaterializer {
	return &occurrenceMaterializer{expander: expander, converter: converter}
}

// BuildSeries turns a seed draft into a persistable plan. With an empty
// frequency the plan is a single ad hoc transaction; otherwise one rule and
// one snapshot are shared by the seed and every generated occurrence,
// materialized eagerly for the whole bounded horizon.
func (m *occurrenceMaterializer) BuildSeries(ctx context.Context, draft *TransactionDraft, frequency models.Frequency) (*SeriesPlan, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	// One snapshot per call; the seed conversion captures it.
	conv, err := m.converter.Convert(ctx, draft.OriginalCurrency, draft.OriginalAmountCents, nil)
	if err != nil {
		return nil, err
	}

	seed := transactionFromDraft(draft)
	seed.ApplyConversion(conv)

	if frequency == "" {
		return &SeriesPlan{Snapshot: conv.Snapshot, Occurrences: []*models.Transaction{seed}}, nil
	}

	rec, err := frequency.Recurrence()
	if err != nil {
		return nil, err
	}

	rule, err := models.NewScheduleRule(draft.UserID, ruleLabel(draft), frequency, draft.Date)
	if err != nil {
		return nil, err
	}
	rule.ID = repositories.NewID()

	dates, err := m.expander.Expand(draft.Date, frequency, rec.MaxOccurrences)
	if err != nil {
		return nil, fmt.Errorf("failed to expand schedule: %w", err)
	}

	// The seed's authoritative date is itself; only generated occurrences
	// carry a scheduled projection.
	seed.IsScheduled = true
	seed.ScheduleRuleID = &rule.ID

	occurrences := make([]*models.Transaction, 0, len(dates)+1)
	occurrences = append(occurrences, seed)
	for _, d := range dates {
		occ := transactionFromDraft(draft)
		occ.Date = d
		scheduled := d
		occ.ScheduledOn = &scheduled
		occ.IsScheduled = true
		occ.ScheduleRuleID = &rule.ID
		occ.ApplyConversion(conv)
		occurrences = append(occurrences, occ)
	}

	return &SeriesPlan{Rule: rule, Snapshot: conv.Snapshot, Occurrences: occurrences}, nil
}

// transactionFromDraft copies every descriptive field of the draft onto a
// fresh transaction with its own id and re-keyed line items.
func transactionFromDraft(draft *TransactionDraft) *models.Transaction {
	t := &models.Transaction{
		ID:                  repositories.NewID(),
		UserID:              draft.UserID,
		Type:                draft.Type,
		Date:                draft.Date.UTC(),
		Merchant:            draft.Merchant,
		Place:               draft.Place,
		City:                draft.City,
		Category:            draft.Category,
		Subcategory:         draft.Subcategory,
		Details:             draft.Details,
		OriginalCurrency:    draft.OriginalCurrency,
		OriginalAmountCents: draft.OriginalAmountCents,
	}
	for _, li := range draft.LineItems {
		t.LineItems = append(t.LineItems, &models.LineItem{
			ID:            repositories.NewID(),
			TransactionID: t.ID,
			Label:         li.Label,
			AmountCents:   li.AmountCents,
			Position:      li.Position,
		})
	}
	return t
}

func ruleLabel(draft *TransactionDraft) string {
	if draft.Merchant != nil && *draft.Merchant != "" {
		return *draft.Merchant
	}
	if draft.Category != nil && *draft.Category != "" {
		return *draft.Category
	}
	return "recurring " + draft.Type
}

func validateDraft(draft *TransactionDraft) error {
	if draft == nil {
		return &apperrors.ErrValidation{Field: "draft", Message: "is required"}
	}
	if draft.UserID == "" {
		return &apperrors.ErrValidation{Field: "user_id", Message: "is required"}
	}
	if draft.Type != models.TypeExpense && draft.Type != models.TypeIncome {
		return &apperrors.ErrValidation{Field: "type", Message: "must be 'expense' or 'income'"}
	}
	if draft.Date.IsZero() {
		return &apperrors.ErrValidation{Field: "date", Message: "is required"}
	}
	if !draft.OriginalCurrency.Supported() {
		return &apperrors.ErrValidation{Field: "original_currency", Message: "must be one of CAD, USD, CNY"}
	}
	if draft.OriginalAmountCents < 0 {
		return &apperrors.ErrValidation{Field: "original_amount_cents", Message: "must be non-negative"}
	}
	for _, li := range draft.LineItems {
		if li.Label == "" {
			return &apperrors.ErrValidation{Field: "line_items.label", Message: "is required"}
		}
		if li.AmountCents < 0 {
			return &apperrors.ErrValidation{Field: "line_items.amount_cents", Message: "must be non-negative"}
		}
	}
	return nil
}
