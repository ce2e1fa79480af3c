package services

import (
	"context"
	"time"

	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
	"github.com/jadewell/loon/internal/repositories"
)

type scopeResolver struct {
	transactions repositories.TransactionRepository
}

// NewScopeResolver creates a new scope resolver
func NewScopeResolver(transactions repositories.TransactionRepository) ScopeResolver {
	return &scopeResolver{transactions: transactions}
}

// Resolve computes the set of records a scoped mutation touches. Scope
// "single" is exactly the target. Scope "all" on a scheduled target is the
// target and every later occurrence of its rule, partitioned at the midnight
// boundary of the target's calendar day so past occurrences are never
// disturbed. Scope "all" on an unscheduled target degrades to "single".
func (r *scopeResolver) Resolve(ctx context.Context, target *models.Transaction, scope Scope) (*ResolvedScope, error) {
	switch scope {
	case ScopeSingle, ScopeAll, "":
	default:
		return nil, &apperrors.ErrValidation{Field: "scope", Message: "must be 'single' or 'all'"}
	}

	if scope != ScopeAll || !target.IsScheduled || target.ScheduleRuleID == nil {
		return &ResolvedScope{
			Cutoff:       CutoffFor(target.Date),
			Transactions: []*models.Transaction{target},
		}, nil
	}

	cutoff := CutoffFor(target.Date)
	affected, err := r.transactions.ListByRuleFrom(ctx, target.UserID, *target.ScheduleRuleID, cutoff)
	if err != nil {
		return nil, err
	}
	return &ResolvedScope{Cutoff: cutoff, Transactions: affected}, nil
}

// CutoffFor is the midnight boundary of the date's calendar day as a
// UTC-normalized instant. Everything on or after it counts as "this and
// future"; everything before it is history.
func CutoffFor(date time.Time) time.Time {
	d := date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
