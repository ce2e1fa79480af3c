package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
	"github.com/jadewell/loon/internal/repositories"
)

type seriesService struct {
	transactions repositories.TransactionRepository
	snapshots    FxSnapshotService
	converter    CurrencyConverter
	materializer OccurrenceMaterializer
	scopes       ScopeResolver
	logger       *zap.Logger

	// Scoped mutations against one rule are serialized so two racing
	// "this and all future" requests cannot interleave across the
	// resolved set.
	ruleLocks sync.Map // ruleID -> *sync.Mutex
}

// NewSeriesService creates a new series service
func NewSeriesService(
	transactions repositories.TransactionRepository,
	snapshots FxSnapshotService,
	converter CurrencyConverter,
	materializer OccurrenceMaterializer,
	scopes ScopeResolver,
	logger *zap.Logger,
) SeriesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &seriesService{
		transactions: transactions,
		snapshots:    snapshots,
		converter:    converter,
		materializer: materializer,
		scopes:       scopes,
		logger:       logger,
	}
}

func (s *seriesService) CreateSeries(ctx context.Context, userID string, draft *TransactionDraft, frequency models.Frequency) (*SeriesResult, error) {
	if userID == "" {
		return nil, &apperrors.ErrValidation{Field: "user_id", Message: "is required"}
	}
	if draft == nil {
		return nil, &apperrors.ErrValidation{Field: "draft", Message: "is required"}
	}
	draft.UserID = userID
	if frequency != "" && !frequency.Valid() {
		return nil, &apperrors.ErrValidation{Field: "frequency", Message: "must be one of daily, weekly, biweekly, monthly, annually"}
	}

	plan, err := s.materializer.BuildSeries(ctx, draft, frequency)
	if err != nil {
		return nil, err
	}
	for _, t := range plan.Occurrences {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.transactions.CreateSeries(ctx, plan.Rule, plan.Snapshot, plan.Occurrences); err != nil {
		s.logger.Error("series persistence failed",
			zap.String("op", "create_series"),
			zap.String("user_id", userID),
			zap.String("frequency", string(frequency)),
			zap.Int("occurrences", len(plan.Occurrences)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to persist series: %w", err)
	}

	return &SeriesResult{Seed: plan.Occurrences[0], Generated: plan.Occurrences[1:]}, nil
}

func (s *seriesService) UpdateOccurrence(ctx context.Context, userID, targetID string, scope Scope, patch *models.TransactionPatch) ([]*models.Transaction, error) {
	if patch == nil || patch.Empty() {
		return nil, &apperrors.ErrValidation{Field: "patch", Message: "no fields to update"}
	}
	// Validation happens before any side effect.
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	target, err := s.transactions.GetByID(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	if target.IsScheduled && target.ScheduleRuleID != nil {
		unlock := s.lockRule(*target.ScheduleRuleID)
		defer unlock()
	}

	resolved, err := s.scopes.Resolve(ctx, target, scope)
	if err != nil {
		return nil, err
	}

	updated := make([]*models.Transaction, 0, len(resolved.Transactions))
	for _, rec := range resolved.Transactions {
		patch.Apply(rec)
		if patch.TouchesMoney() {
			// Re-price against the record's own snapshot, never a fresh
			// rate: the historical market basis must not drift.
			snapshot, err := s.snapshots.Resolve(ctx, rec.FxSnapshotID)
			if err != nil {
				return nil, err
			}
			conv, err := s.converter.Convert(ctx, rec.OriginalCurrency, rec.OriginalAmountCents, snapshot)
			if err != nil {
				return nil, err
			}
			rec.ApplyConversion(conv)
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		updated = append(updated, rec)
	}

	if err := s.transactions.UpdateBatch(ctx, updated); err != nil {
		s.logger.Error("scoped update failed",
			zap.String("op", "update_occurrence"),
			zap.String("user_id", userID),
			zap.String("target_id", targetID),
			zap.String("scope", string(scope)),
			zap.Int("affected", len(updated)),
			zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (s *seriesService) DeleteOccurrence(ctx context.Context, userID, targetID string, scope Scope) ([]string, error) {
	target, err := s.transactions.GetByID(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	if target.IsScheduled && target.ScheduleRuleID != nil {
		unlock := s.lockRule(*target.ScheduleRuleID)
		defer unlock()
	}

	resolved, err := s.scopes.Resolve(ctx, target, scope)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resolved.Transactions))
	for _, rec := range resolved.Transactions {
		ids = append(ids, rec.ID)
	}

	// The schedule rule stays behind even if this empties the series;
	// orphan cleanup is an out-of-band sweep, not a live-path concern.
	deleted, err := s.transactions.DeleteBatch(ctx, userID, ids)
	if err != nil {
		s.logger.Error("scoped delete failed",
			zap.String("op", "delete_occurrence"),
			zap.String("user_id", userID),
			zap.String("target_id", targetID),
			zap.String("scope", string(scope)),
			zap.Int("affected", len(ids)),
			zap.Error(err))
		return nil, err
	}
	return deleted, nil
}

func (s *seriesService) ListOccurrences(ctx context.Context, userID, ruleID string) ([]*models.Transaction, error) {
	if ruleID == "" {
		return nil, &apperrors.ErrValidation{Field: "schedule_rule_id", Message: "is required"}
	}
	return s.transactions.ListByRule(ctx, userID, ruleID)
}

// lockRule serializes scoped mutations per schedule rule.
func (s *seriesService) lockRule(ruleID string) func() {
	v, _ := s.ruleLocks.LoadOrStore(ruleID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
