package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
)

func TestScheduleRuleGetByIDScopesToUser(t *testing.T) {
	database := newTestDB(t)
	txRepo := NewTransactionRepository(database)
	ruleRepo := NewScheduleRuleRepository(database)
	ctx := context.Background()

	rule, _ := seedSeries(t, txRepo, "user-1", 2)

	got, err := ruleRepo.GetByID(ctx, "user-1", rule.ID)
	require.NoError(t, err)
	require.Equal(t, rule.Label, got.Label)

	_, err = ruleRepo.GetByID(ctx, "user-2", rule.ID)
	require.True(t, apperrors.IsNotFound(err))
}

func TestDeleteOrphanedSparesReferencedRules(t *testing.T) {
	database := newTestDB(t)
	txRepo := NewTransactionRepository(database)
	ruleRepo := NewScheduleRuleRepository(database)
	ctx := context.Background()

	kept, keptTxs := seedSeries(t, txRepo, "user-1", 3)
	orphan, orphanTxs := seedSeries(t, txRepo, "user-1", 2)

	ids := make([]string, 0, len(orphanTxs))
	for _, tx := range orphanTxs {
		ids = append(ids, tx.ID)
	}
	_, err := txRepo.DeleteBatch(ctx, "user-1", ids)
	require.NoError(t, err)

	swept, err := ruleRepo.DeleteOrphaned(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, swept)

	_, err = ruleRepo.GetByID(ctx, "user-1", orphan.ID)
	require.True(t, apperrors.IsNotFound(err))

	got, err := ruleRepo.GetByID(ctx, "user-1", kept.ID)
	require.NoError(t, err)
	require.Equal(t, kept.ID, got.ID)
	require.Len(t, mustList(t, txRepo, "user-1", kept.ID), len(keptTxs))
}

func TestFxSnapshotGetByID(t *testing.T) {
	database := newTestDB(t)
	txRepo := NewTransactionRepository(database)
	snapRepo := NewFxSnapshotRepository(database)
	ctx := context.Background()

	snapshot := newSnapshot()
	tx := newOccurrence("user-1", nil, snapshot.ID, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, txRepo.CreateSeries(ctx, nil, snapshot, []*models.Transaction{tx}))

	got, err := snapRepo.GetByID(ctx, snapshot.ID)
	require.NoError(t, err)
	require.True(t, got.CadPerUsd.Equal(snapshot.CadPerUsd))
	require.True(t, got.CadPerCny.Equal(snapshot.CadPerCny))

	_, err = snapRepo.GetByID(ctx, "missing")
	require.True(t, apperrors.IsNotFound(err))

	_, err = snapRepo.GetByID(ctx, "")
	require.True(t, apperrors.IsNotFound(err))
}

func mustList(t *testing.T, repo TransactionRepository, userID, ruleID string) []*models.Transaction {
	t.Helper()
	txs, err := repo.ListByRule(context.Background(), userID, ruleID)
	require.NoError(t, err)
	return txs
}
