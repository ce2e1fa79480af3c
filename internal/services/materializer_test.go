package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
)

func newTestMaterializer() OccurrenceMaterializer {
	snapshots := NewFxSnapshotService(NewMockRateSource(), nil, nil)
	return NewOccurrenceMaterializer(NewScheduleExpander(), NewCurrencyConverter(snapshots))
}

func TestBuildSeriesSharesOneSnapshot(t *testing.T) {
	m := newTestMaterializer()
	draft := groceriesDraft(time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC))
	draft.UserID = "user-1"

	plan, err := m.BuildSeries(context.Background(), draft, models.FrequencyAnnually)
	require.NoError(t, err)

	require.NotNil(t, plan.Rule)
	require.NotEmpty(t, plan.Rule.ID)
	require.Equal(t, 1, plan.Rule.Interval)
	require.Equal(t, models.UnitYear, plan.Rule.Unit)
	require.Len(t, plan.Occurrences, 11)

	seen := make(map[string]bool)
	for _, occ := range plan.Occurrences {
		require.Equal(t, plan.Snapshot.ID, occ.FxSnapshotID)
		require.Equal(t, plan.Rule.ID, *occ.ScheduleRuleID)
		require.False(t, seen[occ.ID], "occurrence ids must be unique")
		seen[occ.ID] = true
	}
}

func TestBuildSeriesRekeysLineItemsPerOccurrence(t *testing.T) {
	m := newTestMaterializer()
	draft := groceriesDraft(time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC))
	draft.UserID = "user-1"
	draft.LineItems = []LineItemDraft{
		{Label: "base plan", AmountCents: 800, Position: 0},
		{Label: "tax", AmountCents: 200, Position: 1},
	}

	plan, err := m.BuildSeries(context.Background(), draft, models.FrequencyAnnually)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, occ := range plan.Occurrences {
		require.Len(t, occ.LineItems, 2)
		for _, li := range occ.LineItems {
			require.Equal(t, occ.ID, li.TransactionID, "line items belong to their own occurrence")
			require.False(t, seen[li.ID], "line item ids must be unique across the series")
			seen[li.ID] = true
		}
	}
}

func TestBuildSeriesAdHocHasNoRule(t *testing.T) {
	m := newTestMaterializer()
	draft := groceriesDraft(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	draft.UserID = "user-1"

	plan, err := m.BuildSeries(context.Background(), draft, "")
	require.NoError(t, err)
	require.Nil(t, plan.Rule)
	require.Len(t, plan.Occurrences, 1)
	require.False(t, plan.Occurrences[0].IsScheduled)
}

func TestBuildSeriesValidatesDraft(t *testing.T) {
	m := newTestMaterializer()
	ctx := context.Background()

	_, err := m.BuildSeries(ctx, nil, "")
	require.True(t, apperrors.IsValidation(err))

	draft := groceriesDraft(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	draft.UserID = "user-1"
	draft.Type = "transfer"
	_, err = m.BuildSeries(ctx, draft, "")
	require.True(t, apperrors.IsValidation(err))

	draft = groceriesDraft(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	draft.UserID = "user-1"
	draft.LineItems = []LineItemDraft{{Label: "", AmountCents: 100}}
	_, err = m.BuildSeries(ctx, draft, "")
	require.True(t, apperrors.IsValidation(err))
}
