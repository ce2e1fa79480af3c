package models

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/jadewell/loon/internal/errors"
)

func validTransaction() *Transaction {
	return &Transaction{
		ID:                  "tx-1",
		UserID:              "user-1",
		Type:                TypeExpense,
		Date:                time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		OriginalCurrency:    CurrencyUSD,
		OriginalAmountCents: 1000,
		FxSnapshotID:        "snap-1",
	}
}

func TestTransactionValidate(t *testing.T) {
	ruleID := "rule-1"
	empty := ""

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		field   string
		wantErr bool
	}{
		{"valid ad hoc", func(tx *Transaction) {}, "", false},
		{"valid scheduled", func(tx *Transaction) {
			tx.IsScheduled = true
			tx.ScheduleRuleID = &ruleID
		}, "", false},
		{"missing user", func(tx *Transaction) { tx.UserID = "" }, "user_id", true},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, "type", true},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, "date", true},
		{"unsupported currency", func(tx *Transaction) { tx.OriginalCurrency = "EUR" }, "original_currency", true},
		{"negative amount", func(tx *Transaction) { tx.OriginalAmountCents = -1 }, "original_amount_cents", true},
		{"missing snapshot", func(tx *Transaction) { tx.FxSnapshotID = "" }, "fx_snapshot_id", true},
		{"scheduled without rule", func(tx *Transaction) { tx.IsScheduled = true }, "schedule_rule_id", true},
		{"scheduled with empty rule", func(tx *Transaction) {
			tx.IsScheduled = true
			tx.ScheduleRuleID = &empty
		}, "schedule_rule_id", true},
		{"rule without scheduled flag", func(tx *Transaction) { tx.ScheduleRuleID = &ruleID }, "schedule_rule_id", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(tx)
			err := tx.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *apperrors.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestApplyConversionStampsSnapshot(t *testing.T) {
	tx := validTransaction()
	tx.ApplyConversion(&Conversion{
		AmountCadCents:     1400,
		AmountUsdCents:     1000,
		AmountCnyCents:     7000,
		AmountBaseCadCents: 1400,
		Snapshot:           &FxSnapshot{ID: "snap-2"},
	})

	if tx.AmountCadCents != 1400 || tx.AmountUsdCents != 1000 || tx.AmountCnyCents != 7000 {
		t.Errorf("derived amounts not applied: %+v", tx)
	}
	if tx.AmountBaseCadCents != 1400 {
		t.Errorf("base amount not applied: %d", tx.AmountBaseCadCents)
	}
	if tx.FxSnapshotID != "snap-2" {
		t.Errorf("snapshot reference not applied: %s", tx.FxSnapshotID)
	}
}
