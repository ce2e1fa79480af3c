package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jadewell/loon/internal/db"
	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
)

type transactionRepository struct {
	db *db.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(database *db.DB) TransactionRepository {
	return &transactionRepository{db: database}
}

func (r *transactionRepository) CreateSeries(ctx context.Context, rule *models.ScheduleRule, snapshot *models.FxSnapshot, txs []*models.Transaction) error {
	if len(txs) == 0 {
		return fmt.Errorf("empty series")
	}
	if snapshot == nil {
		return fmt.Errorf("series requires an fx snapshot")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Snapshot rows may be shared with an earlier series when the caller
		// resolved an existing one; only insert fresh ids.
		var count int64
		if err := tx.Model(&models.FxSnapshot{}).Where("id = ?", snapshot.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check snapshot: %w", err)
		}
		if count == 0 {
			if err := tx.Create(snapshot).Error; err != nil {
				return fmt.Errorf("failed to create snapshot: %w", err)
			}
		}

		if rule != nil {
			if err := tx.Create(rule).Error; err != nil {
				return fmt.Errorf("failed to create schedule rule: %w", err)
			}
		}

		for _, t := range txs {
			if t == nil {
				return fmt.Errorf("nil transaction in series")
			}
			if err := tx.Create(t).Error; err != nil {
				return fmt.Errorf("failed to create transaction: %w", err)
			}
			for _, li := range t.LineItems {
				if err := tx.Create(li).Error; err != nil {
					return fmt.Errorf("failed to create line item: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create series: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if id == "" {
		return nil, &apperrors.ErrNotFound{Resource: "transaction", ID: id}
	}

	var t models.Transaction
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.ErrNotFound{Resource: "transaction", ID: id}
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

func (r *transactionRepository) ListByRule(ctx context.Context, userID, ruleID string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND schedule_rule_id = ?", userID, ruleID).
		Order("date ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by rule: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) ListByRuleFrom(ctx context.Context, userID, ruleID string, cutoff time.Time) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND schedule_rule_id = ? AND date >= ?", userID, ruleID, cutoff).
		Order("date ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions from cutoff: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) UpdateBatch(ctx context.Context, txs []*models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, t := range txs {
			t.UpdatedAt = now
			res := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
				"type":                  t.Type,
				"date":                  t.Date,
				"scheduled_on":          t.ScheduledOn,
				"merchant":              t.Merchant,
				"place":                 t.Place,
				"city":                  t.City,
				"category":              t.Category,
				"subcategory":           t.Subcategory,
				"details":               t.Details,
				"original_currency":     t.OriginalCurrency,
				"original_amount_cents": t.OriginalAmountCents,
				"amount_cad_cents":      t.AmountCadCents,
				"amount_usd_cents":      t.AmountUsdCents,
				"amount_cny_cents":      t.AmountCnyCents,
				"amount_base_cad_cents": t.AmountBaseCadCents,
				"fx_snapshot_id":        t.FxSnapshotID,
				"updated_at":            t.UpdatedAt,
			})
			if res.Error != nil {
				return fmt.Errorf("failed to update transaction: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return &apperrors.ErrNotFound{Resource: "transaction", ID: t.ID}
			}
		}
		return nil
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to update batch: %w", err)
	}
	return nil
}

func (r *transactionRepository) DeleteBatch(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	deleted := make([]string, 0, len(ids))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Ownership is resolved first; the cascade must never reach rows
		// of a transaction the caller does not own.
		var owned []string
		if err := tx.Model(&models.Transaction{}).
			Where("id IN ? AND user_id = ?", ids, userID).
			Pluck("id", &owned).Error; err != nil {
			return fmt.Errorf("failed to resolve owned transactions: %w", err)
		}
		if len(owned) == 0 {
			return &apperrors.ErrNotFound{Resource: "transaction", ID: ids[0]}
		}

		// Line items cascade with their transaction.
		if err := tx.Where("transaction_id IN ?", owned).Delete(&models.LineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete line items: %w", err)
		}
		if err := tx.Where("id IN ?", owned).Delete(&models.Transaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete transactions: %w", err)
		}
		deleted = owned
		return nil
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete batch: %w", err)
	}
	return deleted, nil
}

func (r *transactionRepository) GetLineItems(ctx context.Context, transactionID string) ([]*models.LineItem, error) {
	var items []*models.LineItem
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	return items, nil
}

// NewID returns a fresh opaque identifier for any persisted record.
func NewID() string {
	return uuid.NewString()
}
