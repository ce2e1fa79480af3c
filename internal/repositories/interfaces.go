package repositories

import (
	"context"
	"time"

	"github.com/jadewell/loon/internal/models"
)

// TransactionRepository defines the interface for transaction data operations.
// Every method that writes more than one row does so atomically: a series, a
// scoped update, or a scoped delete is fully visible or fully absent.
type TransactionRepository interface {
	// CreateSeries persists a schedule rule, its shared fx snapshot, and
	// every occurrence (plus line items) in one database transaction.
	// For an ad hoc creation rule may be nil and txs holds a single record.
	CreateSeries(ctx context.Context, rule *models.ScheduleRule, snapshot *models.FxSnapshot, txs []*models.Transaction) error
	GetByID(ctx context.Context, userID, id string) (*models.Transaction, error)
	ListByRule(ctx context.Context, userID, ruleID string) ([]*models.Transaction, error)
	ListByRuleFrom(ctx context.Context, userID, ruleID string, cutoff time.Time) ([]*models.Transaction, error)
	UpdateBatch(ctx context.Context, txs []*models.Transaction) error
	DeleteBatch(ctx context.Context, userID string, ids []string) ([]string, error)
	GetLineItems(ctx context.Context, transactionID string) ([]*models.LineItem, error)
}

// FxSnapshotRepository defines the interface for snapshot resolution.
// Snapshots are immutable and are inserted only as part of an atomic series
// write, so the repository exposes no standalone create or update.
type FxSnapshotRepository interface {
	GetByID(ctx context.Context, id string) (*models.FxSnapshot, error)
}

// ScheduleRuleRepository defines the interface for schedule rule reads and
// the out-of-band orphan sweep.
type ScheduleRuleRepository interface {
	GetByID(ctx context.Context, userID, id string) (*models.ScheduleRule, error)
	// DeleteOrphaned removes rules no transaction references anymore.
	// Maintenance-path only; the live delete path never calls it.
	DeleteOrphaned(ctx context.Context) (int, error)
}
