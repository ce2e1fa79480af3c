package models

import (
	"time"

	apperrors "github.com/jadewell/loon/internal/errors"
)

// Transaction types.
const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

// Transaction represents a single financial occurrence, either entered
// directly by the user or materialized from a schedule rule.
type Transaction struct {
	ID     string `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID string `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`

	Type        string     `json:"type" gorm:"column:type;type:varchar(20);not null;index"`
	Date        time.Time  `json:"date" gorm:"column:date;not null;index"`
	ScheduledOn *time.Time `json:"scheduled_on" gorm:"column:scheduled_on"`

	// Descriptive fields
	Merchant    *string `json:"merchant" gorm:"column:merchant;type:varchar(255)"`
	Place       *string `json:"place" gorm:"column:place;type:varchar(255)"`
	City        *string `json:"city" gorm:"column:city;type:varchar(255)"`
	Category    *string `json:"category" gorm:"column:category;type:varchar(255);index"`
	Subcategory *string `json:"subcategory" gorm:"column:subcategory;type:varchar(255)"`
	Details     *string `json:"details" gorm:"column:details;type:text"`

	// Money fields. Amounts are integer cents. The four derived amounts are
	// always the product of (original currency, original amount, snapshot)
	// under the converter; they are never edited independently.
	OriginalCurrency    Currency `json:"original_currency" gorm:"column:original_currency;type:varchar(3);not null"`
	OriginalAmountCents int64    `json:"original_amount_cents" gorm:"column:original_amount_cents;not null"`
	AmountCadCents      int64    `json:"amount_cad_cents" gorm:"column:amount_cad_cents;not null"`
	AmountUsdCents      int64    `json:"amount_usd_cents" gorm:"column:amount_usd_cents;not null"`
	AmountCnyCents      int64    `json:"amount_cny_cents" gorm:"column:amount_cny_cents;not null"`
	AmountBaseCadCents  int64    `json:"amount_base_cad_cents" gorm:"column:amount_base_cad_cents;not null"`

	// Schedule identity
	IsScheduled    bool    `json:"is_scheduled" gorm:"column:is_scheduled;not null;default:false"`
	ScheduleRuleID *string `json:"schedule_rule_id" gorm:"column:schedule_rule_id;type:varchar(255);index"`

	FxSnapshotID string `json:"fx_snapshot_id" gorm:"column:fx_snapshot_id;type:varchar(255);not null;index"`

	// Loaded separately by the repository; not a gorm association so batch
	// writes stay explicit.
	LineItems []*LineItem `json:"line_items,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// LineItem is a structured sub-item of a transaction.
type LineItem struct {
	ID            string    `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	TransactionID string    `json:"transaction_id" gorm:"column:transaction_id;type:varchar(255);not null;index"`
	Label         string    `json:"label" gorm:"column:label;type:varchar(255);not null"`
	AmountCents   int64     `json:"amount_cents" gorm:"column:amount_cents;not null"`
	Position      int       `json:"position" gorm:"column:position;not null;default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the LineItem model
func (LineItem) TableName() string {
	return "line_items"
}

// Validate validates the transaction data
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return &apperrors.ErrValidation{Field: "user_id", Message: "is required"}
	}
	if t.Type != TypeExpense && t.Type != TypeIncome {
		return &apperrors.ErrValidation{Field: "type", Message: "must be 'expense' or 'income'"}
	}
	if t.Date.IsZero() {
		return &apperrors.ErrValidation{Field: "date", Message: "is required"}
	}
	if !t.OriginalCurrency.Supported() {
		return &apperrors.ErrValidation{Field: "original_currency", Message: "must be one of CAD, USD, CNY"}
	}
	if t.OriginalAmountCents < 0 {
		return &apperrors.ErrValidation{Field: "original_amount_cents", Message: "must be non-negative"}
	}
	if t.FxSnapshotID == "" {
		return &apperrors.ErrValidation{Field: "fx_snapshot_id", Message: "is required"}
	}
	// The scheduled flag and the rule link travel together.
	if t.IsScheduled && (t.ScheduleRuleID == nil || *t.ScheduleRuleID == "") {
		return &apperrors.ErrValidation{Field: "schedule_rule_id", Message: "is required when is_scheduled is true"}
	}
	if !t.IsScheduled && t.ScheduleRuleID != nil {
		return &apperrors.ErrValidation{Field: "schedule_rule_id", Message: "must be null when is_scheduled is false"}
	}
	return nil
}

// ApplyConversion stamps the derived amounts and the snapshot reference from
// a conversion result. Derived amounts are never set any other way.
func (t *Transaction) ApplyConversion(c *Conversion) {
	t.AmountCadCents = c.AmountCadCents
	t.AmountUsdCents = c.AmountUsdCents
	t.AmountCnyCents = c.AmountCnyCents
	t.AmountBaseCadCents = c.AmountBaseCadCents
	t.FxSnapshotID = c.Snapshot.ID
}

// Conversion is the result of converting one source amount through one
// snapshot into every supported currency.
type Conversion struct {
	AmountCadCents     int64       `json:"amount_cad_cents"`
	AmountUsdCents     int64       `json:"amount_usd_cents"`
	AmountCnyCents     int64       `json:"amount_cny_cents"`
	AmountBaseCadCents int64       `json:"amount_base_cad_cents"`
	Snapshot           *FxSnapshot `json:"snapshot"`
}
