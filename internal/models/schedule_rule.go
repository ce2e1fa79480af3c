package models

import (
	"time"

	apperrors "github.com/jadewell/loon/internal/errors"
)

// ScheduleRule is the shared identity linking every occurrence of one
// recurring series. The interval/unit pair and the anchor date are fixed
// for the life of the rule; edits change the transactions, not the rule.
type ScheduleRule struct {
	ID         string       `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID     string       `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Label      string       `json:"label" gorm:"column:label;type:varchar(255);not null"`
	IsActive   bool         `json:"is_active" gorm:"column:is_active;not null;default:true"`
	Interval   int          `json:"interval" gorm:"column:interval;not null"`
	Unit       ScheduleUnit `json:"unit" gorm:"column:unit;type:varchar(10);not null"`
	AnchorDate time.Time    `json:"anchor_date" gorm:"column:anchor_date;not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the ScheduleRule model
func (ScheduleRule) TableName() string {
	return "schedule_rules"
}

// Validate validates the schedule rule data
func (r *ScheduleRule) Validate() error {
	if r.UserID == "" {
		return &apperrors.ErrValidation{Field: "user_id", Message: "is required"}
	}
	if r.Interval <= 0 {
		return &apperrors.ErrValidation{Field: "interval", Message: "must be positive"}
	}
	switch r.Unit {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
	default:
		return &apperrors.ErrValidation{Field: "unit", Message: "must be one of day, week, month, year"}
	}
	if r.AnchorDate.IsZero() {
		return &apperrors.ErrValidation{Field: "anchor_date", Message: "is required"}
	}
	return nil
}

// NewScheduleRule builds a rule for a frequency anchored at the seed date.
func NewScheduleRule(userID, label string, frequency Frequency, anchor time.Time) (*ScheduleRule, error) {
	rec, err := frequency.Recurrence()
	if err != nil {
		return nil, err
	}
	return &ScheduleRule{
		UserID:     userID,
		Label:      label,
		IsActive:   true,
		Interval:   rec.Interval,
		Unit:       rec.Unit,
		AnchorDate: anchor.UTC(),
	}, nil
}
