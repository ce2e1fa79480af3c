package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jadewell/loon/internal/db"
	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
)

type scheduleRuleRepository struct {
	db *db.DB
}

// NewScheduleRuleRepository creates a new schedule rule repository
func NewScheduleRuleRepository(database *db.DB) ScheduleRuleRepository {
	return &scheduleRuleRepository{db: database}
}

func (r *scheduleRuleRepository) GetByID(ctx context.Context, userID, id string) (*models.ScheduleRule, error) {
	if id == "" {
		return nil, &apperrors.ErrNotFound{Resource: "schedule rule", ID: id}
	}

	var rule models.ScheduleRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.ErrNotFound{Resource: "schedule rule", ID: id}
		}
		return nil, fmt.Errorf("failed to get schedule rule: %w", err)
	}
	return &rule, nil
}

// DeleteOrphaned removes rules that no transaction references anymore.
// Deleting a series on the live path leaves its rule behind; this sweep is
// the out-of-band cleanup for those.
func (r *scheduleRuleRepository) DeleteOrphaned(ctx context.Context) (int, error) {
	res := r.db.WithContext(ctx).
		Where("id NOT IN (?)", r.db.Model(&models.Transaction{}).
			Select("schedule_rule_id").Where("schedule_rule_id IS NOT NULL")).
		Delete(&models.ScheduleRule{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete orphaned rules: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}
