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

type fxSnapshotRepository struct {
	db *db.DB
}

// NewFxSnapshotRepository creates a new fx snapshot repository
func NewFxSnapshotRepository(database *db.DB) FxSnapshotRepository {
	return &fxSnapshotRepository{db: database}
}

func (r *fxSnapshotRepository) GetByID(ctx context.Context, id string) (*models.FxSnapshot, error) {
	if id == "" {
		return nil, &apperrors.ErrNotFound{Resource: "fx snapshot", ID: id}
	}

	var s models.FxSnapshot
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.ErrNotFound{Resource: "fx snapshot", ID: id}
		}
		return nil, fmt.Errorf("failed to get fx snapshot: %w", err)
	}
	return &s, nil
}
