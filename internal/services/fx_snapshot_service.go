package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jadewell/loon/internal/models"
	"github.com/jadewell/loon/internal/repositories"
)

// Fallback rates used when the rate source is unavailable. Snapshots priced
// from these carry degraded=true so audits can tell them apart from
// market-priced ones.
var (
	fallbackCadPerUsd = decimal.NewFromFloat(1.35)
	fallbackCadPerCny = decimal.NewFromFloat(0.19)
)

const rateFetchTimeout = 10 * time.Second

type fxSnapshotService struct {
	source RateSource
	repo   repositories.FxSnapshotRepository
	logger *zap.Logger
}

// NewFxSnapshotService creates a new fx snapshot service
func NewFxSnapshotService(source RateSource, repo repositories.FxSnapshotRepository, logger *zap.Logger) FxSnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fxSnapshotService{source: source, repo: repo, logger: logger}
}

// Capture prices CAD against USD and CNY at the current market. A rate
// source failure does not fail the operation: the fallback rate set is
// substituted and the snapshot is flagged degraded.
func (s *fxSnapshotService) Capture(ctx context.Context) (*models.FxSnapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, rateFetchTimeout)
	defer cancel()

	snapshot := &models.FxSnapshot{
		ID:     repositories.NewID(),
		Source: models.FxSourceLive,
	}

	cadPerUsd, asOf, err := s.source.GetRate(fetchCtx, models.CurrencyUSD, models.CurrencyCAD)
	if err == nil {
		var cadPerCny decimal.Decimal
		cadPerCny, _, err = s.source.GetRate(fetchCtx, models.CurrencyCNY, models.CurrencyCAD)
		if err == nil {
			snapshot.CadPerUsd = cadPerUsd
			snapshot.CadPerCny = cadPerCny
			snapshot.CapturedAt = asOf.UTC()
		}
	}

	if err != nil {
		s.logger.Warn("rate source unavailable, using fallback rates",
			zap.Error(err))
		snapshot.CadPerUsd = fallbackCadPerUsd
		snapshot.CadPerCny = fallbackCadPerCny
		snapshot.CapturedAt = time.Now().UTC()
		snapshot.Source = models.FxSourceFallback
		snapshot.Degraded = true
	}

	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("captured snapshot invalid: %w", err)
	}
	return snapshot, nil
}

func (s *fxSnapshotService) Resolve(ctx context.Context, id string) (*models.FxSnapshot, error) {
	return s.repo.GetByID(ctx, id)
}
