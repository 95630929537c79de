// File: internal/usecase/analytics_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

const maxAnalyticsBatch = 100

var _ AnalyticsUseCase = (*analyticsUC)(nil)

// AnalyticsUseCase ingests client events. Ingest is fire-and-forget for
// the client: invalid entries in a batch are dropped, not rejected.
type AnalyticsUseCase interface {
	Ingest(ctx context.Context, userID *string, events []*model.AnalyticsEvent) (accepted int, err error)
}

type analyticsUC struct {
	events repository.AnalyticsEventRepository
}

func NewAnalyticsUseCase(events repository.AnalyticsEventRepository) *analyticsUC {
	return &analyticsUC{events: events}
}

func (u *analyticsUC) Ingest(ctx context.Context, userID *string, events []*model.AnalyticsEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	if len(events) > maxAnalyticsBatch {
		return 0, domain.ErrInvalidArgument
	}

	now := time.Now().UTC()
	valid := make([]*model.AnalyticsEvent, 0, len(events))
	for _, e := range events {
		if e == nil || e.Name == "" {
			continue
		}
		e.ID = uuid.NewString()
		e.UserID = userID
		if e.TS.IsZero() {
			e.TS = now
		}
		valid = append(valid, e)
	}
	if len(valid) == 0 {
		return 0, nil
	}
	return u.events.InsertBatch(ctx, nil, valid)
}
