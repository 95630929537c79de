package repository

import (
	"context"

	"prime-fitness-backend/internal/domain/model"
)

// SubscriptionPlanRepository is the read-mostly plan catalog.
type SubscriptionPlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.SubscriptionPlan) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.SubscriptionPlan, error)
	// FindActiveByCode returns the plan only when its status is active.
	FindActiveByCode(ctx context.Context, tx Tx, code string) (*model.SubscriptionPlan, error)
	List(ctx context.Context, tx Tx, status model.PlanStatus, offset, limit int) ([]*model.SubscriptionPlan, int, error)
}
