// File: internal/usecase/plan_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	Create(ctx context.Context, code string, durationDays int, prices map[string]model.PlanPrice) (*model.SubscriptionPlan, error)
	List(ctx context.Context, status model.PlanStatus, offset, limit int) ([]*model.SubscriptionPlan, int, error)
}

type planUC struct {
	plans repository.SubscriptionPlanRepository
}

func NewPlanUseCase(plans repository.SubscriptionPlanRepository) *planUC {
	return &planUC{plans: plans}
}

func (u *planUC) Create(ctx context.Context, code string, durationDays int, prices map[string]model.PlanPrice) (*model.SubscriptionPlan, error) {
	code = strings.TrimSpace(code)
	if existing, err := u.plans.FindByCode(ctx, nil, code); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	plan, err := model.NewSubscriptionPlan(uuid.NewString(), code, durationDays, prices)
	if err != nil {
		return nil, err
	}
	if err := u.plans.Save(ctx, nil, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (u *planUC) List(ctx context.Context, status model.PlanStatus, offset, limit int) ([]*model.SubscriptionPlan, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return u.plans.List(ctx, nil, status, offset, limit)
}
