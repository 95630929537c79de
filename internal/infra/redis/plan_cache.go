package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
	"prime-fitness-backend/internal/infra/metrics"
)

var _ repository.SubscriptionPlanRepository = (*CachedPlanRepo)(nil)

// CachedPlanRepo is a read-through cache over the plan repository. Plans
// change rarely and are read on every purchase verification, so per-code
// lookups are cached; writes invalidate.
type CachedPlanRepo struct {
	inner  repository.SubscriptionPlanRepository
	client RedisClient
	ttl    time.Duration
}

func NewCachedPlanRepo(inner repository.SubscriptionPlanRepository, client RedisClient, ttl time.Duration) *CachedPlanRepo {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedPlanRepo{inner: inner, client: client, ttl: ttl}
}

func planKey(code string) string { return "plan:code:" + code }

func (r *CachedPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.SubscriptionPlan) error {
	if err := r.inner.Save(ctx, tx, plan); err != nil {
		return err
	}
	_ = r.client.Del(ctx, planKey(plan.Code))
	return nil
}

func (r *CachedPlanRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.SubscriptionPlan, error) {
	// Transactional reads bypass the cache; they need current rows.
	if tx != nil {
		return r.inner.FindByCode(ctx, tx, code)
	}

	if data, err := r.client.Get(ctx, planKey(code)); err == nil {
		var p model.SubscriptionPlan
		if err := json.Unmarshal([]byte(data), &p); err == nil {
			metrics.IncCacheRequest("plan", "hit")
			return &p, nil
		}
	}
	metrics.IncCacheRequest("plan", "miss")

	p, err := r.inner.FindByCode(ctx, nil, code)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(p); err == nil {
		_ = r.client.Set(ctx, planKey(code), data, r.ttl)
	}
	return p, nil
}

func (r *CachedPlanRepo) FindActiveByCode(ctx context.Context, tx repository.Tx, code string) (*model.SubscriptionPlan, error) {
	p, err := r.FindByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PlanStatusActive {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *CachedPlanRepo) List(ctx context.Context, tx repository.Tx, status model.PlanStatus, offset, limit int) ([]*model.SubscriptionPlan, int, error) {
	return r.inner.List(ctx, tx, status, offset, limit)
}

// Invalidate drops a cached plan; used by admin tooling after bulk edits.
func (r *CachedPlanRepo) Invalidate(ctx context.Context, code string) error {
	err := r.client.Del(ctx, planKey(code))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
