package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.SubscriptionPlanRepository = (*planRepo)(nil)

type planRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, plan *model.SubscriptionPlan) error {
	const q = `
INSERT INTO subscription_plans (id, code, duration_days, prices, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  code          = EXCLUDED.code,
  duration_days = EXCLUDED.duration_days,
  prices        = EXCLUDED.prices,
  status        = EXCLUDED.status;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		plan.ID, plan.Code, plan.DurationDays, plan.Prices, plan.Status, plan.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *planRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.SubscriptionPlan, error) {
	const q = `
SELECT id, code, duration_days, prices, status, created_at
  FROM subscription_plans
 WHERE code = $1;
`
	return r.scanOne(ctx, tx, q, code)
}

func (r *planRepo) FindActiveByCode(ctx context.Context, tx repository.Tx, code string) (*model.SubscriptionPlan, error) {
	const q = `
SELECT id, code, duration_days, prices, status, created_at
  FROM subscription_plans
 WHERE code = $1 AND status = 'active';
`
	return r.scanOne(ctx, tx, q, code)
}

func (r *planRepo) scanOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.SubscriptionPlan, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var p model.SubscriptionPlan
	if err := row.Scan(&p.ID, &p.Code, &p.DurationDays, &p.Prices, &p.Status, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

func (r *planRepo) List(ctx context.Context, tx repository.Tx, status model.PlanStatus, offset, limit int) ([]*model.SubscriptionPlan, int, error) {
	const countQ = `SELECT COUNT(1) FROM subscription_plans WHERE ($1 = '' OR status = $1);`
	row, err := pickRow(ctx, r.pool, tx, countQ, string(status))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	const q = `
SELECT id, code, duration_days, prices, status, created_at
  FROM subscription_plans
 WHERE ($1 = '' OR status = $1)
 ORDER BY created_at ASC
 OFFSET $2 LIMIT $3;
`
	rows, err := queryRows(ctx, r.pool, tx, q, string(status), offset, limit)
	if err != nil {
		return nil, 0, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.SubscriptionPlan
	for rows.Next() {
		var p model.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Code, &p.DurationDays, &p.Prices, &p.Status, &p.CreatedAt); err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	return out, total, nil
}
