package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

var _ repository.AIPlanRepository = (*aiPlanRepo)(nil)

type aiPlanRepo struct {
	pool *pgxpool.Pool
}

func NewAIPlanRepo(pool *pgxpool.Pool) *aiPlanRepo {
	return &aiPlanRepo{pool: pool}
}

func (r *aiPlanRepo) SaveRequest(ctx context.Context, tx repository.Tx, req *model.AIPlanRequest) error {
	const q = `
INSERT INTO ai_plan_requests (id, user_id, type, goal, level, days_count, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		req.ID, req.UserID, req.Type, req.Goal, req.Level, req.DaysCount, req.Status, req.CreatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *aiPlanRepo) SavePlan(ctx context.Context, tx repository.Tx, plan *model.AIPlan) error {
	daysJSON, err := json.Marshal(plan.Days)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO ai_plans (id, user_id, request_id, goal, level, days, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err = execSQL(ctx, r.pool, tx, q,
		plan.ID, plan.UserID, plan.RequestID, plan.Goal, plan.Level, daysJSON, plan.CreatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *aiPlanRepo) FindLatestPlan(ctx context.Context, tx repository.Tx, userID string) (*model.AIPlan, error) {
	const q = `
SELECT id, user_id, request_id, goal, level, days, created_at
  FROM ai_plans
 WHERE user_id = $1
 ORDER BY created_at DESC
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var plan model.AIPlan
	var daysJSON []byte
	err = row.Scan(&plan.ID, &plan.UserID, &plan.RequestID, &plan.Goal, &plan.Level, &daysJSON, &plan.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(daysJSON) > 0 {
		if err := json.Unmarshal(daysJSON, &plan.Days); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return &plan, nil
}
