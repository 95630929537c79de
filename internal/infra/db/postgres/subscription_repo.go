package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, status, plan_code, source, started_at, expires_at, grace_until, auto_renew, last_transaction_id, created_at, updated_at`

// Save upserts on user_id: one entitlement row per user, extended in place.
func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (id, user_id, status, plan_code, source, started_at, expires_at, grace_until, auto_renew, last_transaction_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (user_id) DO UPDATE SET
  status              = EXCLUDED.status,
  plan_code           = EXCLUDED.plan_code,
  source              = EXCLUDED.source,
  started_at          = EXCLUDED.started_at,
  expires_at          = EXCLUDED.expires_at,
  grace_until         = EXCLUDED.grace_until,
  auto_renew          = EXCLUDED.auto_renew,
  last_transaction_id = EXCLUDED.last_transaction_id,
  updated_at          = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		sub.ID, sub.UserID, sub.Status, sub.PlanCode, sub.Source, sub.StartedAt, sub.ExpiresAt, sub.GraceUntil, sub.AutoRenew, sub.LastTransactionID, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var s model.Subscription
	err = row.Scan(&s.ID, &s.UserID, &s.Status, &s.PlanCode, &s.Source, &s.StartedAt, &s.ExpiresAt, &s.GraceUntil, &s.AutoRenew, &s.LastTransactionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &s, nil
}

// MarkExpiredPastGrace is the grace sweep's write: stored status catches up
// with the computed one once the grace window has lapsed.
func (r *subscriptionRepo) MarkExpiredPastGrace(ctx context.Context, tx repository.Tx, before time.Time) (int, error) {
	const q = `
UPDATE subscriptions
   SET status = 'expired', updated_at = NOW()
 WHERE status <> 'expired'
   AND grace_until IS NOT NULL
   AND grace_until < $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, before)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	const q = `SELECT status, COUNT(1) FROM subscriptions GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	out := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[model.SubscriptionStatus(status)] = n
	}
	return out, nil
}
