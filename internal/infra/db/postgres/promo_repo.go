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

var _ repository.PromoCodeRepository = (*promoRepo)(nil)

type promoRepo struct {
	pool *pgxpool.Pool
}

func NewPromoRepo(pool *pgxpool.Pool) *promoRepo {
	return &promoRepo{pool: pool}
}

const promoColumns = `id, batch_id, code, duration_days, max_uses, used_count, expires_at, status, created_at`

func (r *promoRepo) Save(ctx context.Context, tx repository.Tx, promo *model.PromoCode) error {
	const q = `
INSERT INTO promo_codes (id, batch_id, code, duration_days, max_uses, used_count, expires_at, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  duration_days = EXCLUDED.duration_days,
  max_uses      = EXCLUDED.max_uses,
  expires_at    = EXCLUDED.expires_at,
  status        = EXCLUDED.status;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		promo.ID, promo.BatchID, promo.Code, promo.DurationDays, promo.MaxUses, promo.UsedCount, promo.ExpiresAt, promo.Status, promo.CreatedAt,
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

func (r *promoRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	const q = `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanPromo(row)
}

// Claim is the single write that enforces the usage cap under concurrency:
// eligibility check and increment happen in one conditional UPDATE, so two
// racing claims of the last use can never both match.
func (r *promoRepo) Claim(ctx context.Context, tx repository.Tx, code string, now time.Time) (*model.PromoCode, error) {
	const q = `
UPDATE promo_codes
   SET used_count = used_count + 1
 WHERE code = $1
   AND status = 'active'
   AND (expires_at IS NULL OR expires_at > $2)
   AND used_count < max_uses
RETURNING ` + promoColumns + `;`
	row, err := pickRow(ctx, r.pool, tx, q, code, now)
	if err != nil {
		return nil, err
	}
	return scanPromo(row)
}

// Rollback undoes one claim. The used_count > 0 guard keeps a double
// compensation from driving the counter negative.
func (r *promoRepo) Rollback(ctx context.Context, tx repository.Tx, code string) error {
	const q = `
UPDATE promo_codes
   SET used_count = used_count - 1
 WHERE code = $1 AND used_count > 0;`
	cmd, err := execSQL(ctx, r.pool, tx, q, code)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *promoRepo) List(ctx context.Context, tx repository.Tx, status *model.PromoStatus, query string, offset, limit int) ([]*model.PromoCode, int, error) {
	st := ""
	if status != nil {
		st = string(*status)
	}
	const countQ = `
SELECT COUNT(1) FROM promo_codes
 WHERE ($1 = '' OR status = $1)
   AND ($2 = '' OR code LIKE '%' || $2 || '%');`
	row, err := pickRow(ctx, r.pool, tx, countQ, st, query)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	const q = `
SELECT ` + promoColumns + `
  FROM promo_codes
 WHERE ($1 = '' OR status = $1)
   AND ($2 = '' OR code LIKE '%' || $2 || '%')
 ORDER BY created_at DESC
 OFFSET $3 LIMIT $4;`
	rows, err := queryRows(ctx, r.pool, tx, q, st, query, offset, limit)
	if err != nil {
		return nil, 0, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.PromoCode
	for rows.Next() {
		p := new(model.PromoCode)
		if err := rows.Scan(&p.ID, &p.BatchID, &p.Code, &p.DurationDays, &p.MaxUses, &p.UsedCount, &p.ExpiresAt, &p.Status, &p.CreatedAt); err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, total, nil
}

func (r *promoRepo) CountByBatch(ctx context.Context, tx repository.Tx, batchID string) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(1) FROM promo_codes WHERE batch_id = $1;`, batchID)
}

func (r *promoRepo) CountAll(ctx context.Context, tx repository.Tx) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(1) FROM promo_codes;`)
}

func (r *promoRepo) countWhere(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func scanPromo(row pgx.Row) (*model.PromoCode, error) {
	var p model.PromoCode
	err := row.Scan(&p.ID, &p.BatchID, &p.Code, &p.DurationDays, &p.MaxUses, &p.UsedCount, &p.ExpiresAt, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

var _ repository.PromoBatchRepository = (*promoBatchRepo)(nil)

type promoBatchRepo struct {
	pool *pgxpool.Pool
}

func NewPromoBatchRepo(pool *pgxpool.Pool) *promoBatchRepo {
	return &promoBatchRepo{pool: pool}
}

func (r *promoBatchRepo) Save(ctx context.Context, tx repository.Tx, batch *model.PromoBatch) error {
	const q = `
INSERT INTO promo_batches (id, name, duration_days, max_uses_per_code, codes_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  name        = EXCLUDED.name,
  codes_count = EXCLUDED.codes_count;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		batch.ID, batch.Name, batch.DurationDays, batch.MaxUsesPerCode, batch.CodesCount, batch.CreatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *promoBatchRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PromoBatch, error) {
	const q = `SELECT id, name, duration_days, max_uses_per_code, codes_count, created_at FROM promo_batches WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var b model.PromoBatch
	if err := row.Scan(&b.ID, &b.Name, &b.DurationDays, &b.MaxUsesPerCode, &b.CodesCount, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &b, nil
}
