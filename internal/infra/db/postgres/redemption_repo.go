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

var _ repository.PromoRedemptionRepository = (*redemptionRepo)(nil)

type redemptionRepo struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepo(pool *pgxpool.Pool) *redemptionRepo {
	return &redemptionRepo{pool: pool}
}

// Insert relies on the (user_id, promo_code_id) uniqueness constraint to
// reject a second redemption of the same code by the same user, including
// two racing first redemptions.
func (r *redemptionRepo) Insert(ctx context.Context, tx repository.Tx, red *model.PromoRedemption) error {
	const q = `
INSERT INTO promo_redemptions (id, code, promo_code_id, user_id, transaction_id, redeemed_at)
VALUES ($1, $2, $3, $4, $5, $6);`
	_, err := execSQL(ctx, r.pool, tx, q,
		red.ID, red.Code, red.PromoCodeID, red.UserID, red.TransactionID, red.RedeemedAt,
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

func (r *redemptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM promo_redemptions WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
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

func (r *redemptionRepo) CountByPromoCode(ctx context.Context, tx repository.Tx, promoCodeID string) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(1) FROM promo_redemptions WHERE promo_code_id = $1;`, promoCodeID)
}

func (r *redemptionRepo) CountByPromoCodes(ctx context.Context, tx repository.Tx, promoCodeIDs []string) (int, error) {
	if len(promoCodeIDs) == 0 {
		return 0, nil
	}
	return r.count(ctx, tx, `SELECT COUNT(1) FROM promo_redemptions WHERE promo_code_id = ANY($1);`, promoCodeIDs)
}

func (r *redemptionRepo) CountAll(ctx context.Context, tx repository.Tx) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(1) FROM promo_redemptions;`)
}

func (r *redemptionRepo) count(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
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

func (r *redemptionRepo) FindByUserAndPromo(ctx context.Context, tx repository.Tx, userID, promoCodeID string) (*model.PromoRedemption, error) {
	const q = `
SELECT id, code, promo_code_id, user_id, transaction_id, redeemed_at
  FROM promo_redemptions
 WHERE user_id = $1 AND promo_code_id = $2;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, promoCodeID)
	if err != nil {
		return nil, err
	}
	var red model.PromoRedemption
	if err := row.Scan(&red.ID, &red.Code, &red.PromoCodeID, &red.UserID, &red.TransactionID, &red.RedeemedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &red, nil
}
