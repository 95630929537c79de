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

var _ repository.SubscriptionTransactionRepository = (*transactionRepo)(nil)

// transactionRepo persists the append-only transaction log. Store and
// promo details go into JSONB blobs since their shape varies by source.
type transactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

func (r *transactionRepo) Insert(ctx context.Context, tx repository.Tx, t *model.SubscriptionTransaction) error {
	storeJSON, err := json.Marshal(t.Store)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	var promoJSON []byte
	if t.Promo != nil {
		promoJSON, err = json.Marshal(t.Promo)
		if err != nil {
			return domain.ErrInvalidArgument
		}
	}

	const q = `
INSERT INTO subscription_transactions (id, user_id, source, plan_code, amount, currency, store, promo, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err = execSQL(ctx, r.pool, tx, q,
		t.ID, t.UserID, t.Source, t.PlanCode, t.Amount, t.Currency, storeJSON, promoJSON, t.CreatedAt,
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

func (r *transactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionTransaction, error) {
	const q = `
SELECT id, user_id, source, plan_code, amount, currency, store, promo, created_at
  FROM subscription_transactions
 WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	var t model.SubscriptionTransaction
	var storeJSON, promoJSON []byte
	err = row.Scan(&t.ID, &t.UserID, &t.Source, &t.PlanCode, &t.Amount, &t.Currency, &storeJSON, &promoJSON, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(storeJSON) > 0 {
		if err := json.Unmarshal(storeJSON, &t.Store); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	if len(promoJSON) > 0 {
		t.Promo = &model.PromoInfo{}
		if err := json.Unmarshal(promoJSON, t.Promo); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return &t, nil
}

func (r *transactionRepo) UpdateStore(ctx context.Context, tx repository.Tx, id string, store model.StoreInfo) error {
	storeJSON, err := json.Marshal(store)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `UPDATE subscription_transactions SET store = $2 WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, storeJSON)
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

func (r *transactionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM subscription_transactions WHERE id = $1;`
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
