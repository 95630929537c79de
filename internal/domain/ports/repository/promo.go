package repository

import (
	"context"
	"time"

	"prime-fitness-backend/internal/domain/model"
)

// PromoCodeRepository owns all promo-code state. Claim and Rollback are the
// only operations allowed to touch used_count.
type PromoCodeRepository interface {
	Save(ctx context.Context, tx Tx, promo *model.PromoCode) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	List(ctx context.Context, tx Tx, status *model.PromoStatus, query string, offset, limit int) ([]*model.PromoCode, int, error)

	// Claim atomically checks eligibility (active, not expired at `now`,
	// used_count < max_uses) and increments used_count in a single
	// conditional update. It returns the post-increment snapshot, or
	// domain.ErrNotFound when no row matched — the caller must treat that
	// as "invalid or exhausted", not as a system error.
	Claim(ctx context.Context, tx Tx, code string, now time.Time) (*model.PromoCode, error)

	// Rollback undoes one claim, conditioned on used_count > 0.
	Rollback(ctx context.Context, tx Tx, code string) error

	CountByBatch(ctx context.Context, tx Tx, batchID string) (int, error)
	CountAll(ctx context.Context, tx Tx) (int, error)
}

// PromoBatchRepository stores generated-code batches.
type PromoBatchRepository interface {
	Save(ctx context.Context, tx Tx, batch *model.PromoBatch) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PromoBatch, error)
}

// PromoRedemptionRepository is the one-redemption-per-user-per-code ledger.
// Insert must fail with domain.ErrAlreadyExists on the (user, promo code)
// uniqueness constraint — deterministically, this is the sole safety net
// against the same user redeeming a code twice concurrently.
type PromoRedemptionRepository interface {
	Insert(ctx context.Context, tx Tx, r *model.PromoRedemption) error
	Delete(ctx context.Context, tx Tx, id string) error
	CountByPromoCode(ctx context.Context, tx Tx, promoCodeID string) (int, error)
	CountByPromoCodes(ctx context.Context, tx Tx, promoCodeIDs []string) (int, error)
	CountAll(ctx context.Context, tx Tx) (int, error)
	FindByUserAndPromo(ctx context.Context, tx Tx, userID, promoCodeID string) (*model.PromoRedemption, error)
}
