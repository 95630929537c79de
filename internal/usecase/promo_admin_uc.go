// File: internal/usecase/promo_admin_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

var _ PromoAdminUseCase = (*promoAdminUC)(nil)

// PromoAdminUseCase is the admin surface over promo codes: creation,
// batch generation, listing, and redemption stats.
type PromoAdminUseCase interface {
	Create(ctx context.Context, code string, durationDays, maxUses int, expiresAt *time.Time) (*model.PromoCode, error)
	CreateBatch(ctx context.Context, name string, durationDays, maxUsesPerCode, codesCount, codeLength int) (*model.PromoBatch, int, error)
	List(ctx context.Context, status *model.PromoStatus, query string, offset, limit int) ([]*model.PromoCode, int, error)
	Stats(ctx context.Context, promoCodeID string) (codesTotal, redemptionsTotal int, err error)
}

type promoAdminUC struct {
	promos      repository.PromoCodeRepository
	batches     repository.PromoBatchRepository
	redemptions repository.PromoRedemptionRepository
	txm         repository.TransactionManager
	log         *zerolog.Logger
}

func NewPromoAdminUseCase(
	promos repository.PromoCodeRepository,
	batches repository.PromoBatchRepository,
	redemptions repository.PromoRedemptionRepository,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *promoAdminUC {
	l := logger.With().Str("component", "PromoAdminUC").Logger()
	return &promoAdminUC{promos: promos, batches: batches, redemptions: redemptions, txm: txm, log: &l}
}

func (u *promoAdminUC) Create(ctx context.Context, code string, durationDays, maxUses int, expiresAt *time.Time) (*model.PromoCode, error) {
	code = model.NormalizeCode(code)
	if existing, err := u.promos.FindByCode(ctx, nil, code); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	promo, err := model.NewPromoCode(uuid.NewString(), code, durationDays, maxUses, expiresAt)
	if err != nil {
		return nil, err
	}
	if err := u.promos.Save(ctx, nil, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// CreateBatch generates codesCount random codes inside one transaction;
// a batch either lands complete or not at all. Collisions with existing
// codes are detected by lookup and retried; the attempt cap keeps a
// pathological alphabet exhaustion from looping forever.
func (u *promoAdminUC) CreateBatch(ctx context.Context, name string, durationDays, maxUsesPerCode, codesCount, codeLength int) (*model.PromoBatch, int, error) {
	if name == "" || codesCount < 1 || durationDays < 1 || maxUsesPerCode < 1 {
		return nil, 0, domain.ErrInvalidArgument
	}
	if codeLength < 4 || codeLength > 32 {
		codeLength = 8
	}

	batch := &model.PromoBatch{
		ID:             uuid.NewString(),
		Name:           name,
		DurationDays:   durationDays,
		MaxUsesPerCode: maxUsesPerCode,
		CodesCount:     codesCount,
		CreatedAt:      time.Now().UTC(),
	}

	created := 0
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.batches.Save(ctx, tx, batch); err != nil {
			return err
		}
		attempts := 0
		maxAttempts := codesCount * 30
		for created < codesCount && attempts < maxAttempts {
			attempts++
			code := model.RandomCode(codeLength)
			if _, err := u.promos.FindByCode(ctx, tx, code); err == nil {
				continue
			} else if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			promo, err := model.NewPromoCode(uuid.NewString(), code, durationDays, maxUsesPerCode, nil)
			if err != nil {
				return err
			}
			promo.BatchID = &batch.ID
			if err := u.promos.Save(ctx, tx, promo); err != nil {
				return err
			}
			created++
		}
		if created != codesCount {
			return domain.ErrOperationFailed
		}
		return nil
	})
	if err != nil {
		u.log.Error().Err(err).Str("batch", name).Int("created", created).Int("want", codesCount).Msg("batch generation failed")
		return nil, 0, err
	}
	return batch, created, nil
}

func (u *promoAdminUC) List(ctx context.Context, status *model.PromoStatus, query string, offset, limit int) ([]*model.PromoCode, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return u.promos.List(ctx, nil, status, model.NormalizeCode(query), offset, limit)
}

func (u *promoAdminUC) Stats(ctx context.Context, promoCodeID string) (int, int, error) {
	if promoCodeID != "" {
		redeemed, err := u.redemptions.CountByPromoCode(ctx, nil, promoCodeID)
		if err != nil {
			return 0, 0, err
		}
		return 1, redeemed, nil
	}
	codes, err := u.promos.CountAll(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	redeemed, err := u.redemptions.CountAll(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	return codes, redeemed, nil
}
