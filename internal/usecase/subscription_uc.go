// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
	"prime-fitness-backend/internal/infra/metrics"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase coordinates plans, promo codes, the redemption
// ledger, transactions, and the per-user subscription record.
type SubscriptionUseCase interface {
	// ActivatePromo runs the promo redemption flow as a compensating
	// sequence: transaction insert, ledger insert, atomic claim,
	// subscription extension. Failures unwind in reverse creation order.
	ActivatePromo(ctx context.Context, userID, code string) (*model.SubscriptionView, error)
	// GetSubscription never errors on absence; a nil record yields an
	// expired view.
	GetSubscription(ctx context.Context, userID string) (*model.SubscriptionView, error)
	// PurchaseInit records a pending transaction for a store/web purchase.
	PurchaseInit(ctx context.Context, userID, planCode string, source model.SubscriptionSource, amount *float64, currency *string, meta map[string]interface{}) (*model.SubscriptionTransaction, *model.SubscriptionView, error)
	// VerifyPurchase confirms a pending transaction against a submitted
	// receipt. Replays against an already-verified transaction return the
	// current subscription unchanged.
	VerifyPurchase(ctx context.Context, userID, transactionID, provider string, receipt map[string]interface{}, providerTxID string) (*model.SubscriptionView, error)
	// WebhookConfirm applies a payment-provider callback to a transaction.
	WebhookConfirm(ctx context.Context, transactionID, providerStatus string, payload map[string]interface{}) error
	// Cancel soft-cancels: auto_renew off, entitlement keeps running.
	Cancel(ctx context.Context, userID string) error
	// Entitlement answers the offline-download question.
	Entitlement(ctx context.Context, userID string) (model.Entitlement, error)
}

type subscriptionUC struct {
	plans       repository.SubscriptionPlanRepository
	promos      repository.PromoCodeRepository
	redemptions repository.PromoRedemptionRepository
	subs        repository.SubscriptionRepository
	txns        repository.SubscriptionTransactionRepository
	log         *zerolog.Logger
}

func NewSubscriptionUseCase(
	plans repository.SubscriptionPlanRepository,
	promos repository.PromoCodeRepository,
	redemptions repository.PromoRedemptionRepository,
	subs repository.SubscriptionRepository,
	txns repository.SubscriptionTransactionRepository,
	logger *zerolog.Logger,
) *subscriptionUC {
	l := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{
		plans:       plans,
		promos:      promos,
		redemptions: redemptions,
		subs:        subs,
		txns:        txns,
		log:         &l,
	}
}

// promoPlanCode tags promo-sourced transactions that have no real plan.
const promoPlanCode = "promo"

func (uc *subscriptionUC) ActivatePromo(ctx context.Context, userID, rawCode string) (*model.SubscriptionView, error) {
	now := time.Now().UTC()
	code := model.NormalizeCode(rawCode)
	if code == "" {
		metrics.IncPromoRedemption("invalid_code")
		return nil, domain.ErrPromoInvalidCode
	}

	// Step 1: pre-flight checks. These are advisory; the atomic claim in
	// step 4 re-checks everything under contention.
	promo, err := uc.promos.FindByCode(ctx, nil, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncPromoRedemption("invalid_code")
			return nil, domain.ErrPromoInvalidCode
		}
		return nil, err
	}
	if promo.Status != model.PromoStatusActive {
		metrics.IncPromoRedemption("disabled")
		return nil, domain.ErrPromoDisabled
	}
	if promo.ExpiresAt != nil && !now.Before(*promo.ExpiresAt) {
		metrics.IncPromoRedemption("expired")
		return nil, domain.ErrPromoExpired
	}
	if promo.DurationDays <= 0 {
		metrics.IncPromoRedemption("invalid_duration")
		return nil, domain.ErrPromoInvalidDuration
	}

	// Step 2: transaction record first. A crash after this point leaves an
	// orphan transaction with no observable effect.
	txn := &model.SubscriptionTransaction{
		ID:       ulid.Make().String(),
		UserID:   userID,
		Source:   model.SourcePromo,
		PlanCode: promoPlanCode,
		Store: model.StoreInfo{
			Status:     model.TransactionStatusVerified,
			VerifiedAt: &now,
		},
		Promo: &model.PromoInfo{
			Code:         code,
			PromoCodeID:  promo.ID,
			DurationDays: promo.DurationDays,
		},
		CreatedAt: now,
	}
	if err := uc.txns.Insert(ctx, nil, txn); err != nil {
		return nil, err
	}

	// Step 3: ledger insert. A duplicate means this user already redeemed
	// the code; unwind the transaction and report it.
	redemption := &model.PromoRedemption{
		ID:            uuid.NewString(),
		Code:          code,
		PromoCodeID:   promo.ID,
		UserID:        userID,
		TransactionID: txn.ID,
		RedeemedAt:    now,
	}
	if err := uc.redemptions.Insert(ctx, nil, redemption); err != nil {
		uc.compensate(ctx, code, false, "", txn.ID)
		if errors.Is(err, domain.ErrAlreadyExists) {
			metrics.IncPromoRedemption("already_redeemed")
			return nil, domain.ErrPromoAlreadyRedeemed
		}
		return nil, err
	}

	// Step 4: the atomic claim. No match means the cap was reached or the
	// code flipped inactive/expired since step 1 — a lost race is reported
	// the same as "never had a chance".
	claimed, err := uc.promos.Claim(ctx, nil, code, now)
	if err != nil {
		uc.compensate(ctx, code, false, redemption.ID, txn.ID)
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncPromoRedemption("limit_reached")
			return nil, domain.ErrPromoLimitReached
		}
		return nil, err
	}
	if claimed.DurationDays <= 0 {
		uc.compensate(ctx, code, true, redemption.ID, txn.ID)
		metrics.IncPromoRedemption("invalid_duration")
		return nil, domain.ErrPromoInvalidDuration
	}

	// Step 5: extend or create the subscription. On failure, unwind in
	// reverse creation order: claim, ledger row, transaction.
	existing, err := uc.subs.FindByUser(ctx, nil, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.compensate(ctx, code, true, redemption.ID, txn.ID)
		return nil, err
	}
	planCode := promoPlanCode
	if existing != nil && existing.PlanCode != "" {
		planCode = existing.PlanCode
	}

	txID := txn.ID
	sub := model.Extend(existing, userID, planCode, model.SourcePromo, claimed.DurationDays, &txID, now)
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if err := uc.subs.Save(ctx, nil, sub); err != nil {
		uc.compensate(ctx, code, true, redemption.ID, txn.ID)
		return nil, err
	}

	metrics.IncPromoRedemption("ok")
	uc.log.Info().Str("user_id", userID).Str("code", code).Int("duration_days", claimed.DurationDays).Msg("promo redeemed")
	return model.NewSubscriptionView(sub, now), nil
}

// compensate unwinds a partially-committed redemption. Each step is
// best-effort: a failed compensation is logged and the remaining steps
// still run, so the caller's business error is never masked. A failure
// here can leave an orphaned row needing manual reconciliation; this is
// an accepted limitation of the manual-compensation design.
func (uc *subscriptionUC) compensate(ctx context.Context, code string, claimed bool, redemptionID, txnID string) {
	if claimed {
		if err := uc.promos.Rollback(ctx, nil, code); err != nil {
			uc.log.Error().Err(err).Str("code", code).Msg("promo claim rollback failed")
		}
	}
	if redemptionID != "" {
		if err := uc.redemptions.Delete(ctx, nil, redemptionID); err != nil {
			uc.log.Error().Err(err).Str("redemption_id", redemptionID).Msg("redemption delete failed")
		}
	}
	if txnID != "" {
		if err := uc.txns.Delete(ctx, nil, txnID); err != nil {
			uc.log.Error().Err(err).Str("transaction_id", txnID).Msg("transaction delete failed")
		}
	}
}

func (uc *subscriptionUC) GetSubscription(ctx context.Context, userID string) (*model.SubscriptionView, error) {
	sub, err := uc.subs.FindByUser(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return model.NewSubscriptionView(nil, time.Now().UTC()), nil
		}
		return nil, err
	}
	return model.NewSubscriptionView(sub, time.Now().UTC()), nil
}

func (uc *subscriptionUC) PurchaseInit(ctx context.Context, userID, planCode string, source model.SubscriptionSource, amount *float64, currency *string, meta map[string]interface{}) (*model.SubscriptionTransaction, *model.SubscriptionView, error) {
	now := time.Now().UTC()
	plan, err := uc.plans.FindActiveByCode(ctx, nil, strings.TrimSpace(planCode))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrPlanNotFound
		}
		return nil, nil, err
	}

	receipt := map[string]interface{}{}
	for k, v := range meta {
		receipt[k] = v
	}
	txn := &model.SubscriptionTransaction{
		ID:       ulid.Make().String(),
		UserID:   userID,
		Source:   source,
		PlanCode: plan.Code,
		Amount:   amount,
		Currency: currency,
		Store: model.StoreInfo{
			Status:  model.TransactionStatusPending,
			Receipt: receipt,
		},
		CreatedAt: now,
	}
	if err := uc.txns.Insert(ctx, nil, txn); err != nil {
		return nil, nil, err
	}

	sub, err := uc.subs.FindByUser(ctx, nil, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	return txn, model.NewSubscriptionView(sub, now), nil
}

func (uc *subscriptionUC) VerifyPurchase(ctx context.Context, userID, transactionID, provider string, receipt map[string]interface{}, providerTxID string) (*model.SubscriptionView, error) {
	now := time.Now().UTC()
	txn, err := uc.txns.FindByID(ctx, nil, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	if txn.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}

	// Idempotent replay: a verified transaction never extends twice.
	if txn.Store.Status == model.TransactionStatusVerified {
		sub, err := uc.subs.FindByUser(ctx, nil, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return model.NewSubscriptionView(sub, now), nil
	}

	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" || len(provider) > 32 || len(receipt) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	plan, err := uc.plans.FindActiveByCode(ctx, nil, txn.PlanCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			store := txn.Store
			store.Status = model.TransactionStatusFailed
			store.Error = "plan_not_found"
			store.UpdatedAt = &now
			if uerr := uc.txns.UpdateStore(ctx, nil, txn.ID, store); uerr != nil {
				uc.log.Error().Err(uerr).Str("transaction_id", txn.ID).Msg("mark failed store update failed")
			}
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}

	store := txn.Store
	store.Status = model.TransactionStatusVerified
	store.Provider = provider
	store.ProviderTxID = providerTxID
	store.Receipt = receipt
	store.VerifiedAt = &now
	if err := uc.txns.UpdateStore(ctx, nil, txn.ID, store); err != nil {
		return nil, err
	}

	sub, err := uc.extend(ctx, userID, plan.Code, txn.Source, plan.DurationDays, txn.ID, now)
	if err != nil {
		return nil, err
	}
	metrics.IncPurchaseVerified(string(txn.Source))
	return model.NewSubscriptionView(sub, now), nil
}

func (uc *subscriptionUC) WebhookConfirm(ctx context.Context, transactionID, providerStatus string, payload map[string]interface{}) error {
	now := time.Now().UTC()
	txn, err := uc.txns.FindByID(ctx, nil, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTransactionNotFound
		}
		return err
	}

	store := txn.Store
	if store.Receipt == nil {
		store.Receipt = map[string]interface{}{}
	}
	for k, v := range payload {
		store.Receipt[k] = v
	}
	store.UpdatedAt = &now

	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "succeeded", "paid", "success":
		if store.Status == model.TransactionStatusVerified {
			// Replayed webhook; record payload only.
			return uc.txns.UpdateStore(ctx, nil, txn.ID, store)
		}
		store.Status = model.TransactionStatusVerified
		store.VerifiedAt = &now
		if err := uc.txns.UpdateStore(ctx, nil, txn.ID, store); err != nil {
			return err
		}
		plan, err := uc.plans.FindActiveByCode(ctx, nil, txn.PlanCode)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Plan retired after purchase; the verified transaction is
				// kept for reconciliation, no entitlement change.
				uc.log.Warn().Str("transaction_id", txn.ID).Str("plan_code", txn.PlanCode).Msg("webhook verified transaction for missing plan")
				return nil
			}
			return err
		}
		if _, err := uc.extend(ctx, txn.UserID, plan.Code, txn.Source, plan.DurationDays, txn.ID, now); err != nil {
			return err
		}
		metrics.IncPurchaseVerified(string(txn.Source))
		return nil
	case "failed", "canceled", "cancelled", "refunded":
		// Failures are recorded, never retried automatically.
		store.Status = model.TransactionStatusFailed
		store.Error = strings.ToLower(strings.TrimSpace(providerStatus))
		return uc.txns.UpdateStore(ctx, nil, txn.ID, store)
	default:
		return uc.txns.UpdateStore(ctx, nil, txn.ID, store)
	}
}

func (uc *subscriptionUC) extend(ctx context.Context, userID, planCode string, source model.SubscriptionSource, addDays int, txnID string, now time.Time) (*model.Subscription, error) {
	existing, err := uc.subs.FindByUser(ctx, nil, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	sub := model.Extend(existing, userID, planCode, source, addDays, &txnID, now)
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if err := uc.subs.Save(ctx, nil, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *subscriptionUC) Cancel(ctx context.Context, userID string) error {
	sub, err := uc.subs.FindByUser(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // idempotent: nothing to cancel
		}
		return err
	}
	sub.AutoRenew = false
	sub.Status = model.SubscriptionStatusCanceled
	sub.UpdatedAt = time.Now().UTC()
	return uc.subs.Save(ctx, nil, sub)
}

func (uc *subscriptionUC) Entitlement(ctx context.Context, userID string) (model.Entitlement, error) {
	sub, err := uc.subs.FindByUser(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return model.Entitlement{}, nil
		}
		return model.Entitlement{}, err
	}
	return model.ComputeEntitlement(sub, time.Now().UTC()), nil
}
