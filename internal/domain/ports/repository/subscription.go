package repository

import (
	"context"
	"time"

	"prime-fitness-backend/internal/domain/model"
)

// SubscriptionRepository stores the one-row-per-user entitlement record.
type SubscriptionRepository interface {
	// Save upserts on the user_id uniqueness constraint.
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	// MarkExpiredPastGrace flips the stored status to expired for rows
	// whose grace window lapsed before `before`. Returns rows affected.
	MarkExpiredPastGrace(ctx context.Context, tx Tx, before time.Time) (int, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}

// SubscriptionTransactionRepository is the append-only transaction log.
// Delete exists solely for the orchestrator's compensation path.
type SubscriptionTransactionRepository interface {
	Insert(ctx context.Context, tx Tx, t *model.SubscriptionTransaction) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.SubscriptionTransaction, error)
	UpdateStore(ctx context.Context, tx Tx, id string, store model.StoreInfo) error
	Delete(ctx context.Context, tx Tx, id string) error
}
