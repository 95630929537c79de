package repository

import (
	"context"

	"prime-fitness-backend/internal/domain/model"
)

// ReminderRepository stores per-user push reminders.
type ReminderRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Reminder) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Reminder, error)
	FindByUser(ctx context.Context, tx Tx, userID string) ([]*model.Reminder, error)
	FindEnabled(ctx context.Context, tx Tx) ([]*model.Reminder, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

// PushTokenRepository stores device push tokens keyed by token string.
type PushTokenRepository interface {
	// Save upserts on the token uniqueness constraint, moving the token
	// to the saved user if it was registered elsewhere.
	Save(ctx context.Context, tx Tx, t *model.DevicePushToken) error
	FindByToken(ctx context.Context, tx Tx, token string) (*model.DevicePushToken, error)
	FindByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.DevicePushToken, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

// PushLogRepository dedupes sends per (user, kind, local date).
type PushLogRepository interface {
	// GetOrCreate returns the existing row or inserts a pending one,
	// tolerating the concurrent-insert race on the uniqueness constraint.
	GetOrCreate(ctx context.Context, tx Tx, userID, kind, localDate string) (*model.PushDeliveryLog, error)
	Update(ctx context.Context, tx Tx, log *model.PushDeliveryLog) error
}

// AnalyticsEventRepository ingests client events.
type AnalyticsEventRepository interface {
	InsertBatch(ctx context.Context, tx Tx, events []*model.AnalyticsEvent) (int, error)
}

// UserRepository exposes the profile fields scheduling needs.
type UserRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
}

// AIPlanRepository logs stub plan requests and their results.
type AIPlanRepository interface {
	SaveRequest(ctx context.Context, tx Tx, req *model.AIPlanRequest) error
	SavePlan(ctx context.Context, tx Tx, plan *model.AIPlan) error
	FindLatestPlan(ctx context.Context, tx Tx, userID string) (*model.AIPlan, error)
}
