package repository

import (
	"context"
	"time"

	"prime-fitness-backend/internal/domain/model"
)

// WorkoutRunRepository stores workout sessions.
type WorkoutRunRepository interface {
	Save(ctx context.Context, tx Tx, run *model.WorkoutRun) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.WorkoutRun, error)
	// FindCompletedByUser returns completed runs, oldest first.
	FindCompletedByUser(ctx context.Context, tx Tx, userID string) ([]*model.WorkoutRun, error)
	FindCompletedInRange(ctx context.Context, tx Tx, userID string, from, to time.Time) ([]*model.WorkoutRun, error)
	CountCompletedInRange(ctx context.Context, tx Tx, userID string, from, to time.Time) (int, error)
}

// MeditationRunRepository stores meditation/yoga sessions.
type MeditationRunRepository interface {
	Save(ctx context.Context, tx Tx, run *model.MeditationRun) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.MeditationRun, error)
	FindCompletedInRange(ctx context.Context, tx Tx, userID string, from, to time.Time) ([]*model.MeditationRun, error)
	CountCompletedInRange(ctx context.Context, tx Tx, userID string, from, to time.Time) (int, error)
}
