// File: internal/usecase/activity_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

var _ ActivityUseCase = (*activityUC)(nil)

// ActivityUseCase records workout and meditation sessions. Runs are
// started server-side and completed once; completions feed streaks,
// achievements, and the weekly focus summary.
type ActivityUseCase interface {
	StartWorkout(ctx context.Context, userID, source string, workoutRefID *string) (*model.WorkoutRun, error)
	CompleteWorkout(ctx context.Context, userID, runID string, totalSeconds int, calories float64, stars *int) (*model.WorkoutRun, error)
	StartMeditation(ctx context.Context, userID string, typ model.MeditationType, meditationID *string) (*model.MeditationRun, error)
	CompleteMeditation(ctx context.Context, userID, runID string, totalSeconds int) (*model.MeditationRun, error)
}

type activityUC struct {
	workouts    repository.WorkoutRunRepository
	meditations repository.MeditationRunRepository
	log         *zerolog.Logger
}

func NewActivityUseCase(
	workouts repository.WorkoutRunRepository,
	meditations repository.MeditationRunRepository,
	logger *zerolog.Logger,
) *activityUC {
	l := logger.With().Str("component", "ActivityUC").Logger()
	return &activityUC{workouts: workouts, meditations: meditations, log: &l}
}

func (u *activityUC) StartWorkout(ctx context.Context, userID, source string, workoutRefID *string) (*model.WorkoutRun, error) {
	switch source {
	case "template", "program", "custom", "ai":
	default:
		return nil, domain.ErrInvalidArgument
	}
	run := &model.WorkoutRun{
		ID:           uuid.NewString(),
		UserID:       userID,
		Source:       source,
		WorkoutRefID: workoutRefID,
		StartedAt:    time.Now().UTC(),
	}
	if err := u.workouts.Save(ctx, nil, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (u *activityUC) CompleteWorkout(ctx context.Context, userID, runID string, totalSeconds int, calories float64, stars *int) (*model.WorkoutRun, error) {
	run, err := u.workouts.FindByID(ctx, nil, runID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if err := run.Complete(time.Now().UTC(), totalSeconds, calories, stars); err != nil {
		return nil, err
	}
	if err := u.workouts.Save(ctx, nil, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (u *activityUC) StartMeditation(ctx context.Context, userID string, typ model.MeditationType, meditationID *string) (*model.MeditationRun, error) {
	if typ != model.MeditationTypeMeditation && typ != model.MeditationTypeYoga {
		return nil, domain.ErrInvalidArgument
	}
	run := &model.MeditationRun{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         typ,
		MeditationID: meditationID,
		StartedAt:    time.Now().UTC(),
	}
	if err := u.meditations.Save(ctx, nil, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (u *activityUC) CompleteMeditation(ctx context.Context, userID, runID string, totalSeconds int) (*model.MeditationRun, error) {
	run, err := u.meditations.FindByID(ctx, nil, runID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if err := run.Complete(time.Now().UTC(), totalSeconds); err != nil {
		return nil, err
	}
	if err := u.meditations.Save(ctx, nil, run); err != nil {
		return nil, err
	}
	return run, nil
}
