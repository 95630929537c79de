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

var _ repository.WorkoutRunRepository = (*workoutRunRepo)(nil)

type workoutRunRepo struct {
	pool *pgxpool.Pool
}

func NewWorkoutRunRepo(pool *pgxpool.Pool) *workoutRunRepo {
	return &workoutRunRepo{pool: pool}
}

const workoutRunColumns = `id, user_id, source, workout_ref_id, started_at, completed_at, total_seconds, calories_estimated, rating_stars`

func (r *workoutRunRepo) Save(ctx context.Context, tx repository.Tx, run *model.WorkoutRun) error {
	const q = `
INSERT INTO workout_runs (id, user_id, source, workout_ref_id, started_at, completed_at, total_seconds, calories_estimated, rating_stars)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  completed_at       = EXCLUDED.completed_at,
  total_seconds      = EXCLUDED.total_seconds,
  calories_estimated = EXCLUDED.calories_estimated,
  rating_stars       = EXCLUDED.rating_stars;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		run.ID, run.UserID, run.Source, run.WorkoutRefID, run.StartedAt, run.CompletedAt, run.TotalSeconds, run.CaloriesEstimated, run.RatingStars,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *workoutRunRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.WorkoutRun, error) {
	const q = `SELECT ` + workoutRunColumns + ` FROM workout_runs WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanWorkoutRun(row)
}

func (r *workoutRunRepo) FindCompletedByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.WorkoutRun, error) {
	const q = `
SELECT ` + workoutRunColumns + `
  FROM workout_runs
 WHERE user_id = $1 AND completed_at IS NOT NULL
 ORDER BY completed_at ASC;`
	return r.queryRuns(ctx, tx, q, userID)
}

func (r *workoutRunRepo) FindCompletedInRange(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) ([]*model.WorkoutRun, error) {
	const q = `
SELECT ` + workoutRunColumns + `
  FROM workout_runs
 WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $3
 ORDER BY completed_at ASC;`
	return r.queryRuns(ctx, tx, q, userID, from, to)
}

func (r *workoutRunRepo) CountCompletedInRange(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(1) FROM workout_runs WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $3;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, from, to)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *workoutRunRepo) queryRuns(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.WorkoutRun, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.WorkoutRun
	for rows.Next() {
		run := new(model.WorkoutRun)
		if err := rows.Scan(&run.ID, &run.UserID, &run.Source, &run.WorkoutRefID, &run.StartedAt, &run.CompletedAt, &run.TotalSeconds, &run.CaloriesEstimated, &run.RatingStars); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, run)
	}
	return out, nil
}

func scanWorkoutRun(row pgx.Row) (*model.WorkoutRun, error) {
	var run model.WorkoutRun
	err := row.Scan(&run.ID, &run.UserID, &run.Source, &run.WorkoutRefID, &run.StartedAt, &run.CompletedAt, &run.TotalSeconds, &run.CaloriesEstimated, &run.RatingStars)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &run, nil
}

var _ repository.MeditationRunRepository = (*meditationRunRepo)(nil)

type meditationRunRepo struct {
	pool *pgxpool.Pool
}

func NewMeditationRunRepo(pool *pgxpool.Pool) *meditationRunRepo {
	return &meditationRunRepo{pool: pool}
}

const meditationRunColumns = `id, user_id, type, meditation_id, started_at, completed_at, total_seconds`

func (r *meditationRunRepo) Save(ctx context.Context, tx repository.Tx, run *model.MeditationRun) error {
	const q = `
INSERT INTO meditation_runs (id, user_id, type, meditation_id, started_at, completed_at, total_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
  completed_at  = EXCLUDED.completed_at,
  total_seconds = EXCLUDED.total_seconds;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		run.ID, run.UserID, run.Type, run.MeditationID, run.StartedAt, run.CompletedAt, run.TotalSeconds,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *meditationRunRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MeditationRun, error) {
	const q = `SELECT ` + meditationRunColumns + ` FROM meditation_runs WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var run model.MeditationRun
	err = row.Scan(&run.ID, &run.UserID, &run.Type, &run.MeditationID, &run.StartedAt, &run.CompletedAt, &run.TotalSeconds)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &run, nil
}

func (r *meditationRunRepo) FindCompletedInRange(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) ([]*model.MeditationRun, error) {
	const q = `
SELECT ` + meditationRunColumns + `
  FROM meditation_runs
 WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $3
 ORDER BY completed_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, from, to)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.MeditationRun
	for rows.Next() {
		run := new(model.MeditationRun)
		if err := rows.Scan(&run.ID, &run.UserID, &run.Type, &run.MeditationID, &run.StartedAt, &run.CompletedAt, &run.TotalSeconds); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, run)
	}
	return out, nil
}

func (r *meditationRunRepo) CountCompletedInRange(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(1) FROM meditation_runs WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $3;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, from, to)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
