package model

import (
	"time"

	"prime-fitness-backend/internal/domain"
)

// WorkoutRun is one started (and possibly completed) workout session.
type WorkoutRun struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Source            string     `json:"source"` // template|program|custom|ai
	WorkoutRefID      *string    `json:"workout_ref_id,omitempty"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	TotalSeconds      int        `json:"total_seconds"`
	CaloriesEstimated float64    `json:"calories_estimated"`
	RatingStars       *int       `json:"rating_stars,omitempty"`
}

type MeditationType string

const (
	MeditationTypeMeditation MeditationType = "meditation"
	MeditationTypeYoga       MeditationType = "yoga"
)

// MeditationRun is one started (and possibly completed) meditation or
// yoga session.
type MeditationRun struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Type         MeditationType `json:"type"`
	MeditationID *string        `json:"meditation_id,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	TotalSeconds int            `json:"total_seconds"`
}

// Complete marks the run done. Completing twice is rejected so a run
// counts once toward streaks and points.
func (r *WorkoutRun) Complete(now time.Time, totalSeconds int, calories float64, stars *int) error {
	if r.CompletedAt != nil {
		return domain.ErrAlreadyExists
	}
	if totalSeconds < 0 || calories < 0 {
		return domain.ErrInvalidArgument
	}
	if stars != nil && (*stars < 1 || *stars > 5) {
		return domain.ErrInvalidArgument
	}
	r.CompletedAt = &now
	r.TotalSeconds = totalSeconds
	r.CaloriesEstimated = calories
	r.RatingStars = stars
	return nil
}

func (r *MeditationRun) Complete(now time.Time, totalSeconds int) error {
	if r.CompletedAt != nil {
		return domain.ErrAlreadyExists
	}
	if totalSeconds < 0 {
		return domain.ErrInvalidArgument
	}
	r.CompletedAt = &now
	r.TotalSeconds = totalSeconds
	return nil
}

// ActivityDay is a local calendar day with at least one completed run.
// DayKey formats a time in the given location as the day key used for
// streak arithmetic.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
