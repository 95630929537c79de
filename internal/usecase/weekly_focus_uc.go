// File: internal/usecase/weekly_focus_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

// Per-activity point values and the weekly goal they add up toward.
const (
	PointsWorkout    = 10
	PointsYoga       = 10
	PointsMeditation = 5
	WeeklyGoalPoints = 50
)

var _ WeeklyFocusUseCase = (*weeklyFocusUC)(nil)

// WeeklyFocusSummary is the current calendar week's activity rollup in
// the user's timezone: points per day, the weekly total against the
// goal, and the in-week streak of consecutive active days ending today.
type WeeklyFocusSummary struct {
	WeekStart    string            `json:"week_start"` // Monday, YYYY-MM-DD
	Timezone     string            `json:"timezone"`
	Points       int               `json:"points"`
	GoalPoints   int               `json:"goal_points"`
	GoalReached  bool              `json:"goal_reached"`
	Days         []WeeklyFocusDay  `json:"days"`
	InWeekStreak int               `json:"in_week_streak"`
	Counts       WeeklyFocusCounts `json:"counts"`
}

type WeeklyFocusDay struct {
	Date   string `json:"date"`
	Points int    `json:"points"`
	Active bool   `json:"active"`
}

type WeeklyFocusCounts struct {
	Workouts    int `json:"workouts"`
	Yoga        int `json:"yoga"`
	Meditations int `json:"meditations"`
}

type WeeklyFocusUseCase interface {
	Summary(ctx context.Context, userID string) (*WeeklyFocusSummary, error)
}

type weeklyFocusUC struct {
	workouts    repository.WorkoutRunRepository
	meditations repository.MeditationRunRepository
	users       repository.UserRepository
}

func NewWeeklyFocusUseCase(
	workouts repository.WorkoutRunRepository,
	meditations repository.MeditationRunRepository,
	users repository.UserRepository,
) *weeklyFocusUC {
	return &weeklyFocusUC{workouts: workouts, meditations: meditations, users: users}
}

func (u *weeklyFocusUC) Summary(ctx context.Context, userID string) (*WeeklyFocusSummary, error) {
	loc := time.UTC
	if user, err := u.users.FindByID(ctx, nil, userID); err == nil {
		loc = user.Location()
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().In(loc)
	weekStart := startOfISOWeek(now)

	workouts, err := u.workouts.FindCompletedInRange(ctx, nil, userID, weekStart.UTC(), now.UTC())
	if err != nil {
		return nil, err
	}
	meditations, err := u.meditations.FindCompletedInRange(ctx, nil, userID, weekStart.UTC(), now.UTC())
	if err != nil {
		return nil, err
	}

	pointsByDay := make(map[string]int, 7)
	var counts WeeklyFocusCounts
	for _, run := range workouts {
		if run.CompletedAt == nil {
			continue
		}
		pointsByDay[model.DayKey(*run.CompletedAt, loc)] += PointsWorkout
		counts.Workouts++
	}
	for _, run := range meditations {
		if run.CompletedAt == nil {
			continue
		}
		day := model.DayKey(*run.CompletedAt, loc)
		if run.Type == model.MeditationTypeYoga {
			pointsByDay[day] += PointsYoga
			counts.Yoga++
		} else {
			pointsByDay[day] += PointsMeditation
			counts.Meditations++
		}
	}

	summary := &WeeklyFocusSummary{
		WeekStart:  model.DayKey(weekStart, loc),
		Timezone:   loc.String(),
		GoalPoints: WeeklyGoalPoints,
		Counts:     counts,
	}
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		key := model.DayKey(day, loc)
		pts := pointsByDay[key]
		summary.Points += pts
		summary.Days = append(summary.Days, WeeklyFocusDay{
			Date:   key,
			Points: pts,
			Active: pts > 0,
		})
	}
	summary.GoalReached = summary.Points >= WeeklyGoalPoints

	// In-week streak: consecutive active days ending today, never
	// crossing the Monday boundary.
	for i := daysIntoWeek(now, weekStart); i >= 0; i-- {
		if !summary.Days[i].Active {
			break
		}
		summary.InWeekStreak++
	}
	return summary, nil
}

// startOfISOWeek returns midnight of the Monday of t's week, in t's
// location.
func startOfISOWeek(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7 // Sunday
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(offset - 1))
}

// daysIntoWeek counts calendar days, so a DST-shortened day still
// advances the index.
func daysIntoWeek(now, weekStart time.Time) int {
	today := model.DayKey(now, now.Location())
	for i := 6; i > 0; i-- {
		if model.DayKey(weekStart.AddDate(0, 0, i), now.Location()) == today {
			return i
		}
	}
	return 0
}
