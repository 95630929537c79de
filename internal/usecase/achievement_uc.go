// File: internal/usecase/achievement_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

var _ AchievementUseCase = (*achievementUC)(nil)

// AchievementUseCase joins the immutable catalog with progress derived
// from the user's completed workout history. Nothing is stored per user;
// unlock timestamps are recomputed from run completion times.
type AchievementUseCase interface {
	List(ctx context.Context, userID string) ([]model.AchievementItem, error)
}

type achievementUC struct {
	catalog  *model.AchievementCatalog
	workouts repository.WorkoutRunRepository
	users    repository.UserRepository
}

func NewAchievementUseCase(
	catalog *model.AchievementCatalog,
	workouts repository.WorkoutRunRepository,
	users repository.UserRepository,
) *achievementUC {
	return &achievementUC{catalog: catalog, workouts: workouts, users: users}
}

// progressTotals is everything one oldest-first pass over completed runs
// yields: lifetime totals, the current streak, and the first moment each
// catalog target was crossed.
type progressTotals struct {
	workouts      int
	calories      float64
	hours         float64
	currentStreak int
	unlockedAt    map[string]time.Time
}

func (u *achievementUC) List(ctx context.Context, userID string) ([]model.AchievementItem, error) {
	loc := time.UTC
	if user, err := u.users.FindByID(ctx, nil, userID); err == nil {
		loc = user.Location()
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	runs, err := u.workouts.FindCompletedByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	totals := u.replay(runs, loc)

	items := make([]model.AchievementItem, 0, u.catalog.Len())
	for _, def := range u.catalog.All() {
		var current float64
		switch def.Category {
		case model.AchievementCategoryWorkouts:
			current = float64(totals.workouts)
		case model.AchievementCategoryStreak:
			current = float64(totals.currentStreak)
		case model.AchievementCategoryCalories:
			current = totals.calories
		case model.AchievementCategoryTime:
			current = totals.hours
		}
		item := model.AchievementItem{
			AchievementDef: def,
			Current:        current,
			Progress:       model.ClampProgress(current, def.Target),
		}
		if at, ok := totals.unlockedAt[def.Key]; ok {
			item.Unlocked = true
			t := at
			item.UnlockedAt = &t
		}
		items = append(items, item)
	}
	return items, nil
}

// replay walks completed runs oldest-first, accumulating totals and a
// running streak over local calendar days. A threshold records its unlock
// time when first crossed, so an achievement stays unlocked even if the
// current streak later resets.
func (u *achievementUC) replay(runs []*model.WorkoutRun, loc *time.Location) progressTotals {
	totals := progressTotals{unlockedAt: make(map[string]time.Time)}

	var prevDay string
	streak := 0
	for _, run := range runs {
		if run.CompletedAt == nil {
			continue
		}
		at := *run.CompletedAt

		day := model.DayKey(at, loc)
		if day != prevDay {
			if prevDay != "" && !consecutiveDays(prevDay, day, loc) {
				streak = 1
			} else {
				streak++
			}
			prevDay = day
		}

		totals.workouts++
		totals.calories += run.CaloriesEstimated
		totals.hours += float64(run.TotalSeconds) / 3600

		for _, def := range u.catalog.All() {
			if _, done := totals.unlockedAt[def.Key]; done {
				continue
			}
			var current float64
			switch def.Category {
			case model.AchievementCategoryWorkouts:
				current = float64(totals.workouts)
			case model.AchievementCategoryStreak:
				current = float64(streak)
			case model.AchievementCategoryCalories:
				current = totals.calories
			case model.AchievementCategoryTime:
				current = totals.hours
			}
			if current >= def.Target {
				totals.unlockedAt[def.Key] = at
			}
		}
	}

	// The streak shown to the user only counts if it reaches today or
	// yesterday; an older streak has already been broken.
	if prevDay != "" {
		today := model.DayKey(time.Now(), loc)
		yesterday := model.DayKey(time.Now().AddDate(0, 0, -1), loc)
		if prevDay == today || prevDay == yesterday {
			totals.currentStreak = streak
		}
	}
	return totals
}

// consecutiveDays reports whether day b is exactly one calendar day
// after day a. Keys are YYYY-MM-DD in loc.
func consecutiveDays(a, b string, loc *time.Location) bool {
	ta, err := time.ParseInLocation("2006-01-02", a, loc)
	if err != nil {
		return false
	}
	return model.DayKey(ta.AddDate(0, 0, 1), loc) == b
}
