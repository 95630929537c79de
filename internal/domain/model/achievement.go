package model

import (
	"fmt"
	"time"
)

type AchievementCategory string

const (
	AchievementCategoryWorkouts AchievementCategory = "workouts"
	AchievementCategoryStreak   AchievementCategory = "streak"
	AchievementCategoryCalories AchievementCategory = "calories"
	AchievementCategoryTime     AchievementCategory = "time"
)

// AchievementDef is one immutable catalog entry. The catalog is loaded once
// at startup and never mutated at runtime.
type AchievementDef struct {
	Key      string              `json:"key"`
	Category AchievementCategory `json:"category"`
	TitleEN  string              `json:"title_en"`
	TitleRU  string              `json:"title_ru"`
	DescEN   string              `json:"description_en"`
	DescRU   string              `json:"description_ru"`
	Unit     string              `json:"unit"`
	Target   float64             `json:"target"`
}

// AchievementCatalog is the startup-loaded lookup, keyed by achievement key
// and ordered for stable API output.
type AchievementCatalog struct {
	byKey   map[string]AchievementDef
	ordered []AchievementDef
}

func NewAchievementCatalog(defs []AchievementDef) *AchievementCatalog {
	c := &AchievementCatalog{byKey: make(map[string]AchievementDef, len(defs))}
	for _, d := range defs {
		if _, dup := c.byKey[d.Key]; dup {
			continue
		}
		c.byKey[d.Key] = d
		c.ordered = append(c.ordered, d)
	}
	return c
}

func (c *AchievementCatalog) Get(key string) (AchievementDef, bool) {
	d, ok := c.byKey[key]
	return d, ok
}

func (c *AchievementCatalog) All() []AchievementDef { return c.ordered }

func (c *AchievementCatalog) Len() int { return len(c.ordered) }

// DefaultAchievementCatalog builds the standard milestone set: workout
// counts, streak lengths, calories burned, and total training hours.
func DefaultAchievementCatalog() *AchievementCatalog {
	var defs []AchievementDef

	for _, t := range []int{1, 10, 50, 100, 500} {
		defs = append(defs, AchievementDef{
			Key:      fmt.Sprintf("workouts_%d", t),
			Category: AchievementCategoryWorkouts,
			TitleEN:  fmt.Sprintf("%d workouts", t),
			TitleRU:  fmt.Sprintf("%d тренировок", t),
			DescEN:   fmt.Sprintf("Complete %d workouts", t),
			DescRU:   fmt.Sprintf("Завершите %d тренировок", t),
			Unit:     "workouts",
			Target:   float64(t),
		})
	}
	for _, t := range []int{7, 30, 100} {
		defs = append(defs, AchievementDef{
			Key:      fmt.Sprintf("streak_%d", t),
			Category: AchievementCategoryStreak,
			TitleEN:  fmt.Sprintf("%d-day streak", t),
			TitleRU:  fmt.Sprintf("Серия %d дней", t),
			DescEN:   fmt.Sprintf("Train %d days in a row", t),
			DescRU:   fmt.Sprintf("Тренируйтесь %d дней подряд", t),
			Unit:     "days",
			Target:   float64(t),
		})
	}
	for _, t := range []int{1000, 5000, 10000} {
		defs = append(defs, AchievementDef{
			Key:      fmt.Sprintf("calories_%d", t),
			Category: AchievementCategoryCalories,
			TitleEN:  fmt.Sprintf("%d kcal", t),
			TitleRU:  fmt.Sprintf("%d ккал", t),
			DescEN:   fmt.Sprintf("Burn %d kcal", t),
			DescRU:   fmt.Sprintf("Сожгите %d ккал", t),
			Unit:     "kcal",
			Target:   float64(t),
		})
	}
	for _, t := range []int{10, 50, 100} {
		defs = append(defs, AchievementDef{
			Key:      fmt.Sprintf("time_%dh", t),
			Category: AchievementCategoryTime,
			TitleEN:  fmt.Sprintf("%d hours", t),
			TitleRU:  fmt.Sprintf("%d часов", t),
			DescEN:   fmt.Sprintf("Train for %d total hours", t),
			DescRU:   fmt.Sprintf("Потренируйтесь суммарно %d часов", t),
			Unit:     "hours",
			Target:   float64(t),
		})
	}
	return NewAchievementCatalog(defs)
}

// AchievementItem is a catalog entry joined with the user's progress.
type AchievementItem struct {
	AchievementDef
	Current    float64    `json:"current"`
	Progress   float64    `json:"progress"` // clamped current/target in [0,1]
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// ClampProgress returns current/target clamped to [0,1]; zero targets
// yield zero progress.
func ClampProgress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := current / target
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
