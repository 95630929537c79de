// File: internal/usecase/achievement_uc_test.go
package usecase

import (
	"context"
	"strconv"
	"testing"
	"time"

	"prime-fitness-backend/internal/domain/model"
)

func seedCompletedWorkout(t *testing.T, repo *memWorkoutRepo, userID string, completedAt time.Time, seconds int, calories float64) {
	t.Helper()
	run := &model.WorkoutRun{
		ID:                "run-" + completedAt.Format("20060102T150405") + "-" + strconv.Itoa(repoLen(repo)),
		UserID:            userID,
		Source:            "template",
		StartedAt:         completedAt.Add(-time.Duration(seconds) * time.Second),
		CompletedAt:       &completedAt,
		TotalSeconds:      seconds,
		CaloriesEstimated: calories,
	}
	if err := repo.Save(context.Background(), nil, run); err != nil {
		t.Fatalf("seed run: %v", err)
	}
}

func repoLen(r *memWorkoutRepo) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func newAchievementFixture() (*memWorkoutRepo, *memUserRepo, AchievementUseCase) {
	workouts := newMemWorkoutRepo()
	users := newMemUserRepo()
	users.put(&model.User{ID: "u1", Timezone: "UTC"})
	uc := NewAchievementUseCase(model.DefaultAchievementCatalog(), workouts, users)
	return workouts, users, uc
}

func findItem(t *testing.T, items []model.AchievementItem, key string) model.AchievementItem {
	t.Helper()
	for _, item := range items {
		if item.Key == key {
			return item
		}
	}
	t.Fatalf("achievement %q not in list", key)
	return model.AchievementItem{}
}

func TestAchievements_EmptyHistory(t *testing.T) {
	_, _, uc := newAchievementFixture()
	items, err := uc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("catalog must always be returned")
	}
	for _, item := range items {
		if item.Unlocked || item.Progress != 0 {
			t.Fatalf("expected locked zero-progress item, got %+v", item)
		}
	}
}

func TestAchievements_FirstWorkoutUnlocksWithTimestamp(t *testing.T) {
	workouts, _, uc := newAchievementFixture()
	at := time.Now().UTC().Add(-48 * time.Hour)
	seedCompletedWorkout(t, workouts, "u1", at, 1800, 250)

	items, err := uc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	first := findItem(t, items, "workouts_1")
	if !first.Unlocked || first.UnlockedAt == nil {
		t.Fatalf("expected first workout unlocked, got %+v", first)
	}
	if !first.UnlockedAt.Equal(at) {
		t.Fatalf("unlock timestamp should be the completing run's time, got %v want %v", first.UnlockedAt, at)
	}

	ten := findItem(t, items, "workouts_10")
	if ten.Unlocked {
		t.Fatal("ten-workout achievement must stay locked")
	}
	if ten.Progress != 0.1 {
		t.Fatalf("expected 0.1 progress toward 10 workouts, got %v", ten.Progress)
	}
}

func TestAchievements_StreakSurvivesReset(t *testing.T) {
	workouts, _, uc := newAchievementFixture()
	now := time.Now().UTC()

	// Seven consecutive days ending 30 days ago unlocked the 7-day streak.
	start := now.AddDate(0, 0, -36)
	var seventhDay time.Time
	for i := 0; i < 7; i++ {
		at := start.AddDate(0, 0, i)
		seedCompletedWorkout(t, workouts, "u1", at, 1200, 100)
		seventhDay = at
	}
	// One isolated workout yesterday broke the streak.
	seedCompletedWorkout(t, workouts, "u1", now.AddDate(0, 0, -1), 1200, 100)

	items, err := uc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	streak7 := findItem(t, items, "streak_7")
	if !streak7.Unlocked {
		t.Fatal("historical streak unlock must survive the reset")
	}
	if !streak7.UnlockedAt.Equal(seventhDay) {
		t.Fatalf("unlock pinned to the seventh day, got %v want %v", streak7.UnlockedAt, seventhDay)
	}
	if streak7.Current != 1 {
		t.Fatalf("current streak after reset should be 1, got %v", streak7.Current)
	}
}

func TestAchievements_StaleStreakShowsZero(t *testing.T) {
	workouts, _, uc := newAchievementFixture()
	// Three consecutive days, but the last one was five days ago.
	start := time.Now().UTC().AddDate(0, 0, -7)
	for i := 0; i < 3; i++ {
		seedCompletedWorkout(t, workouts, "u1", start.AddDate(0, 0, i), 1200, 100)
	}

	items, err := uc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	streak7 := findItem(t, items, "streak_7")
	if streak7.Current != 0 {
		t.Fatalf("a streak that ended days ago shows 0, got %v", streak7.Current)
	}
}

func TestAchievements_CaloriesAndTimeAccumulate(t *testing.T) {
	workouts, _, uc := newAchievementFixture()
	now := time.Now().UTC()
	// 11 hours and 1100 kcal over two days.
	seedCompletedWorkout(t, workouts, "u1", now.AddDate(0, 0, -1), 6*3600, 600)
	seedCompletedWorkout(t, workouts, "u1", now, 5*3600, 500)

	items, err := uc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if item := findItem(t, items, "time_10h"); !item.Unlocked {
		t.Fatalf("expected 10h unlocked at 11h, got %+v", item)
	}
	if item := findItem(t, items, "calories_1000"); !item.Unlocked {
		t.Fatalf("expected 1000 kcal unlocked at 1100, got %+v", item)
	}
	if item := findItem(t, items, "calories_5000"); item.Unlocked {
		t.Fatal("5000 kcal must stay locked")
	}
}
