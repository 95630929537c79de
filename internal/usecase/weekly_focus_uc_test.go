// File: internal/usecase/weekly_focus_uc_test.go
package usecase

import (
	"context"
	"testing"
	"time"

	"prime-fitness-backend/internal/domain/model"
)

func newWeeklyFixture() (*memWorkoutRepo, *memMeditationRepo, WeeklyFocusUseCase) {
	workouts := newMemWorkoutRepo()
	meditations := newMemMeditationRepo()
	users := newMemUserRepo()
	users.put(&model.User{ID: "u1", Timezone: "UTC"})
	return workouts, meditations, NewWeeklyFocusUseCase(workouts, meditations, users)
}

func seedCompletedMeditation(t *testing.T, repo *memMeditationRepo, id string, typ model.MeditationType, completedAt time.Time) {
	t.Helper()
	run := &model.MeditationRun{
		ID: id, UserID: "u1", Type: typ,
		StartedAt: completedAt.Add(-10 * time.Minute), CompletedAt: &completedAt,
		TotalSeconds: 600,
	}
	if err := repo.Save(context.Background(), nil, run); err != nil {
		t.Fatalf("seed meditation: %v", err)
	}
}

func TestWeeklyFocus_EmptyWeek(t *testing.T) {
	_, _, uc := newWeeklyFixture()
	summary, err := uc.Summary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Points != 0 || summary.GoalReached || summary.InWeekStreak != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	if len(summary.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(summary.Days))
	}
	if summary.GoalPoints != WeeklyGoalPoints {
		t.Fatalf("expected goal %d, got %d", WeeklyGoalPoints, summary.GoalPoints)
	}
}

func TestWeeklyFocus_PointsPerActivityType(t *testing.T) {
	workouts, meditations, uc := newWeeklyFixture()
	now := time.Now().UTC().Add(-time.Minute)
	today := model.DayKey(now, time.UTC)

	seedCompletedWorkout(t, workouts, "u1", now, 1800, 200)
	seedCompletedMeditation(t, meditations, "m1", model.MeditationTypeMeditation, now)
	seedCompletedMeditation(t, meditations, "m2", model.MeditationTypeYoga, now)

	summary, err := uc.Summary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := PointsWorkout + PointsMeditation + PointsYoga
	if summary.Points != want {
		t.Fatalf("expected %d points, got %d", want, summary.Points)
	}
	if summary.Counts.Workouts != 1 || summary.Counts.Meditations != 1 || summary.Counts.Yoga != 1 {
		t.Fatalf("unexpected counts %+v", summary.Counts)
	}

	var todayEntry *WeeklyFocusDay
	for i := range summary.Days {
		if summary.Days[i].Date == today {
			todayEntry = &summary.Days[i]
		}
	}
	if todayEntry == nil || todayEntry.Points != want || !todayEntry.Active {
		t.Fatalf("expected today's bucket with %d points, got %+v", want, todayEntry)
	}
	if summary.InWeekStreak != 1 {
		t.Fatalf("expected in-week streak 1, got %d", summary.InWeekStreak)
	}
}

func TestWeeklyFocus_GoalReached(t *testing.T) {
	workouts, _, uc := newWeeklyFixture()
	now := time.Now().UTC().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		seedCompletedWorkout(t, workouts, "u1", now.Add(-time.Duration(i)*time.Minute), 1800, 200)
	}

	summary, err := uc.Summary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Points != 5*PointsWorkout {
		t.Fatalf("expected %d points, got %d", 5*PointsWorkout, summary.Points)
	}
	if !summary.GoalReached {
		t.Fatal("expected goal reached at 50 points")
	}
}

func TestDaysIntoWeek_DSTShortDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	// Sunday 2026-03-08 lost an hour to the spring-forward transition;
	// wall-clock arithmetic would place it a day early.
	now := time.Date(2026, 3, 8, 20, 0, 0, 0, loc)
	weekStart := startOfISOWeek(now)
	if key := model.DayKey(weekStart, loc); key != "2026-03-02" {
		t.Fatalf("expected week start 2026-03-02, got %s", key)
	}
	if got := daysIntoWeek(now, weekStart); got != 6 {
		t.Fatalf("expected Sunday index 6, got %d", got)
	}

	mid := time.Date(2026, 3, 4, 9, 30, 0, 0, loc)
	if got := daysIntoWeek(mid, startOfISOWeek(mid)); got != 2 {
		t.Fatalf("expected Wednesday index 2, got %d", got)
	}
}

func TestWeeklyFocus_LastWeekExcluded(t *testing.T) {
	workouts, _, uc := newWeeklyFixture()
	seedCompletedWorkout(t, workouts, "u1", time.Now().UTC().AddDate(0, 0, -8), 1800, 200)

	summary, err := uc.Summary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Points != 0 {
		t.Fatalf("last week's run must not count, got %d points", summary.Points)
	}
}
