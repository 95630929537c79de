// File: internal/usecase/reminder_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
)

type reminderFixture struct {
	reminders   *memReminderRepo
	tokens      *memPushTokenRepo
	pushLogs    *memPushLogRepo
	users       *memUserRepo
	workouts    *memWorkoutRepo
	meditations *memMeditationRepo
	sender      *recordingSender
	uc          ReminderUseCase
}

func newReminderFixture() *reminderFixture {
	f := &reminderFixture{
		reminders:   newMemReminderRepo(),
		tokens:      newMemPushTokenRepo(),
		pushLogs:    newMemPushLogRepo(),
		users:       newMemUserRepo(),
		workouts:    newMemWorkoutRepo(),
		meditations: newMemMeditationRepo(),
		sender:      &recordingSender{},
	}
	f.users.put(&model.User{ID: "u1", Timezone: "UTC", Language: "en"})
	f.uc = NewReminderUseCase(f.reminders, f.tokens, f.pushLogs, f.users, f.workouts, f.meditations, f.sender, testLogger())
	return f
}

func (f *reminderFixture) registerToken(t *testing.T, userID, token string) {
	t.Helper()
	if _, err := f.uc.RegisterToken(context.Background(), userID, model.PushProviderFCM, "android", token, "", "en", "UTC"); err != nil {
		t.Fatalf("register token: %v", err)
	}
}

// sweepAt fixes "now" to today at the given UTC wall-clock time so the
// due-window check is deterministic.
func sweepAt(t *testing.T, f *reminderFixture, hour, minute int) (int, time.Time) {
	t.Helper()
	base := time.Now().UTC()
	now := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 30, 0, time.UTC)
	sent, err := f.uc.Sweep(context.Background(), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	return sent, now
}

func TestReminderCRUD(t *testing.T) {
	f := newReminderFixture()

	rem, err := f.uc.Create(context.Background(), "u1", model.ReminderTypeWorkout, "07:30", []int{1, 3, 5}, "Europe/Moscow")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !rem.Enabled {
		t.Fatal("new reminder must be enabled")
	}

	t.Run("invalid time rejected", func(t *testing.T) {
		if _, err := f.uc.Create(context.Background(), "u1", model.ReminderTypeWorkout, "25:99", nil, ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument, got %v", err)
		}
	})

	t.Run("invalid timezone rejected", func(t *testing.T) {
		if _, err := f.uc.Create(context.Background(), "u1", model.ReminderTypeWorkout, "08:00", nil, "Mars/Olympus"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument, got %v", err)
		}
	})

	t.Run("update by another user forbidden", func(t *testing.T) {
		enabled := false
		if _, err := f.uc.Update(context.Background(), "intruder", rem.ID, &enabled, nil, nil, nil); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("delete by another user forbidden", func(t *testing.T) {
		if err := f.uc.Delete(context.Background(), "intruder", rem.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		if err := f.uc.Delete(context.Background(), "u1", rem.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		list, _ := f.uc.ListByUser(context.Background(), "u1")
		if len(list) != 0 {
			t.Fatalf("expected no reminders, got %d", len(list))
		}
	})
}

func TestSweep_DeliversDueReminderOnce(t *testing.T) {
	f := newReminderFixture()
	f.registerToken(t, "u1", "tok-1")
	if _, err := f.uc.Create(context.Background(), "u1", model.ReminderTypeWorkout, "09:00", nil, "UTC"); err != nil {
		t.Fatalf("create: %v", err)
	}

	sent, now := sweepAt(t, f, 9, 0)
	if sent != 1 {
		t.Fatalf("expected 1 delivery, got %d", sent)
	}
	if f.sender.count() != 1 {
		t.Fatalf("expected 1 push, got %d", f.sender.count())
	}

	// The same sweep window again: the push log dedupes.
	sent, _ = sweepAt(t, f, 9, 1)
	if sent != 0 {
		t.Fatalf("expected dedupe, got %d deliveries", sent)
	}

	entry := f.pushLogs.get("u1", "workout", model.DayKey(now, time.UTC))
	if entry == nil || entry.Status != model.PushLogStatusSent {
		t.Fatalf("expected sent log entry, got %+v", entry)
	}
}

func TestSweep_OutsideWindowDoesNothing(t *testing.T) {
	f := newReminderFixture()
	f.registerToken(t, "u1", "tok-1")
	_, _ = f.uc.Create(context.Background(), "u1", model.ReminderTypeWorkout, "09:00", nil, "UTC")

	if sent, _ := sweepAt(t, f, 8, 57); sent != 0 {
		t.Fatalf("expected nothing before the window, got %d", sent)
	}
	if sent, _ := sweepAt(t, f, 9, 3); sent != 0 {
		t.Fatalf("expected nothing after the window, got %d", sent)
	}
}

func TestSweep_NoTokensSkips(t *testing.T) {
	f := newReminderFixture()
	_, _ = f.uc.Create(context.Background(), "u1", model.ReminderTypeWorkout, "09:00", nil, "UTC")

	sent, now := sweepAt(t, f, 9, 0)
	if sent != 0 {
		t.Fatalf("expected no delivery without tokens, got %d", sent)
	}
	entry := f.pushLogs.get("u1", "workout", model.DayKey(now, time.UTC))
	if entry == nil || entry.Status != model.PushLogStatusSkippedNoTokens {
		t.Fatalf("expected skipped_no_tokens, got %+v", entry)
	}
}

func TestSweep_StreakSaveSkipsActiveUser(t *testing.T) {
	f := newReminderFixture()
	f.registerToken(t, "u1", "tok-1")
	_, _ = f.uc.Create(context.Background(), "u1", model.ReminderTypeStreakSave, "20:00", nil, "UTC")

	base := time.Now().UTC()
	completedAt := time.Date(base.Year(), base.Month(), base.Day(), 7, 0, 0, 0, time.UTC)
	_ = f.workouts.Save(context.Background(), nil, &model.WorkoutRun{
		ID: "run-1", UserID: "u1", Source: "template",
		StartedAt: completedAt.Add(-30 * time.Minute), CompletedAt: &completedAt,
		TotalSeconds: 1800,
	})

	sent, now := sweepAt(t, f, 20, 0)
	if sent != 0 {
		t.Fatalf("streak_save must skip a user who already trained, got %d", sent)
	}
	entry := f.pushLogs.get("u1", "streak_save", model.DayKey(now, time.UTC))
	if entry == nil || entry.Status != model.PushLogStatusSkippedActivity {
		t.Fatalf("expected skipped_has_activity, got %+v", entry)
	}
}

func TestSweep_FailureRetriesWithBackoffAndCap(t *testing.T) {
	f := newReminderFixture()
	f.registerToken(t, "u1", "tok-1")
	_, _ = f.uc.Create(context.Background(), "u1", model.ReminderTypeMeditation, "09:00", nil, "UTC")
	f.sender.fail = true

	_, now := sweepAt(t, f, 9, 0)
	day := model.DayKey(now, time.UTC)
	entry := f.pushLogs.get("u1", "meditation", day)
	if entry == nil || entry.Status != model.PushLogStatusFailed || entry.AttemptCount != 1 {
		t.Fatalf("expected one failed attempt, got %+v", entry)
	}

	// Within the backoff the entry is left alone, even if still due.
	sweepAt(t, f, 9, 1)
	if entry = f.pushLogs.get("u1", "meditation", day); entry.AttemptCount != 1 {
		t.Fatalf("expected no retry inside backoff, got %d attempts", entry.AttemptCount)
	}

	// Force attempts to the cap; further sweeps stop trying.
	entry.AttemptCount = maxPushAttempts
	old := now.Add(-2 * pushRetryBackoff)
	entry.LastAttemptAt = &old
	_ = f.pushLogs.Update(context.Background(), nil, entry)
	sweepAt(t, f, 9, 1)
	if entry = f.pushLogs.get("u1", "meditation", day); entry.AttemptCount != maxPushAttempts {
		t.Fatalf("expected attempts capped at %d, got %d", maxPushAttempts, entry.AttemptCount)
	}
}

func TestRegisterToken_Validation(t *testing.T) {
	f := newReminderFixture()
	if _, err := f.uc.RegisterToken(context.Background(), "u1", "carrier-pigeon", "android", "tok", "", "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid provider, got %v", err)
	}
	if _, err := f.uc.RegisterToken(context.Background(), "u1", model.PushProviderFCM, "android", "", "", "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid empty token, got %v", err)
	}
}

func TestUnregisterToken_Ownership(t *testing.T) {
	f := newReminderFixture()
	f.registerToken(t, "u1", "tok-1")

	if err := f.uc.UnregisterToken(context.Background(), "intruder", "tok-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.uc.UnregisterToken(context.Background(), "u1", "tok-1"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if _, err := f.tokens.FindByToken(context.Background(), nil, "tok-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected token gone, got %v", err)
	}
}
