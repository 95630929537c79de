// File: internal/usecase/reminder_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/adapter"
	"prime-fitness-backend/internal/domain/ports/repository"
	"prime-fitness-backend/internal/infra/metrics"
)

const (
	maxPushAttempts  = 3
	pushRetryBackoff = 4 * time.Hour
	maxTokensPerUser = 5
)

var _ ReminderUseCase = (*reminderUC)(nil)

// ReminderUseCase manages per-user push reminders and runs the sweep
// that delivers due ones. Delivery is deduped per (user, kind, local
// date) through the push log, so overlapping sweeps never double-send.
type ReminderUseCase interface {
	Create(ctx context.Context, userID string, typ model.ReminderType, timeHHMM string, weekdays []int, timezone string) (*model.Reminder, error)
	Update(ctx context.Context, userID, reminderID string, enabled *bool, timeHHMM *string, weekdays []int, timezone *string) (*model.Reminder, error)
	Delete(ctx context.Context, userID, reminderID string) error
	ListByUser(ctx context.Context, userID string) ([]*model.Reminder, error)
	RegisterToken(ctx context.Context, userID string, provider model.PushProvider, platform, token, deviceID, locale, timezone string) (*model.DevicePushToken, error)
	UnregisterToken(ctx context.Context, userID, token string) error
	Sweep(ctx context.Context, now time.Time) (sent int, err error)
}

type reminderUC struct {
	reminders   repository.ReminderRepository
	tokens      repository.PushTokenRepository
	pushLogs    repository.PushLogRepository
	users       repository.UserRepository
	workouts    repository.WorkoutRunRepository
	meditations repository.MeditationRunRepository
	sender      adapter.PushSender
	log         *zerolog.Logger
}

func NewReminderUseCase(
	reminders repository.ReminderRepository,
	tokens repository.PushTokenRepository,
	pushLogs repository.PushLogRepository,
	users repository.UserRepository,
	workouts repository.WorkoutRunRepository,
	meditations repository.MeditationRunRepository,
	sender adapter.PushSender,
	logger *zerolog.Logger,
) *reminderUC {
	l := logger.With().Str("component", "ReminderUC").Logger()
	return &reminderUC{
		reminders:   reminders,
		tokens:      tokens,
		pushLogs:    pushLogs,
		users:       users,
		workouts:    workouts,
		meditations: meditations,
		sender:      sender,
		log:         &l,
	}
}

func validReminderType(t model.ReminderType) bool {
	switch t {
	case model.ReminderTypeWorkout, model.ReminderTypeMeditation, model.ReminderTypeWeight, model.ReminderTypeStreakSave:
		return true
	}
	return false
}

func validWeekdays(weekdays []int) bool {
	for _, d := range weekdays {
		if d < 1 || d > 7 {
			return false
		}
	}
	return true
}

func (u *reminderUC) Create(ctx context.Context, userID string, typ model.ReminderType, timeHHMM string, weekdays []int, timezone string) (*model.Reminder, error) {
	if !validReminderType(typ) || !validWeekdays(weekdays) {
		return nil, domain.ErrInvalidArgument
	}
	if _, _, err := model.ParseHHMM(timeHHMM); err != nil {
		return nil, err
	}
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, domain.ErrInvalidArgument
		}
	}
	now := time.Now().UTC()
	r := &model.Reminder{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Enabled:   true,
		Timezone:  timezone,
		TimeHHMM:  timeHHMM,
		Weekdays:  weekdays,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.reminders.Save(ctx, nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (u *reminderUC) Update(ctx context.Context, userID, reminderID string, enabled *bool, timeHHMM *string, weekdays []int, timezone *string) (*model.Reminder, error) {
	r, err := u.reminders.FindByID(ctx, nil, reminderID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if enabled != nil {
		r.Enabled = *enabled
	}
	if timeHHMM != nil {
		if _, _, err := model.ParseHHMM(*timeHHMM); err != nil {
			return nil, err
		}
		r.TimeHHMM = *timeHHMM
	}
	if weekdays != nil {
		if !validWeekdays(weekdays) {
			return nil, domain.ErrInvalidArgument
		}
		r.Weekdays = weekdays
	}
	if timezone != nil {
		if *timezone != "" {
			if _, err := time.LoadLocation(*timezone); err != nil {
				return nil, domain.ErrInvalidArgument
			}
		}
		r.Timezone = *timezone
	}
	r.UpdatedAt = time.Now().UTC()
	if err := u.reminders.Save(ctx, nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (u *reminderUC) Delete(ctx context.Context, userID, reminderID string) error {
	r, err := u.reminders.FindByID(ctx, nil, reminderID)
	if err != nil {
		return err
	}
	if r.UserID != userID {
		return domain.ErrForbidden
	}
	return u.reminders.Delete(ctx, nil, reminderID)
}

func (u *reminderUC) ListByUser(ctx context.Context, userID string) ([]*model.Reminder, error) {
	return u.reminders.FindByUser(ctx, nil, userID)
}

func (u *reminderUC) RegisterToken(ctx context.Context, userID string, provider model.PushProvider, platform, token, deviceID, locale, timezone string) (*model.DevicePushToken, error) {
	if token == "" {
		return nil, domain.ErrInvalidArgument
	}
	if provider != model.PushProviderFCM && provider != model.PushProviderRuStore {
		return nil, domain.ErrInvalidArgument
	}
	t := &model.DevicePushToken{
		ID:         uuid.NewString(),
		UserID:     userID,
		Provider:   provider,
		Platform:   platform,
		Token:      token,
		DeviceID:   deviceID,
		Locale:     locale,
		Timezone:   timezone,
		LastUsedAt: time.Now().UTC(),
	}
	if err := u.tokens.Save(ctx, nil, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *reminderUC) UnregisterToken(ctx context.Context, userID, token string) error {
	t, err := u.tokens.FindByToken(ctx, nil, token)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return domain.ErrForbidden
	}
	return u.tokens.Delete(ctx, nil, t.ID)
}

// Sweep walks every enabled reminder and delivers the ones due at now in
// their local timezone. Each delivery attempt is recorded in the push
// log; failures are retried on later sweeps up to maxPushAttempts with a
// backoff between attempts.
func (u *reminderUC) Sweep(ctx context.Context, now time.Time) (int, error) {
	reminders, err := u.reminders.FindEnabled(ctx, nil)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range reminders {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		delivered, err := u.sweepOne(ctx, r, now)
		if err != nil {
			u.log.Error().Err(err).Str("reminder_id", r.ID).Str("user_id", r.UserID).Msg("reminder sweep entry failed")
			continue
		}
		if delivered {
			sent++
		}
	}
	return sent, nil
}

func (u *reminderUC) sweepOne(ctx context.Context, r *model.Reminder, now time.Time) (bool, error) {
	user, err := u.users.FindByID(ctx, nil, r.UserID)
	if err != nil {
		return false, err
	}

	loc := user.Location()
	if r.Timezone != "" {
		if l, err := time.LoadLocation(r.Timezone); err == nil {
			loc = l
		}
	}
	nowLocal := now.In(loc)
	if !r.IsDueNow(nowLocal) {
		return false, nil
	}

	localDate := model.DayKey(now, loc)
	entry, err := u.pushLogs.GetOrCreate(ctx, nil, r.UserID, string(r.Type), localDate)
	if err != nil {
		return false, err
	}
	switch entry.Status {
	case model.PushLogStatusSent, model.PushLogStatusSkippedActivity, model.PushLogStatusSkippedNoTokens:
		return false, nil
	case model.PushLogStatusFailed:
		if entry.AttemptCount >= maxPushAttempts {
			return false, nil
		}
		if entry.LastAttemptAt != nil && now.Sub(*entry.LastAttemptAt) < pushRetryBackoff {
			return false, nil
		}
	}

	if r.Type == model.ReminderTypeStreakSave {
		active, err := u.hasActivityOn(ctx, r.UserID, nowLocal, loc)
		if err != nil {
			return false, err
		}
		if active {
			entry.Status = model.PushLogStatusSkippedActivity
			return false, u.pushLogs.Update(ctx, nil, entry)
		}
	}

	tokens, err := u.tokens.FindByUser(ctx, nil, r.UserID, maxTokensPerUser)
	if err != nil {
		return false, err
	}
	if len(tokens) == 0 {
		entry.Status = model.PushLogStatusSkippedNoTokens
		return false, u.pushLogs.Update(ctx, nil, entry)
	}

	title, body := reminderCopy(r.Type, user.Language)
	attemptAt := now.UTC()
	entry.AttemptCount++
	entry.LastAttemptAt = &attemptAt

	var lastErr error
	deliveredAny := false
	for _, t := range tokens {
		err := u.sender.Send(ctx, string(t.Provider), t.Token, title, body, map[string]string{"kind": string(r.Type)})
		if err != nil {
			lastErr = err
			continue
		}
		deliveredAny = true
	}

	if deliveredAny {
		entry.Status = model.PushLogStatusSent
		entry.LastError = ""
		metrics.IncPushSent(string(r.Type))
	} else {
		entry.Status = model.PushLogStatusFailed
		if lastErr != nil {
			entry.LastError = lastErr.Error()
		}
		metrics.IncPushFailed(string(r.Type))
	}
	if err := u.pushLogs.Update(ctx, nil, entry); err != nil {
		return deliveredAny, err
	}
	return deliveredAny, nil
}

// hasActivityOn reports whether the user completed any workout or
// meditation during the local calendar day containing nowLocal.
func (u *reminderUC) hasActivityOn(ctx context.Context, userID string, nowLocal time.Time, loc *time.Location) (bool, error) {
	dayStart := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	n, err := u.workouts.CountCompletedInRange(ctx, nil, userID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	n, err = u.meditations.CountCompletedInRange(ctx, nil, userID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func reminderCopy(typ model.ReminderType, lang string) (title, body string) {
	ru := lang == "ru"
	switch typ {
	case model.ReminderTypeWorkout:
		if ru {
			return "Время тренировки", "Ваша тренировка ждёт вас"
		}
		return "Workout time", "Your workout is waiting for you"
	case model.ReminderTypeMeditation:
		if ru {
			return "Время медитации", "Пара минут покоя пойдут на пользу"
		}
		return "Meditation time", "A few quiet minutes will do you good"
	case model.ReminderTypeWeight:
		if ru {
			return "Взвешивание", "Не забудьте записать вес"
		}
		return "Weigh-in", "Don't forget to log your weight"
	case model.ReminderTypeStreakSave:
		if ru {
			return "Серия под угрозой", "Завершите тренировку сегодня, чтобы сохранить серию"
		}
		return "Streak at risk", "Finish a workout today to keep your streak"
	}
	if ru {
		return "Напоминание", "У вас запланирована активность"
	}
	return "Reminder", "You have an activity scheduled"
}
