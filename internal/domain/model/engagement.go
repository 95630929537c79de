package model

import (
	"strconv"
	"strings"
	"time"

	"prime-fitness-backend/internal/domain"
)

type ReminderType string

const (
	ReminderTypeWorkout    ReminderType = "workout"
	ReminderTypeMeditation ReminderType = "meditation"
	ReminderTypeWeight     ReminderType = "weight"
	ReminderTypeStreakSave ReminderType = "streak_save"
)

// Reminder is a user's scheduled push reminder. TimeHHMM and Weekdays are
// interpreted in the reminder's timezone (falling back to the user's).
type Reminder struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Type      ReminderType `json:"type"`
	Enabled   bool         `json:"enabled"`
	Timezone  string       `json:"timezone,omitempty"`
	TimeHHMM  string       `json:"time_hhmm"`
	Weekdays  []int        `json:"weekdays"` // 1=Mon..7=Sun; empty = every day
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ParseHHMM parses "HH:MM" into hour and minute.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, domain.ErrInvalidArgument
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, domain.ErrInvalidArgument
	}
	return h, m, nil
}

// WeekdayMatches reports whether nowLocal's weekday is in weekdays
// (ISO numbering, 1=Monday). An empty list matches every day.
func WeekdayMatches(weekdays []int, nowLocal time.Time) bool {
	if len(weekdays) == 0 {
		return true
	}
	iso := int(nowLocal.Weekday())
	if iso == 0 {
		iso = 7 // Sunday
	}
	for _, d := range weekdays {
		if d == iso {
			return true
		}
	}
	return false
}

// IsDueNow reports whether the reminder fires in the two-minute window
// starting at its local HH:MM on a matching weekday.
func (r *Reminder) IsDueNow(nowLocal time.Time) bool {
	h, m, err := ParseHHMM(r.TimeHHMM)
	if err != nil {
		return false
	}
	if !WeekdayMatches(r.Weekdays, nowLocal) {
		return false
	}
	due := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), h, m, 0, 0, nowLocal.Location())
	return !nowLocal.Before(due) && nowLocal.Before(due.Add(2*time.Minute))
}

type PushProvider string

const (
	PushProviderFCM     PushProvider = "fcm"
	PushProviderRuStore PushProvider = "rustore"
)

// DevicePushToken is one registered device token; the token string itself
// is the unique key, re-registering moves it to the new user.
type DevicePushToken struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	Provider   PushProvider `json:"provider"`
	Platform   string       `json:"platform"` // ios|android
	Token      string       `json:"token"`
	DeviceID   string       `json:"device_id,omitempty"`
	Locale     string       `json:"locale,omitempty"`
	Timezone   string       `json:"timezone,omitempty"`
	LastUsedAt time.Time    `json:"last_used_at"`
}

type PushLogStatus string

const (
	PushLogStatusPending         PushLogStatus = "pending"
	PushLogStatusSent            PushLogStatus = "sent"
	PushLogStatusFailed          PushLogStatus = "failed"
	PushLogStatusSkippedActivity PushLogStatus = "skipped_has_activity"
	PushLogStatusSkippedNoTokens PushLogStatus = "skipped_no_tokens"
)

// PushDeliveryLog dedupes sends: one row per (user, kind, local date),
// enforced by a uniqueness constraint so a sweep never sends twice.
type PushDeliveryLog struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Kind          string        `json:"kind"`
	LocalDate     string        `json:"local_date"` // YYYY-MM-DD in the user's timezone
	Status        PushLogStatus `json:"status"`
	AttemptCount  int           `json:"attempt_count"`
	LastAttemptAt *time.Time    `json:"last_attempt_at,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
}

// AnalyticsEvent is a fire-and-forget ingested client event.
type AnalyticsEvent struct {
	ID          string                 `json:"id"`
	UserID      *string                `json:"user_id,omitempty"`
	AnonymousID string                 `json:"anonymous_id,omitempty"`
	Name        string                 `json:"name"`
	TS          time.Time              `json:"ts"`
	Props       map[string]interface{} `json:"props,omitempty"`
	SessionID   string                 `json:"session_id,omitempty"`
}
