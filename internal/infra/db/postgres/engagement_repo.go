package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

var _ repository.ReminderRepository = (*reminderRepo)(nil)

type reminderRepo struct {
	pool *pgxpool.Pool
}

func NewReminderRepo(pool *pgxpool.Pool) *reminderRepo {
	return &reminderRepo{pool: pool}
}

const reminderColumns = `id, user_id, type, enabled, timezone, time_hhmm, weekdays, created_at, updated_at`

func (r *reminderRepo) Save(ctx context.Context, tx repository.Tx, rem *model.Reminder) error {
	const q = `
INSERT INTO reminders (id, user_id, type, enabled, timezone, time_hhmm, weekdays, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  enabled    = EXCLUDED.enabled,
  timezone   = EXCLUDED.timezone,
  time_hhmm  = EXCLUDED.time_hhmm,
  weekdays   = EXCLUDED.weekdays,
  updated_at = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		rem.ID, rem.UserID, rem.Type, rem.Enabled, rem.Timezone, rem.TimeHHMM, rem.Weekdays, rem.CreatedAt, rem.UpdatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *reminderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Reminder, error) {
	const q = `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var rem model.Reminder
	err = row.Scan(&rem.ID, &rem.UserID, &rem.Type, &rem.Enabled, &rem.Timezone, &rem.TimeHHMM, &rem.Weekdays, &rem.CreatedAt, &rem.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &rem, nil
}

func (r *reminderRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Reminder, error) {
	const q = `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 ORDER BY created_at ASC;`
	return r.query(ctx, tx, q, userID)
}

func (r *reminderRepo) FindEnabled(ctx context.Context, tx repository.Tx) ([]*model.Reminder, error) {
	const q = `SELECT ` + reminderColumns + ` FROM reminders WHERE enabled ORDER BY user_id;`
	return r.query(ctx, tx, q)
}

func (r *reminderRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM reminders WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reminderRepo) query(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Reminder, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Reminder
	for rows.Next() {
		rem := new(model.Reminder)
		if err := rows.Scan(&rem.ID, &rem.UserID, &rem.Type, &rem.Enabled, &rem.Timezone, &rem.TimeHHMM, &rem.Weekdays, &rem.CreatedAt, &rem.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rem)
	}
	return out, nil
}

var _ repository.PushTokenRepository = (*pushTokenRepo)(nil)

type pushTokenRepo struct {
	pool *pgxpool.Pool
}

func NewPushTokenRepo(pool *pgxpool.Pool) *pushTokenRepo {
	return &pushTokenRepo{pool: pool}
}

const pushTokenColumns = `id, user_id, provider, platform, token, device_id, locale, timezone, last_used_at`

// Save upserts on the token value, reassigning it when a device logs in
// under a different account.
func (r *pushTokenRepo) Save(ctx context.Context, tx repository.Tx, t *model.DevicePushToken) error {
	const q = `
INSERT INTO push_tokens (id, user_id, provider, platform, token, device_id, locale, timezone, last_used_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (token) DO UPDATE SET
  user_id      = EXCLUDED.user_id,
  provider     = EXCLUDED.provider,
  platform     = EXCLUDED.platform,
  device_id    = EXCLUDED.device_id,
  locale       = EXCLUDED.locale,
  timezone     = EXCLUDED.timezone,
  last_used_at = EXCLUDED.last_used_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.UserID, t.Provider, t.Platform, t.Token, t.DeviceID, t.Locale, t.Timezone, t.LastUsedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *pushTokenRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.DevicePushToken, error) {
	const q = `SELECT ` + pushTokenColumns + ` FROM push_tokens WHERE token = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, token)
	if err != nil {
		return nil, err
	}
	var t model.DevicePushToken
	err = row.Scan(&t.ID, &t.UserID, &t.Provider, &t.Platform, &t.Token, &t.DeviceID, &t.Locale, &t.Timezone, &t.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &t, nil
}

func (r *pushTokenRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.DevicePushToken, error) {
	if limit <= 0 {
		limit = 5
	}
	const q = `
SELECT ` + pushTokenColumns + `
  FROM push_tokens
 WHERE user_id = $1
 ORDER BY last_used_at DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.DevicePushToken
	for rows.Next() {
		t := new(model.DevicePushToken)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Provider, &t.Platform, &t.Token, &t.DeviceID, &t.Locale, &t.Timezone, &t.LastUsedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *pushTokenRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM push_tokens WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ repository.PushLogRepository = (*pushLogRepo)(nil)

type pushLogRepo struct {
	pool *pgxpool.Pool
}

func NewPushLogRepo(pool *pgxpool.Pool) *pushLogRepo {
	return &pushLogRepo{pool: pool}
}

const pushLogColumns = `id, user_id, kind, local_date, status, attempt_count, last_attempt_at, last_error`

// GetOrCreate inserts a pending row or returns the existing one. The
// ON CONFLICT DO NOTHING plus re-select tolerates two sweeps racing on
// the same (user, kind, local_date).
func (r *pushLogRepo) GetOrCreate(ctx context.Context, tx repository.Tx, userID, kind, localDate string) (*model.PushDeliveryLog, error) {
	const ins = `
INSERT INTO push_logs (id, user_id, kind, local_date, status, attempt_count)
VALUES ($1, $2, $3, $4, 'pending', 0)
ON CONFLICT (user_id, kind, local_date) DO NOTHING;`
	if _, err := execSQL(ctx, r.pool, tx, ins, uuid.NewString(), userID, kind, localDate); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}

	const sel = `SELECT ` + pushLogColumns + ` FROM push_logs WHERE user_id = $1 AND kind = $2 AND local_date = $3;`
	row, err := pickRow(ctx, r.pool, tx, sel, userID, kind, localDate)
	if err != nil {
		return nil, err
	}
	var l model.PushDeliveryLog
	err = row.Scan(&l.ID, &l.UserID, &l.Kind, &l.LocalDate, &l.Status, &l.AttemptCount, &l.LastAttemptAt, &l.LastError)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &l, nil
}

func (r *pushLogRepo) Update(ctx context.Context, tx repository.Tx, l *model.PushDeliveryLog) error {
	const q = `
UPDATE push_logs
   SET status = $2, attempt_count = $3, last_attempt_at = $4, last_error = $5
 WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, l.ID, l.Status, l.AttemptCount, l.LastAttemptAt, l.LastError)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ repository.AnalyticsEventRepository = (*analyticsEventRepo)(nil)

type analyticsEventRepo struct {
	pool *pgxpool.Pool
}

func NewAnalyticsEventRepo(pool *pgxpool.Pool) *analyticsEventRepo {
	return &analyticsEventRepo{pool: pool}
}

func (r *analyticsEventRepo) InsertBatch(ctx context.Context, tx repository.Tx, events []*model.AnalyticsEvent) (int, error) {
	inserted := 0
	const q = `
INSERT INTO analytics_events (id, user_id, anonymous_id, name, ts, props, session_id)
VALUES ($1, $2, $3, $4, $5, $6, $7);`
	for _, e := range events {
		var props []byte
		if e.Props != nil {
			b, err := json.Marshal(e.Props)
			if err != nil {
				continue
			}
			props = b
		}
		if _, err := execSQL(ctx, r.pool, tx, q, e.ID, e.UserID, e.AnonymousID, e.Name, e.TS, props, e.SessionID); err != nil {
			if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
				return inserted, err
			}
			continue
		}
		inserted++
	}
	return inserted, nil
}

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT id, timezone, language, created_at FROM users WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := row.Scan(&u.ID, &u.Timezone, &u.Language, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &u, nil
}
