// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

// passthroughTxManager runs the callback without a real transaction; the
// in-memory repositories ignore the tx handle anyway.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// In-memory repositories for use-case tests. Each mirrors the contract of
// its Postgres counterpart, including the uniqueness and conditional-update
// semantics the orchestrator depends on. Optional *Fn fields override
// single methods to inject failures.

type memPromoRepo struct {
	mu     sync.Mutex
	byCode map[string]*model.PromoCode

	claimFn    func(ctx context.Context, code string, now time.Time) (*model.PromoCode, error)
	rollbackFn func(ctx context.Context, code string) error
}

func newMemPromoRepo() *memPromoRepo {
	return &memPromoRepo{byCode: map[string]*model.PromoCode{}}
}

func (r *memPromoRepo) Save(_ context.Context, _ repository.Tx, promo *model.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byCode[promo.Code]; ok && existing.ID != promo.ID {
		return domain.ErrAlreadyExists
	}
	cp := *promo
	r.byCode[promo.Code] = &cp
	return nil
}

func (r *memPromoRepo) FindByCode(_ context.Context, _ repository.Tx, code string) (*model.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	promo, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *promo
	return &cp, nil
}

func (r *memPromoRepo) List(_ context.Context, _ repository.Tx, status *model.PromoStatus, query string, offset, limit int) ([]*model.PromoCode, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PromoCode
	for _, p := range r.byCode {
		if status != nil && p.Status != *status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, len(out), nil
}

func (r *memPromoRepo) Claim(ctx context.Context, _ repository.Tx, code string, now time.Time) (*model.PromoCode, error) {
	if r.claimFn != nil {
		return r.claimFn(ctx, code, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	promo, ok := r.byCode[code]
	if !ok || promo.Status != model.PromoStatusActive || promo.UsedCount >= promo.MaxUses {
		return nil, domain.ErrNotFound
	}
	if promo.ExpiresAt != nil && !now.Before(*promo.ExpiresAt) {
		return nil, domain.ErrNotFound
	}
	promo.UsedCount++
	cp := *promo
	return &cp, nil
}

func (r *memPromoRepo) Rollback(ctx context.Context, _ repository.Tx, code string) error {
	if r.rollbackFn != nil {
		return r.rollbackFn(ctx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	promo, ok := r.byCode[code]
	if !ok || promo.UsedCount == 0 {
		return nil
	}
	promo.UsedCount--
	return nil
}

func (r *memPromoRepo) CountByBatch(_ context.Context, _ repository.Tx, batchID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.byCode {
		if p.BatchID != nil && *p.BatchID == batchID {
			n++
		}
	}
	return n, nil
}

func (r *memPromoRepo) CountAll(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byCode), nil
}

func (r *memPromoRepo) usedCount(code string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byCode[code]; ok {
		return p.UsedCount
	}
	return -1
}

type memBatchRepo struct {
	mu   sync.Mutex
	byID map[string]*model.PromoBatch
}

func newMemBatchRepo() *memBatchRepo { return &memBatchRepo{byID: map[string]*model.PromoBatch{}} }

func (r *memBatchRepo) Save(_ context.Context, _ repository.Tx, batch *model.PromoBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *batch
	r.byID[batch.ID] = &cp
	return nil
}

func (r *memBatchRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.PromoBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

type memRedemptionRepo struct {
	mu   sync.Mutex
	byID map[string]*model.PromoRedemption
	// uniq enforces the (user, promo code) constraint the way the DB does.
	uniq map[string]string // userID+"/"+promoCodeID -> redemption ID
}

func newMemRedemptionRepo() *memRedemptionRepo {
	return &memRedemptionRepo{byID: map[string]*model.PromoRedemption{}, uniq: map[string]string{}}
}

func redemptionKey(userID, promoCodeID string) string { return userID + "/" + promoCodeID }

func (r *memRedemptionRepo) Insert(_ context.Context, _ repository.Tx, red *model.PromoRedemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := redemptionKey(red.UserID, red.PromoCodeID)
	if _, ok := r.uniq[key]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *red
	r.byID[red.ID] = &cp
	r.uniq[key] = red.ID
	return nil
}

func (r *memRedemptionRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	red, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.uniq, redemptionKey(red.UserID, red.PromoCodeID))
	delete(r.byID, id)
	return nil
}

func (r *memRedemptionRepo) CountByPromoCode(_ context.Context, _ repository.Tx, promoCodeID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, red := range r.byID {
		if red.PromoCodeID == promoCodeID {
			n++
		}
	}
	return n, nil
}

func (r *memRedemptionRepo) CountByPromoCodes(ctx context.Context, tx repository.Tx, ids []string) (int, error) {
	total := 0
	for _, id := range ids {
		n, _ := r.CountByPromoCode(ctx, tx, id)
		total += n
	}
	return total, nil
}

func (r *memRedemptionRepo) CountAll(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *memRedemptionRepo) FindByUserAndPromo(_ context.Context, _ repository.Tx, userID, promoCodeID string) (*model.PromoRedemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.uniq[redemptionKey(userID, promoCodeID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

type memSubscriptionRepo struct {
	mu     sync.Mutex
	byUser map[string]*model.Subscription

	saveFn func(ctx context.Context, sub *model.Subscription) error
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{byUser: map[string]*model.Subscription{}}
}

func (r *memSubscriptionRepo) Save(ctx context.Context, _ repository.Tx, sub *model.Subscription) error {
	if r.saveFn != nil {
		return r.saveFn(ctx, sub)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	r.byUser[sub.UserID] = &cp
	return nil
}

func (r *memSubscriptionRepo) FindByUser(_ context.Context, _ repository.Tx, userID string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *memSubscriptionRepo) MarkExpiredPastGrace(_ context.Context, _ repository.Tx, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, sub := range r.byUser {
		if sub.Status != model.SubscriptionStatusExpired && sub.GraceUntil != nil && sub.GraceUntil.Before(before) {
			sub.Status = model.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

func (r *memSubscriptionRepo) CountByStatus(_ context.Context, _ repository.Tx) (map[model.SubscriptionStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.SubscriptionStatus]int{}
	for _, sub := range r.byUser {
		out[sub.Status]++
	}
	return out, nil
}

type memTxnRepo struct {
	mu   sync.Mutex
	byID map[string]*model.SubscriptionTransaction
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{byID: map[string]*model.SubscriptionTransaction{}}
}

func (r *memTxnRepo) Insert(_ context.Context, _ repository.Tx, t *model.SubscriptionTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func (r *memTxnRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.SubscriptionTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTxnRepo) UpdateStore(_ context.Context, _ repository.Tx, id string, store model.StoreInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Store = store
	return nil
}

func (r *memTxnRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memTxnRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type memPlanRepo struct {
	mu     sync.Mutex
	byCode map[string]*model.SubscriptionPlan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{byCode: map[string]*model.SubscriptionPlan{}}
}

func (r *memPlanRepo) Save(_ context.Context, _ repository.Tx, plan *model.SubscriptionPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *plan
	r.byCode[plan.Code] = &cp
	return nil
}

func (r *memPlanRepo) FindByCode(_ context.Context, _ repository.Tx, code string) (*model.SubscriptionPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (r *memPlanRepo) FindActiveByCode(ctx context.Context, tx repository.Tx, code string) (*model.SubscriptionPlan, error) {
	plan, err := r.FindByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if plan.Status != model.PlanStatusActive {
		return nil, domain.ErrNotFound
	}
	return plan, nil
}

func (r *memPlanRepo) List(_ context.Context, _ repository.Tx, status model.PlanStatus, offset, limit int) ([]*model.SubscriptionPlan, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.SubscriptionPlan
	for _, p := range r.byCode {
		if p.Status == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, len(out), nil
}

type memWorkoutRepo struct {
	mu   sync.Mutex
	byID map[string]*model.WorkoutRun
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{byID: map[string]*model.WorkoutRun{}}
}

func (r *memWorkoutRepo) Save(_ context.Context, _ repository.Tx, run *model.WorkoutRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.byID[run.ID] = &cp
	return nil
}

func (r *memWorkoutRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.WorkoutRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *memWorkoutRepo) FindCompletedByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.WorkoutRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.WorkoutRun
	for _, run := range r.byID {
		if run.UserID == userID && run.CompletedAt != nil {
			cp := *run
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(*out[j].CompletedAt) })
	return out, nil
}

func (r *memWorkoutRepo) FindCompletedInRange(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) ([]*model.WorkoutRun, error) {
	all, err := r.FindCompletedByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	var out []*model.WorkoutRun
	for _, run := range all {
		if !run.CompletedAt.Before(from) && !run.CompletedAt.After(to) {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *memWorkoutRepo) CountCompletedInRange(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) (int, error) {
	runs, err := r.FindCompletedInRange(ctx, tx, userID, from, to)
	if err != nil {
		return 0, err
	}
	return len(runs), nil
}

type memMeditationRepo struct {
	mu   sync.Mutex
	byID map[string]*model.MeditationRun
}

func newMemMeditationRepo() *memMeditationRepo {
	return &memMeditationRepo{byID: map[string]*model.MeditationRun{}}
}

func (r *memMeditationRepo) Save(_ context.Context, _ repository.Tx, run *model.MeditationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.byID[run.ID] = &cp
	return nil
}

func (r *memMeditationRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.MeditationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *memMeditationRepo) FindCompletedInRange(_ context.Context, _ repository.Tx, userID string, from, to time.Time) ([]*model.MeditationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.MeditationRun
	for _, run := range r.byID {
		if run.UserID != userID || run.CompletedAt == nil {
			continue
		}
		if !run.CompletedAt.Before(from) && !run.CompletedAt.After(to) {
			cp := *run
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(*out[j].CompletedAt) })
	return out, nil
}

func (r *memMeditationRepo) CountCompletedInRange(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) (int, error) {
	runs, err := r.FindCompletedInRange(ctx, tx, userID, from, to)
	if err != nil {
		return 0, err
	}
	return len(runs), nil
}

type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{byID: map[string]*model.User{}} }

func (r *memUserRepo) put(u *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[u.ID] = &cp
}

func (r *memUserRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type memReminderRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Reminder
}

func newMemReminderRepo() *memReminderRepo {
	return &memReminderRepo{byID: map[string]*model.Reminder{}}
}

func (r *memReminderRepo) Save(_ context.Context, _ repository.Tx, rem *model.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rem
	r.byID[rem.ID] = &cp
	return nil
}

func (r *memReminderRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rem
	return &cp, nil
}

func (r *memReminderRepo) FindByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Reminder
	for _, rem := range r.byID {
		if rem.UserID == userID {
			cp := *rem
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memReminderRepo) FindEnabled(_ context.Context, _ repository.Tx) ([]*model.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Reminder
	for _, rem := range r.byID {
		if rem.Enabled {
			cp := *rem
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memReminderRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type memPushTokenRepo struct {
	mu      sync.Mutex
	byToken map[string]*model.DevicePushToken
}

func newMemPushTokenRepo() *memPushTokenRepo {
	return &memPushTokenRepo{byToken: map[string]*model.DevicePushToken{}}
}

func (r *memPushTokenRepo) Save(_ context.Context, _ repository.Tx, t *model.DevicePushToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.byToken[t.Token] = &cp
	return nil
}

func (r *memPushTokenRepo) FindByToken(_ context.Context, _ repository.Tx, token string) (*model.DevicePushToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memPushTokenRepo) FindByUser(_ context.Context, _ repository.Tx, userID string, limit int) ([]*model.DevicePushToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.DevicePushToken
	for _, t := range r.byToken {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memPushTokenRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, t := range r.byToken {
		if t.ID == id {
			delete(r.byToken, token)
			return nil
		}
	}
	return nil
}

type memPushLogRepo struct {
	mu    sync.Mutex
	byKey map[string]*model.PushDeliveryLog
	next  int
}

func newMemPushLogRepo() *memPushLogRepo {
	return &memPushLogRepo{byKey: map[string]*model.PushDeliveryLog{}}
}

func pushLogKey(userID, kind, localDate string) string {
	return userID + "/" + kind + "/" + localDate
}

func (r *memPushLogRepo) GetOrCreate(_ context.Context, _ repository.Tx, userID, kind, localDate string) (*model.PushDeliveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pushLogKey(userID, kind, localDate)
	if entry, ok := r.byKey[key]; ok {
		cp := *entry
		return &cp, nil
	}
	r.next++
	entry := &model.PushDeliveryLog{
		ID:        key,
		UserID:    userID,
		Kind:      kind,
		LocalDate: localDate,
		Status:    model.PushLogStatusPending,
	}
	r.byKey[key] = entry
	cp := *entry
	return &cp, nil
}

func (r *memPushLogRepo) Update(_ context.Context, _ repository.Tx, log *model.PushDeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *log
	r.byKey[pushLogKey(log.UserID, log.Kind, log.LocalDate)] = &cp
	return nil
}

func (r *memPushLogRepo) get(userID, kind, localDate string) *model.PushDeliveryLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.byKey[pushLogKey(userID, kind, localDate)]; ok {
		cp := *entry
		return &cp
	}
	return nil
}

// recordingSender captures deliveries; fail makes every send error.
type recordingSender struct {
	mu   sync.Mutex
	sent []string // token values
	fail bool
}

func (s *recordingSender) Send(_ context.Context, provider, token, title, body string, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return domain.ErrOperationFailed
	}
	s.sent = append(s.sent, token)
	return nil
}

func (s *recordingSender) Name() string { return "recording" }

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
