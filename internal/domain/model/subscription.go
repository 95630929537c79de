package model

import (
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusGrace    SubscriptionStatus = "grace"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

type SubscriptionSource string

const (
	SourceAppStore   SubscriptionSource = "appstore"
	SourceGooglePlay SubscriptionSource = "googleplay"
	SourceRuStore    SubscriptionSource = "rustore"
	SourceWeb        SubscriptionSource = "web"
	SourcePromo      SubscriptionSource = "promo"
)

// GraceWindow is the fixed extra period after ExpiresAt during which a
// lapsed subscription still grants access, to tolerate late renewal
// processing.
const GraceWindow = 30 * 24 * time.Hour

// Subscription is the single entitlement row per user (uniqueness on
// UserID). The stored Status field is advisory; ComputeStatus over
// ExpiresAt/GraceUntil is authoritative on every read.
type Subscription struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Status            SubscriptionStatus `json:"status"`
	PlanCode          string             `json:"plan_code"`
	Source            SubscriptionSource `json:"source"`
	StartedAt         time.Time          `json:"started_at"`
	ExpiresAt         time.Time          `json:"expires_at"`
	GraceUntil        *time.Time         `json:"grace_until,omitempty"`
	AutoRenew         bool               `json:"auto_renew"`
	LastTransactionID *string            `json:"last_transaction_id,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ComputeStatus derives the effective status at the given instant.
//   - no expiry recorded           -> expired
//   - now < expires_at             -> active (canceled if auto_renew off;
//     still usable, just won't renew)
//   - expires_at <= now < grace    -> grace, not active, in grace
//   - otherwise                    -> expired
func ComputeStatus(sub *Subscription, now time.Time) (status SubscriptionStatus, isActive, inGrace bool) {
	if sub == nil || sub.ExpiresAt.IsZero() {
		return SubscriptionStatusExpired, false, false
	}
	if now.Before(sub.ExpiresAt) {
		if !sub.AutoRenew {
			return SubscriptionStatusCanceled, true, false
		}
		return SubscriptionStatusActive, true, false
	}
	if sub.GraceUntil != nil && now.Before(*sub.GraceUntil) {
		return SubscriptionStatusGrace, false, true
	}
	return SubscriptionStatusExpired, false, false
}

// Extend applies the additive-stacking rule: the new expiry counts from
// the later of now and the current expiry, so renewing early never loses
// remaining paid time. AutoRenew is reset to true on every successful
// extension (a cancellation is soft).
func Extend(existing *Subscription, userID, planCode string, source SubscriptionSource, addDays int, txID *string, now time.Time) *Subscription {
	base := now
	startedAt := now

	if existing != nil && existing.ExpiresAt.After(now) {
		base = existing.ExpiresAt
		startedAt = existing.StartedAt
	}

	expiresAt := base.Add(time.Duration(addDays) * 24 * time.Hour)
	graceUntil := expiresAt.Add(GraceWindow)

	if existing != nil {
		existing.PlanCode = planCode
		existing.Source = source
		existing.StartedAt = startedAt
		existing.ExpiresAt = expiresAt
		existing.GraceUntil = &graceUntil
		existing.AutoRenew = true
		existing.LastTransactionID = txID
		existing.Status = SubscriptionStatusActive
		existing.UpdatedAt = now
		return existing
	}

	return &Subscription{
		UserID:            userID,
		Status:            SubscriptionStatusActive,
		PlanCode:          planCode,
		Source:            source,
		StartedAt:         startedAt,
		ExpiresAt:         expiresAt,
		GraceUntil:        &graceUntil,
		AutoRenew:         true,
		LastTransactionID: txID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// SubscriptionView is the boundary representation returned by the API:
// the record plus its computed status.
type SubscriptionView struct {
	Subscription *Subscription      `json:"subscription"`
	Status       SubscriptionStatus `json:"status"`
	IsActive     bool               `json:"is_active"`
	InGrace      bool               `json:"in_grace"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`
}

// NewSubscriptionView computes the view for sub (nil sub means "no record").
func NewSubscriptionView(sub *Subscription, now time.Time) *SubscriptionView {
	if sub == nil {
		return &SubscriptionView{Status: SubscriptionStatusExpired}
	}
	status, active, grace := ComputeStatus(sub, now)
	exp := sub.ExpiresAt
	return &SubscriptionView{
		Subscription: sub,
		Status:       status,
		IsActive:     active,
		InGrace:      grace,
		ExpiresAt:    &exp,
	}
}

// Entitlement answers "may this user download content for offline use".
// Premium (not expired) and grace both allow downloads.
type Entitlement struct {
	IsPremium   bool       `json:"is_premium"`
	InGrace     bool       `json:"in_grace"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	GraceUntil  *time.Time `json:"grace_until,omitempty"`
	CanDownload bool       `json:"can_download"`
}

// ComputeEntitlement derives the offline entitlement at the given instant.
func ComputeEntitlement(sub *Subscription, now time.Time) Entitlement {
	if sub == nil {
		return Entitlement{}
	}
	exp := sub.ExpiresAt
	out := Entitlement{ExpiresAt: &exp, GraceUntil: sub.GraceUntil}
	if exp.After(now) {
		out.IsPremium = true
		out.CanDownload = true
		return out
	}
	if sub.GraceUntil != nil && sub.GraceUntil.After(now) {
		out.InGrace = true
		out.CanDownload = true
	}
	return out
}
