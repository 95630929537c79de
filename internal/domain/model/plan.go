package model

import (
	"strings"
	"time"

	"prime-fitness-backend/internal/domain"
)

type PlanStatus string

const (
	PlanStatusActive  PlanStatus = "active"
	PlanStatusRetired PlanStatus = "retired"
)

// PlanPrice is one currency's price point for a plan.
type PlanPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// SubscriptionPlan is an immutable catalog entry. Created by admin tooling,
// rarely mutated. Code is the unique key.
type SubscriptionPlan struct {
	ID           string               `json:"id"`
	Code         string               `json:"code"`
	DurationDays int                  `json:"duration_days"`
	Prices       map[string]PlanPrice `json:"prices"`
	Status       PlanStatus           `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
}

func (p *SubscriptionPlan) IsZero() bool { return p == nil || p.ID == "" }

// NewSubscriptionPlan validates and constructs a plan.
func NewSubscriptionPlan(id, code string, durationDays int, prices map[string]PlanPrice) (*SubscriptionPlan, error) {
	code = strings.TrimSpace(code)
	if id == "" || code == "" || durationDays <= 0 || durationDays > 3650 {
		return nil, domain.ErrInvalidArgument
	}
	if prices == nil {
		prices = map[string]PlanPrice{}
	}
	return &SubscriptionPlan{
		ID:           id,
		Code:         code,
		DurationDays: durationDays,
		Prices:       prices,
		Status:       PlanStatusActive,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
