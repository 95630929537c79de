package model

import (
	"time"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusVerified TransactionStatus = "verified"
	TransactionStatusFailed   TransactionStatus = "failed"
)

// StoreInfo is the free-form provider blob attached to a transaction.
// Status transitions once from pending to a terminal state; verification
// replays against a verified transaction return the existing result.
type StoreInfo struct {
	Status       TransactionStatus      `json:"status"`
	Provider     string                 `json:"provider,omitempty"`
	ProviderTxID string                 `json:"provider_tx_id,omitempty"`
	Receipt      map[string]interface{} `json:"receipt,omitempty"`
	Error        string                 `json:"error,omitempty"`
	VerifiedAt   *time.Time             `json:"verified_at,omitempty"`
	UpdatedAt    *time.Time             `json:"updated_at,omitempty"`
}

// PromoInfo is set when the transaction was sourced from a promo code.
type PromoInfo struct {
	Code         string `json:"code,omitempty"`
	PromoCodeID  string `json:"promo_code_id,omitempty"`
	DurationDays int    `json:"duration_days,omitempty"`
}

// SubscriptionTransaction is an append-only intent record. Rows are created
// pending, transition once to verified or failed, and are deleted only by
// the redemption orchestrator's compensation path.
type SubscriptionTransaction struct {
	ID        string             `json:"id"` // ULID: sortable, append-only friendly
	UserID    string             `json:"user_id"`
	Source    SubscriptionSource `json:"source"`
	PlanCode  string             `json:"plan_code"`
	Amount    *float64           `json:"amount,omitempty"`
	Currency  *string            `json:"currency,omitempty"`
	Store     StoreInfo          `json:"store"`
	Promo     *PromoInfo         `json:"promo,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
