package model

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"prime-fitness-backend/internal/domain"
)

type PromoStatus string

const (
	PromoStatusActive   PromoStatus = "active"
	PromoStatusDisabled PromoStatus = "disabled"
)

// PromoCode grants DurationDays of subscription per redemption, up to
// MaxUses redemptions total. UsedCount is monotonically increasing and is
// the one field under concurrent-write contention: all mutation goes
// through the repository's Claim/Rollback pair, never a plain save.
type PromoCode struct {
	ID           string      `json:"id"`
	BatchID      *string     `json:"batch_id,omitempty"`
	Code         string      `json:"code"`
	DurationDays int         `json:"duration_days"`
	MaxUses      int         `json:"max_uses"`
	UsedCount    int         `json:"used_count"`
	ExpiresAt    *time.Time  `json:"expires_at,omitempty"`
	Status       PromoStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewPromoCode validates and constructs a promo code with zero uses.
func NewPromoCode(id, code string, durationDays, maxUses int, expiresAt *time.Time) (*PromoCode, error) {
	code = NormalizeCode(code)
	if id == "" || code == "" {
		return nil, domain.ErrInvalidArgument
	}
	if durationDays < 1 || durationDays > 3650 || maxUses < 1 {
		return nil, domain.ErrInvalidArgument
	}
	return &PromoCode{
		ID:           id,
		Code:         code,
		DurationDays: durationDays,
		MaxUses:      maxUses,
		UsedCount:    0,
		ExpiresAt:    expiresAt,
		Status:       PromoStatusActive,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// PromoBatch groups generated codes for admin bookkeeping.
type PromoBatch struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DurationDays   int       `json:"duration_days"`
	MaxUsesPerCode int       `json:"max_uses_per_code"`
	CodesCount     int       `json:"codes_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// PromoRedemption is the ledger row enforcing one redemption per
// (user, promo code) pair. Created once; deleted only on rollback.
type PromoRedemption struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	PromoCodeID   string    `json:"promo_code_id"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}

// NormalizeCode uppercases and trims a user-supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCode returns a random code of the given length over A-Z0-9.
func RandomCode(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform source is broken
			b[i] = codeAlphabet[0]
			continue
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b)
}
