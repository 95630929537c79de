package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")

	// Store-level errors repositories map driver failures onto.
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// ErrLockHeld reports a distributed lock already held elsewhere.
	ErrLockHeld = errors.New("lock already held")

	// ErrRateLimited reports a throttled request.
	ErrRateLimited = errors.New("rate limited")
)

// BusinessError is a user-visible rule violation with a stable code.
// Status carries the HTTP status the API layer writes; zero means 400.
// Nothing inside the core retries these.
type BusinessError struct {
	Code    string
	Message string
	Status  int
}

func (e *BusinessError) Error() string { return e.Message }

func NewBusinessError(code, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message}
}

// AsBusinessError unwraps err into a *BusinessError if it is one.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// Promo/subscription business errors. Codes are part of the API contract.
var (
	ErrPromoInvalidCode     = NewBusinessError("invalid_code", "invalid promo code")
	ErrPromoDisabled        = NewBusinessError("disabled", "promo code disabled")
	ErrPromoExpired         = NewBusinessError("expired", "promo code expired")
	ErrPromoInvalidDuration = NewBusinessError("invalid_duration", "promo code invalid duration")
	ErrPromoAlreadyRedeemed = NewBusinessError("already_redeemed", "promo code already used")
	ErrPromoLimitReached    = NewBusinessError("limit_reached", "promo code limit reached or expired")
	ErrPlanNotFound         = &BusinessError{Code: "plan_not_found", Message: "plan not found", Status: 404}
	ErrTransactionNotFound  = &BusinessError{Code: "transaction_not_found", Message: "transaction not found", Status: 404}
)
