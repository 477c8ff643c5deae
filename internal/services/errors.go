package services

import "errors"

// Error taxonomy for the settlement engine. Handlers map these onto the HTTP
// envelope; everything else surfaces as a 500-class internal error.
var (
	// ErrValidation covers missing or malformed input. No side effects were
	// attempted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers a referenced transaction, user, bet or obligation
	// that does not exist. Nothing was mutated.
	ErrNotFound = errors.New("record not found")

	// Withdrawal denial reasons. Exactly one is surfaced per denial, in the
	// guard's priority order.
	ErrKycRequired         = errors.New("kyc verification required")
	ErrAccountInactive     = errors.New("account is not active")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTurnoverPending     = errors.New("pending turnover requirement")

	// ErrConcurrencyConflict signals a lost update on an obligation or ledger
	// row. The caller retries the whole operation, never a single step.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")

	// ErrInvariantViolation signals corrupted money state (negative remaining
	// turnover, missing conversion rate, inverted commission split). The
	// operation aborts; it must never clamp and continue.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)
