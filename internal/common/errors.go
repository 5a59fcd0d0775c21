// Package common defines shared constants and sentinel errors used across
// paylink components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Identity / authorization errors.
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrAnonymousCaller = errors.New("anonymous caller")
	ErrAccountNotFound = errors.New("account not found")
	ErrNotAParticipant = errors.New("caller is not a chat participant")

	// Not-found / state errors.
	ErrChatNotFound           = errors.New("chat not found")
	ErrBusinessNotFound       = errors.New("business not found")
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrRequestPaymentNotFound = errors.New("payment request not found")

	// ErrInvalidPayID rejects aliases that do not survive sanitization.
	ErrInvalidPayID = errors.New("invalid pay id")

	// ErrInvalidAmount rejects missing or non-positive payment amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrRequestExpired rejects settlement of a payment request past its
	// expiry, evaluated at the moment of recording.
	ErrRequestExpired = errors.New("payment request expired")

	// Conflict errors. Terminal for the caller, never retried.
	ErrAccountExists            = errors.New("account already exists")
	ErrPayIDExists              = errors.New("pay id already taken")
	ErrAlreadyRecorded          = errors.New("transfer already recorded")
	ErrCallerAndParticipantSame = errors.New("caller and participant are the same account")

	// ErrRecordFailed is the fallback for unexpected verification states
	// in the transfer-recording paths.
	ErrRecordFailed = errors.New("failed to record transfer")
)

// Match targets for the payload-carrying error types below.
var (
	ErrInterCanisterCall    = errors.New("ledger call failed")
	ErrInvalidTransaction   = errors.New("invalid transaction")
	ErrBothAccountsNotFound = errors.New("neither transfer party has an account")
)

// InterCanisterCallError reports a failure of the outbound ledger
// verification call itself (transport, timeout, unexpected response).
// No state is committed when it is returned, so the caller may retry.
type InterCanisterCallError struct {
	Detail string
	Err    error
}

func (e *InterCanisterCallError) Error() string {
	return fmt.Sprintf("ledger call failed: %s", e.Detail)
}

func (e *InterCanisterCallError) Is(target error) bool { return target == ErrInterCanisterCall }

func (e *InterCanisterCallError) Unwrap() error { return e.Err }

// InvalidTransactionError reports that the ledger's authoritative record of
// a transfer does not match the caller's claim. Terminal for this transfer id.
type InvalidTransactionError struct {
	Detail string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction: %s", e.Detail)
}

func (e *InvalidTransactionError) Is(target error) bool { return target == ErrInvalidTransaction }

// BothAccountsNotFoundError reports a verified transfer between two
// principals neither of which has an account here. Indicates a stale or
// foreign transfer id.
type BothAccountsNotFoundError struct {
	From string
	To   string
}

func (e *BothAccountsNotFoundError) Error() string {
	return fmt.Sprintf("neither transfer party has an account (from=%s to=%s)", e.From, e.To)
}

func (e *BothAccountsNotFoundError) Is(target error) bool { return target == ErrBothAccountsNotFound }
