package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the ledger. Callers match them with errors.Is;
// operations wrap them with context using fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidAmount is returned for non-numeric, zero or negative amounts
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNonPositiveAmount is returned when a strictly positive amount is required
	ErrNonPositiveAmount = fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)

	// ErrInsufficientFunds is returned when a withdrawal or contribution exceeds the wallet balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound is returned when a wallet, goal or entry is absent or not owned by the caller
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned on ownership mismatch
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIrreversibleState is returned when a reversal would drive a balance negative
	ErrIrreversibleState = errors.New("irreversible state")

	// ErrInvalidTransition is returned for illegal entry state transitions
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrStorageFailure wraps every failure coming from the persistence layer
	ErrStorageFailure = errors.New("storage failure")

	// ErrInvalidInput is returned for malformed non-monetary input (names, periods, ids)
	ErrInvalidInput = errors.New("invalid input")

	// ErrReferenced is returned when deleting an entity that live ledger entries still reference
	ErrReferenced = errors.New("referenced by ledger entries")
)

// ownershipError reports an ownership mismatch as NotFound to the caller while
// still matching ErrUnauthorized, so existence is not leaked across users.
type ownershipError struct {
	what string
}

func (e *ownershipError) Error() string {
	return e.what + " not found"
}

func (e *ownershipError) Is(target error) bool {
	return target == ErrNotFound || target == ErrUnauthorized
}

// NotOwned returns an error for an entity that exists but belongs to another user
func NotOwned(what string) error {
	return &ownershipError{what: what}
}

// StorageError wraps err as ErrStorageFailure unless it already carries a domain error kind
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}

func isDomainError(err error) bool {
	for _, kind := range []error{
		ErrInvalidAmount,
		ErrInsufficientFunds,
		ErrNotFound,
		ErrUnauthorized,
		ErrIrreversibleState,
		ErrInvalidTransition,
		ErrStorageFailure,
		ErrInvalidInput,
		ErrReferenced,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
