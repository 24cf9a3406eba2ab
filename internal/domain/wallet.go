package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength bounds wallet and goal names
const MaxNameLength = 100

// Wallet represents a user's named cash balance.
// Balance is changed only by the ledger coordinator, always paired with a log entry.
type Wallet struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Balance   Money // Never negative
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // Soft delete, history keeps referencing the wallet
}

// Validate ensures the wallet adheres to domain rules
// Returns an error if validation fails
func (w *Wallet) Validate() error {
	if w.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: wallet must have an owner", ErrInvalidInput)
	}

	if _, err := NormalizeName(w.Name, "wallet name"); err != nil {
		return err
	}

	if w.Balance.IsNegative() {
		return errors.New("wallet balance cannot be negative")
	}

	return nil
}

// IsDeleted reports whether the wallet was soft deleted
func (w *Wallet) IsDeleted() bool {
	return w.DeletedAt != nil
}

// OwnedBy reports whether the wallet belongs to ownerID
func (w *Wallet) OwnedBy(ownerID uuid.UUID) bool {
	return w.OwnerID == ownerID
}

// NormalizeName trims a display name and checks its length (1..MaxNameLength runes)
func NormalizeName(name, field string) (string, error) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n == 0 {
		return "", fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, field)
	}
	if n > MaxNameLength {
		return "", fmt.Errorf("%w: %s cannot exceed %d characters", ErrInvalidInput, field, MaxNameLength)
	}
	return trimmed, nil
}

// MaxDescriptionLength bounds free-text descriptions on wallets, goals and entries
const MaxDescriptionLength = 500

// NormalizeDescription trims an optional description and checks its length
func NormalizeDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	if utf8.RuneCountInString(trimmed) > MaxDescriptionLength {
		return "", fmt.Errorf("%w: description cannot exceed %d characters", ErrInvalidInput, MaxDescriptionLength)
	}
	return trimmed, nil
}
