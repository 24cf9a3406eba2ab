// Package walletledger holds the only code allowed to change a wallet balance.
// It lives under the coordinator's internal/ directory so nothing outside the
// ledger package tree can mutate a balance without also appending a log entry.
package walletledger

import (
	"fmt"
	"time"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// Deposit adds amount to the wallet balance and returns the new balance
func Deposit(w *domain.Wallet, amount domain.Money, now time.Time) (domain.Money, error) {
	if !amount.IsPositive() {
		return w.Balance, fmt.Errorf("deposit: %w", domain.ErrNonPositiveAmount)
	}

	next := w.Balance.Add(amount)
	if !next.InRange() {
		return w.Balance, fmt.Errorf("%w: deposit %s onto balance %s exceeds %s", domain.ErrInvalidAmount, amount, w.Balance, domain.MaxMoney)
	}

	w.Balance = next
	w.UpdatedAt = now

	return w.Balance, nil
}

// Withdraw removes amount from the wallet balance and returns the new balance.
// The balance never goes below zero.
func Withdraw(w *domain.Wallet, amount domain.Money, now time.Time) (domain.Money, error) {
	if !amount.IsPositive() {
		return w.Balance, fmt.Errorf("withdraw: %w", domain.ErrNonPositiveAmount)
	}

	if amount.GreaterThan(w.Balance) {
		return w.Balance, fmt.Errorf("withdraw %s from balance %s: %w", amount, w.Balance, domain.ErrInsufficientFunds)
	}

	w.Balance = w.Balance.Sub(amount)
	w.UpdatedAt = now

	return w.Balance, nil
}
