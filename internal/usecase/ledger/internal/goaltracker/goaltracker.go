// Package goaltracker owns goal progress and achievement state.
// Only the ledger coordinator may import it.
package goaltracker

import (
	"fmt"
	"time"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// AddProgress increases the goal's current amount and recomputes achievement
func AddProgress(g *domain.Goal, amount domain.Money, now time.Time) (domain.Money, error) {
	if !amount.IsPositive() {
		return g.CurrentAmount, fmt.Errorf("add progress: %w", domain.ErrNonPositiveAmount)
	}

	next := g.CurrentAmount.Add(amount)
	if !next.InRange() {
		return g.CurrentAmount, fmt.Errorf("%w: goal progress would exceed %s", domain.ErrInvalidAmount, domain.MaxMoney)
	}

	g.CurrentAmount = next
	recompute(g, now)

	return g.CurrentAmount, nil
}

// RemoveProgress decreases the current amount by min(amount, current) and
// recomputes achievement, which may flip back to false.
// Returns the amount actually removed.
func RemoveProgress(g *domain.Goal, amount domain.Money, now time.Time) (domain.Money, error) {
	if !amount.IsPositive() {
		return domain.ZeroMoney, fmt.Errorf("remove progress: %w", domain.ErrNonPositiveAmount)
	}

	removed := domain.MinMoney(amount, g.CurrentAmount)
	g.CurrentAmount = g.CurrentAmount.Sub(removed)
	recompute(g, now)

	return removed, nil
}

// SetTarget changes the target amount; achievement follows the new target
func SetTarget(g *domain.Goal, target domain.Money, now time.Time) error {
	if !target.IsPositive() {
		return fmt.Errorf("goal target: %w", domain.ErrNonPositiveAmount)
	}

	g.TargetAmount = target
	recompute(g, now)

	return nil
}

// SetPeriod changes the period and shifts the deadline relative to the start date
func SetPeriod(g *domain.Goal, periodDays int, now time.Time) error {
	if periodDays < 1 {
		return fmt.Errorf("%w: goal period must be at least one day", domain.ErrInvalidInput)
	}

	g.PeriodDays = periodDays
	g.EndDate = domain.EndDateFor(g.StartDate, periodDays)
	g.UpdatedAt = now

	return nil
}

func recompute(g *domain.Goal, now time.Time) {
	g.Achieved = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	g.UpdatedAt = now
}
