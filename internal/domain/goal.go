package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// Goal represents a savings target with a deadline derived from a period
type Goal struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	Description   string
	TargetAmount  Money
	CurrentAmount Money // Sum of live goal_contribution entries
	PeriodDays    int
	StartDate     time.Time
	EndDate       *time.Time // StartDate + PeriodDays
	Achieved      bool       // Always CurrentAmount >= TargetAmount
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time // Soft delete, contributions keep referencing the goal
}

// Validate ensures the goal adheres to domain rules
// Returns an error if validation fails
func (g *Goal) Validate() error {
	if g.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: goal must have an owner", ErrInvalidInput)
	}

	if _, err := NormalizeName(g.Name, "goal name"); err != nil {
		return err
	}

	if !g.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: goal target", ErrNonPositiveAmount)
	}

	if g.CurrentAmount.IsNegative() {
		return errors.New("goal current amount cannot be negative")
	}

	if g.PeriodDays < 1 {
		return fmt.Errorf("%w: goal period must be at least one day", ErrInvalidInput)
	}

	if g.Achieved != g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		return errors.New("goal achieved flag does not match its progress")
	}

	return nil
}

// EndDateFor derives a goal deadline from its start date and period
func EndDateFor(start time.Time, periodDays int) *time.Time {
	end := start.Add(time.Duration(periodDays) * day)
	return &end
}

// IsDeleted reports whether the goal was soft deleted
func (g *Goal) IsDeleted() bool {
	return g.DeletedAt != nil
}

// OwnedBy reports whether the goal belongs to ownerID
func (g *Goal) OwnedBy(ownerID uuid.UUID) bool {
	return g.OwnerID == ownerID
}

// ProgressPercentage returns CurrentAmount / TargetAmount * 100.
// It is not clamped and exceeds 100 for overfunded goals.
func (g *Goal) ProgressPercentage() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	pct := g.CurrentAmount.Decimal().
		Div(g.TargetAmount.Decimal()).
		Mul(decimal.NewFromInt(100))
	f, _ := pct.Float64()
	return f
}

// RemainingAmount returns how much is still missing to reach the target, never negative
func (g *Goal) RemainingAmount() Money {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		return ZeroMoney
	}
	return remaining
}

// IsExpired reports now > EndDate. Goals without a deadline never expire.
func (g *Goal) IsExpired(now time.Time) bool {
	if g.EndDate == nil {
		return false
	}
	return now.After(*g.EndDate)
}

// DaysRemaining returns the whole days left until EndDate, floored at zero.
// ok is false when the goal has no deadline.
func (g *Goal) DaysRemaining(now time.Time) (days int, ok bool) {
	if g.EndDate == nil {
		return 0, false
	}
	remaining := g.EndDate.Sub(now)
	if remaining <= 0 {
		return 0, true
	}
	return int(remaining / day), true
}

// DailySavingsNeeded spreads the remaining amount over the days left.
// A goal due today counts as one day; overdue is true once the deadline has passed.
func (g *Goal) DailySavingsNeeded(now time.Time) (daily Money, overdue bool) {
	if g.IsExpired(now) {
		return ZeroMoney, true
	}
	days, ok := g.DaysRemaining(now)
	if !ok {
		return ZeroMoney, false
	}
	if days == 0 {
		days = 1
	}
	return g.RemainingAmount().DivInt(days), false
}
