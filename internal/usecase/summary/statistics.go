package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// Period selects the window Statistics looks at
type Period string

const (
	PeriodAll   Period = ""
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod validates a period coming from the outside. "all" and "" mean no window.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodAll, "all":
		return PeriodAll, nil
	case PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s), nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", domain.ErrInvalidInput, s)
	}
}

// Window returns how far back the period reaches; ok is false for all-time
func (p Period) Window() (d time.Duration, ok bool) {
	const day = 24 * time.Hour
	switch p {
	case PeriodWeek:
		return 7 * day, true
	case PeriodMonth:
		return 30 * day, true
	case PeriodYear:
		return 365 * day, true
	default:
		return 0, false
	}
}

// StatisticsResult represents deposit and withdrawal statistics for a period
type StatisticsResult struct {
	Period            Period
	Since             *time.Time // Nil for all-time
	TotalDeposits     domain.Money
	TotalWithdrawals  domain.Money
	NetSavings        domain.Money
	DepositCount      int
	WithdrawalCount   int
	AverageDeposit    domain.Money // Zero when there are no deposits
	AverageWithdrawal domain.Money // Zero when there are no withdrawals
	LargestDeposit    *domain.Entry
	LargestWithdrawal *domain.Entry
}

// Statistics calculates deposit and withdrawal statistics of ownerID for a period
// Logic:
//  1. Keep live deposits and withdrawals created at or after now - window
//  2. Totals and counts per kind
//  3. Averages are total / count, 0 when count is 0
//  4. Largest entry per kind, the earliest one wins a tie
func (s *SummaryService) Statistics(ctx context.Context, ownerID uuid.UUID, now time.Time, period Period) (*StatisticsResult, error) {
	if _, err := ParsePeriod(string(period)); err != nil {
		return nil, err
	}

	snap, err := domain.ReadSnapshot(ctx, s.Store, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	return ComputeStatistics(snap, period), nil
}

// ComputeStatistics computes statistics from an already loaded snapshot
func ComputeStatistics(snap *domain.Snapshot, period Period) *StatisticsResult {
	result := &StatisticsResult{
		Period:            period,
		TotalDeposits:     domain.ZeroMoney,
		TotalWithdrawals:  domain.ZeroMoney,
		AverageDeposit:    domain.ZeroMoney,
		AverageWithdrawal: domain.ZeroMoney,
	}

	var since time.Time
	if window, ok := period.Window(); ok {
		since = snap.TakenAt.Add(-window)
		result.Since = &since
	}

	// Oldest first so the earliest entry wins ties for largest
	live := newestFirst(snap.LiveEntries())
	for i := len(live) - 1; i >= 0; i-- {
		e := live[i]
		if result.Since != nil && e.CreatedAt.Before(since) {
			continue
		}
		switch e.Kind {
		case domain.EntryKindDeposit:
			result.TotalDeposits = result.TotalDeposits.Add(e.Amount)
			result.DepositCount++
			if result.LargestDeposit == nil || e.Amount.GreaterThan(result.LargestDeposit.Amount) {
				result.LargestDeposit = e
			}
		case domain.EntryKindWithdrawal:
			result.TotalWithdrawals = result.TotalWithdrawals.Add(e.Amount)
			result.WithdrawalCount++
			if result.LargestWithdrawal == nil || e.Amount.GreaterThan(result.LargestWithdrawal.Amount) {
				result.LargestWithdrawal = e
			}
		}
	}

	result.NetSavings = result.TotalDeposits.Sub(result.TotalWithdrawals)
	result.AverageDeposit = result.TotalDeposits.DivInt(result.DepositCount)
	result.AverageWithdrawal = result.TotalWithdrawals.DivInt(result.WithdrawalCount)

	return result
}
