// Package summary aggregates an owner's transaction log into totals,
// statistics and reconciliation reports. It never changes state.
package summary

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// DefaultMonths is the length of the monthly breakdown when the caller gives none
const DefaultMonths = 6

// recentEntries is how many entries a summary lists
const recentEntries = 5

// MonthTotals represents the deposits and withdrawals of one calendar month
type MonthTotals struct {
	Month       string // YYYY-MM
	Start       time.Time
	Deposits    domain.Money
	Withdrawals domain.Money
	Net         domain.Money
}

// SummaryResult represents the overview of an owner's savings activity
type SummaryResult struct {
	TotalDeposits          domain.Money
	TotalWithdrawals       domain.Money
	TotalGoalContributions domain.Money
	TotalTransfers         domain.Money
	CurrentBalance         domain.Money // Sum of live wallet balances
	NetSavings             domain.Money // Deposits - withdrawals
	RecentEntries          []*domain.Entry
	Monthly                []MonthTotals // Oldest month first
}

// SummaryService handles read-only aggregation over the transaction log
type SummaryService struct {
	Store domain.Store
}

// NewSummaryService creates a new SummaryService instance
func NewSummaryService(store domain.Store) *SummaryService {
	return &SummaryService{Store: store}
}

// Summary calculates the savings overview of ownerID
// Logic:
//   - Totals: sum of live entries by kind
//   - Current balance: sum of the balances of live wallets
//   - Net savings: deposits - withdrawals
//   - Monthly: for each of the trailing months ending with the month of now,
//     deposits and withdrawals created in [month_start, next_month_start)
func (s *SummaryService) Summary(ctx context.Context, ownerID uuid.UUID, now time.Time, months int) (*SummaryResult, error) {
	if months < 0 {
		return nil, fmt.Errorf("%w: months cannot be negative", domain.ErrInvalidInput)
	}
	if months == 0 {
		months = DefaultMonths
	}

	snap, err := domain.ReadSnapshot(ctx, s.Store, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	return Summarize(snap, months), nil
}

// Summarize computes a SummaryResult from an already loaded snapshot
func Summarize(snap *domain.Snapshot, months int) *SummaryResult {
	live := snap.LiveEntries()
	totals := totalsByKind(live)

	result := &SummaryResult{
		TotalDeposits:          totals[domain.EntryKindDeposit],
		TotalWithdrawals:       totals[domain.EntryKindWithdrawal],
		TotalGoalContributions: totals[domain.EntryKindGoalContribution],
		TotalTransfers:         totals[domain.EntryKindTransfer],
		CurrentBalance:         liveBalance(snap.Wallets),
	}
	result.NetSavings = result.TotalDeposits.Sub(result.TotalWithdrawals)

	recent := newestFirst(live)
	if len(recent) > recentEntries {
		recent = recent[:recentEntries]
	}
	result.RecentEntries = recent

	result.Monthly = monthlyBreakdown(live, snap.TakenAt, months)

	return result
}

func totalsByKind(entries []*domain.Entry) map[domain.EntryKind]domain.Money {
	totals := make(map[domain.EntryKind]domain.Money, len(domain.EntryKinds))
	for _, kind := range domain.EntryKinds {
		totals[kind] = domain.ZeroMoney
	}
	for _, e := range entries {
		totals[e.Kind] = totals[e.Kind].Add(e.Amount)
	}
	return totals
}

func liveBalance(wallets []*domain.Wallet) domain.Money {
	total := domain.ZeroMoney
	for _, w := range wallets {
		if !w.IsDeleted() {
			total = total.Add(w.Balance)
		}
	}
	return total
}

func newestFirst(entries []*domain.Entry) []*domain.Entry {
	sorted := make([]*domain.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// monthStart returns the first instant of t's calendar month in t's location
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func monthlyBreakdown(entries []*domain.Entry, now time.Time, months int) []MonthTotals {
	current := monthStart(now)
	breakdown := make([]MonthTotals, 0, months)

	for i := months - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		month := MonthTotals{
			Month:       start.Format("2006-01"),
			Start:       start,
			Deposits:    domain.ZeroMoney,
			Withdrawals: domain.ZeroMoney,
		}
		for _, e := range entries {
			created := e.CreatedAt.In(now.Location())
			if created.Before(start) || !created.Before(end) {
				continue
			}
			switch e.Kind {
			case domain.EntryKindDeposit:
				month.Deposits = month.Deposits.Add(e.Amount)
			case domain.EntryKindWithdrawal:
				month.Withdrawals = month.Withdrawals.Add(e.Amount)
			}
		}
		month.Net = month.Deposits.Sub(month.Withdrawals)

		breakdown = append(breakdown, month)
	}

	return breakdown
}
