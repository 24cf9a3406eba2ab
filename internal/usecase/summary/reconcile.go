package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// WalletDrift reports a wallet whose stored balance disagrees with its log
type WalletDrift struct {
	WalletID uuid.UUID
	Name     string
	Stored   domain.Money
	Derived  domain.Money
}

// GoalDrift reports a goal whose stored progress or achieved flag disagrees with its log
type GoalDrift struct {
	GoalID          uuid.UUID
	Name            string
	Stored          domain.Money
	Derived         domain.Money
	AchievedFlagBad bool
}

// ReconcileReport is the outcome of checking an owner's stored state against the log
type ReconcileReport struct {
	OwnerID        uuid.UUID
	CheckedAt      time.Time
	WalletsChecked int
	GoalsChecked   int
	WalletDrifts   []WalletDrift
	GoalDrifts     []GoalDrift
	StoredTotal    domain.Money // Sum of every wallet balance
	DerivedTotal   domain.Money // Net of every live entry
}

// Consistent reports whether no drift was found
func (r *ReconcileReport) Consistent() bool {
	return len(r.WalletDrifts) == 0 && len(r.GoalDrifts) == 0 && r.StoredTotal.Equal(r.DerivedTotal)
}

// Reconcile loads a snapshot of ownerID and checks it
func (s *SummaryService) Reconcile(ctx context.Context, ownerID uuid.UUID, now time.Time) (*ReconcileReport, error) {
	snap, err := domain.ReadSnapshot(ctx, s.Store, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return Reconcile(snap), nil
}

// Reconcile recomputes balances and goal progress from the live log entries
// and reports every difference with the stored values.
// Transfers move money between wallets so they do not change the owner total.
func Reconcile(snap *domain.Snapshot) *ReconcileReport {
	report := &ReconcileReport{
		OwnerID:        snap.OwnerID,
		CheckedAt:      snap.TakenAt,
		WalletsChecked: len(snap.Wallets),
		GoalsChecked:   len(snap.Goals),
		StoredTotal:    domain.ZeroMoney,
		DerivedTotal:   domain.ZeroMoney,
	}

	live := snap.LiveEntries()

	for _, w := range snap.Wallets {
		derived := domain.ZeroMoney
		for _, e := range live {
			derived = derived.Add(e.SignedEffect(w.ID))
		}
		report.StoredTotal = report.StoredTotal.Add(w.Balance)
		if !derived.Equal(w.Balance) {
			report.WalletDrifts = append(report.WalletDrifts, WalletDrift{
				WalletID: w.ID,
				Name:     w.Name,
				Stored:   w.Balance,
				Derived:  derived,
			})
		}
	}

	for _, g := range snap.Goals {
		derived := domain.ZeroMoney
		for _, e := range live {
			derived = derived.Add(e.GoalEffect(g.ID))
		}
		badFlag := g.Achieved != g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
		if !derived.Equal(g.CurrentAmount) || badFlag {
			report.GoalDrifts = append(report.GoalDrifts, GoalDrift{
				GoalID:          g.ID,
				Name:            g.Name,
				Stored:          g.CurrentAmount,
				Derived:         derived,
				AchievedFlagBad: badFlag,
			})
		}
	}

	for _, e := range live {
		switch e.Kind {
		case domain.EntryKindDeposit:
			report.DerivedTotal = report.DerivedTotal.Add(e.Amount)
		case domain.EntryKindWithdrawal, domain.EntryKindGoalContribution:
			report.DerivedTotal = report.DerivedTotal.Sub(e.Amount)
		}
	}

	return report
}
