package summary

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

func TestReconcile(t *testing.T) {
	owner := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: owner, Name: "Main", Balance: domain.MustParse("70")}
	other := &domain.Wallet{ID: uuid.New(), OwnerID: owner, Name: "Other", Balance: domain.MustParse("10")}
	goal := &domain.Goal{ID: uuid.New(), OwnerID: owner, Name: "Bike", TargetAmount: domain.MustParse("100"), CurrentAmount: domain.MustParse("20")}

	goalID := goal.ID
	otherID := other.ID
	entries := []*domain.Entry{
		{ID: uuid.New(), OwnerID: owner, WalletID: wallet.ID, Kind: domain.EntryKindDeposit, Amount: domain.MustParse("100"), CreatedAt: now},
		{ID: uuid.New(), OwnerID: owner, WalletID: wallet.ID, GoalID: &goalID, Kind: domain.EntryKindGoalContribution, Amount: domain.MustParse("20"), CreatedAt: now},
		{ID: uuid.New(), OwnerID: owner, WalletID: wallet.ID, CounterpartyWalletID: &otherID, Kind: domain.EntryKindTransfer, Amount: domain.MustParse("10"), CreatedAt: now},
		reversed(&domain.Entry{ID: uuid.New(), OwnerID: owner, WalletID: wallet.ID, Kind: domain.EntryKindDeposit, Amount: domain.MustParse("500"), CreatedAt: now}),
	}

	t.Run("consistent", func(t *testing.T) {
		report := Reconcile(&domain.Snapshot{OwnerID: owner, TakenAt: now, Wallets: []*domain.Wallet{wallet, other}, Goals: []*domain.Goal{goal}, Entries: entries})

		assert.True(t, report.Consistent())
		assert.Equal(t, "80.00", report.StoredTotal.String())
		assert.Equal(t, "80.00", report.DerivedTotal.String())
	})

	t.Run("drifted", func(t *testing.T) {
		drifted := *wallet
		drifted.Balance = domain.MustParse("75")
		badGoal := *goal
		badGoal.Achieved = true

		report := Reconcile(&domain.Snapshot{OwnerID: owner, TakenAt: now, Wallets: []*domain.Wallet{&drifted, other}, Goals: []*domain.Goal{&badGoal}, Entries: entries})

		assert.False(t, report.Consistent())
		require.Len(t, report.WalletDrifts, 1)
		assert.Equal(t, "75.00", report.WalletDrifts[0].Stored.String())
		assert.Equal(t, "70.00", report.WalletDrifts[0].Derived.String())
		require.Len(t, report.GoalDrifts, 1)
		assert.True(t, report.GoalDrifts[0].AchievedFlagBad)
	})
}
