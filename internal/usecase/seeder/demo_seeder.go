package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
)

// Ledger is the part of the coordinator the seeder drives
type Ledger interface {
	ListWallets(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error)
	CreateWallet(ctx context.Context, ownerID uuid.UUID, input ledger.CreateWalletInput) (*ledger.Receipt, error)
	CreateGoal(ctx context.Context, ownerID uuid.UUID, input ledger.CreateGoalInput) (*domain.Goal, error)
	ContributeToGoal(ctx context.Context, ownerID uuid.UUID, input ledger.ContributeInput) (*ledger.Receipt, error)
}

// DemoWallet defines a wallet created for the demo owner
type DemoWallet struct {
	Name          string
	InitialAmount domain.Money
}

var (
	// DemoWallets are created in order; the last one funds the demo goal
	DemoWallets = []DemoWallet{
		{Name: "Checking", InitialAmount: domain.MustParse("1500.00")},
		{Name: "Savings", InitialAmount: domain.MustParse("500.00")},
	}

	DemoGoal = ledger.CreateGoalInput{
		Name:         "Emergency Fund",
		Description:  "Three months of expenses",
		TargetAmount: domain.MustParse("3000.00"),
		PeriodDays:   180,
	}

	DemoContribution = domain.MustParse("250.00")
)

// DemoSeeder gives a development owner some data to look at.
// All writes go through the ledger so the seeded state is consistent with the log.
type DemoSeeder struct {
	ledger Ledger
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(l Ledger) *DemoSeeder {
	return &DemoSeeder{ledger: l}
}

// Seed creates the demo wallets, goal and first contribution for ownerID.
// It does nothing when the owner already has wallets, so it is safe on every start.
// Returns true when data was created.
func (s *DemoSeeder) Seed(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	existing, err := s.ledger.ListWallets(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("list wallets: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	var funding *domain.Wallet
	for _, w := range DemoWallets {
		receipt, err := s.ledger.CreateWallet(ctx, ownerID, ledger.CreateWalletInput{Name: w.Name, InitialAmount: w.InitialAmount})
		if err != nil {
			return false, fmt.Errorf("create wallet %q: %w", w.Name, err)
		}
		funding = receipt.Wallet
	}

	goal, err := s.ledger.CreateGoal(ctx, ownerID, DemoGoal)
	if err != nil {
		return false, fmt.Errorf("create goal: %w", err)
	}

	_, err = s.ledger.ContributeToGoal(ctx, ownerID, ledger.ContributeInput{
		GoalID:   goal.ID,
		WalletID: funding.ID,
		Amount:   DemoContribution,
	})
	if err != nil {
		return false, fmt.Errorf("contribute to goal: %w", err)
	}

	return true, nil
}
