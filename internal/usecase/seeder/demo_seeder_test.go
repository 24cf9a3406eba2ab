package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/adapter/repository/memory"
	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
)

// MockLedger is a mock implementation of Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ListWallets(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Wallet), args.Error(1)
}

func (m *MockLedger) CreateWallet(ctx context.Context, ownerID uuid.UUID, input ledger.CreateWalletInput) (*ledger.Receipt, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Receipt), args.Error(1)
}

func (m *MockLedger) CreateGoal(ctx context.Context, ownerID uuid.UUID, input ledger.CreateGoalInput) (*domain.Goal, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockLedger) ContributeToGoal(ctx context.Context, ownerID uuid.UUID, input ledger.ContributeInput) (*ledger.Receipt, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Receipt), args.Error(1)
}

func TestDemoSeeder_Seed_OwnerHasWallets(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	mockLedger := new(MockLedger)
	mockLedger.On("ListWallets", ctx, owner).Return([]*domain.Wallet{{ID: uuid.New(), OwnerID: owner, Name: "Existing"}}, nil)

	created, err := NewDemoSeeder(mockLedger).Seed(ctx, owner)

	assert.NoError(t, err)
	assert.False(t, created)
	mockLedger.AssertExpectations(t)
	mockLedger.AssertNotCalled(t, "CreateWallet", mock.Anything, mock.Anything, mock.Anything)
}

func TestDemoSeeder_Seed_CreateFails(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	mockLedger := new(MockLedger)
	mockLedger.On("ListWallets", ctx, owner).Return([]*domain.Wallet{}, nil)
	mockLedger.On("CreateWallet", ctx, owner, mock.Anything).Return(nil, errors.New("storage down"))

	created, err := NewDemoSeeder(mockLedger).Seed(ctx, owner)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Checking")
	assert.False(t, created)
	mockLedger.AssertNumberOfCalls(t, "CreateWallet", 1)
	mockLedger.AssertNotCalled(t, "CreateGoal", mock.Anything, mock.Anything, mock.Anything)
}

func TestDemoSeeder_Seed_AgainstLedger(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	coordinator := ledger.NewCoordinator(store, nil, logger)
	seeder := NewDemoSeeder(coordinator)

	created, err := seeder.Seed(ctx, owner)
	require.NoError(t, err)
	assert.True(t, created)

	wallets, err := coordinator.ListWallets(ctx, owner)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "1500.00", wallets[0].Balance.String())
	assert.Equal(t, "250.00", wallets[1].Balance.String())

	goals, err := coordinator.ListGoals(ctx, owner)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "250.00", goals[0].CurrentAmount.String())

	// Second run is a no-op
	created, err = seeder.Seed(ctx, owner)
	require.NoError(t, err)
	assert.False(t, created)

	wallets, err = coordinator.ListWallets(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, wallets, 2)
}
