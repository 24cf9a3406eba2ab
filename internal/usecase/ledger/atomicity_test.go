package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// MockTx wraps a real transaction and lets tests fail Commit
type MockTx struct {
	domain.Tx
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return err
	}
	return m.Tx.Commit()
}

func (m *MockTx) Rollback() error {
	m.Called()
	return m.Tx.Rollback()
}

// MockStore hands out MockTx instances around a real store
type MockStore struct {
	domain.Store
	mock.Mock
}

func (m *MockStore) Begin(ctx context.Context) (domain.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	inner, err := m.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	tx := args.Get(0).(*MockTx)
	tx.Tx = inner
	return tx, args.Error(1)
}

func TestCommitFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t, nil)
	wallet := f.wallet(t, "Main", "50")
	goal := f.goal(t, "Bike", "100")

	store := &MockStore{Store: f.store}
	tx := new(MockTx)
	store.On("Begin", mock.Anything).Return(tx, nil)
	tx.On("Commit").Return(errors.New("connection reset"))
	tx.On("Rollback").Return(nil)

	publisher := new(MockPublisher)
	coord := NewCoordinator(store, publisher, f.logger)

	_, err := coord.ContributeToGoal(f.ctx, f.owner, ContributeInput{GoalID: goal.ID, WalletID: wallet.ID, Amount: domain.MustParse("30")})

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, "50.00", f.balance(t, wallet.ID))
	assert.True(t, f.goalState(t, goal.ID).CurrentAmount.IsZero())
	assert.Equal(t, 1, f.entryCount(t))
	tx.AssertCalled(t, "Rollback")
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestBeginFailureIsAStorageFailure(t *testing.T) {
	f := newFixture(t, nil)
	wallet := f.wallet(t, "Main", "50")

	store := &MockStore{Store: f.store}
	store.On("Begin", mock.Anything).Return(nil, errors.New("too many connections"))
	coord := NewCoordinator(store, nil, f.logger)

	_, err := coord.RecordDeposit(f.ctx, f.owner, RecordDepositInput{WalletID: wallet.ID, Amount: domain.MustParse("1")})

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, "50.00", f.balance(t, wallet.ID))
}

func TestValidationFailureRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	wallet := f.wallet(t, "Main", "20")
	goal := f.goal(t, "Bike", "100")

	store := &MockStore{Store: f.store}
	tx := new(MockTx)
	store.On("Begin", mock.Anything).Return(tx, nil)
	tx.On("Rollback").Return(nil)
	coord := NewCoordinator(store, nil, f.logger)

	_, err := coord.ContributeToGoal(f.ctx, f.owner, ContributeInput{GoalID: goal.ID, WalletID: wallet.ID, Amount: domain.MustParse("70")})

	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	tx.AssertNotCalled(t, "Commit")
	tx.AssertCalled(t, "Rollback")
	assert.Equal(t, "20.00", f.balance(t, wallet.ID))
	assert.Equal(t, 1, f.entryCount(t))
}
