package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/adapter/repository/memory"
	"github.com/simaogato/nestegg-backend/internal/domain"
)

// MockPublisher is a mock implementation of EventPublisher for testing
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fixedClock returns a clock that advances one second per call so entries
// have distinct, ordered timestamps
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	coord  *Coordinator
	hook   *test.Hook
	owner  uuid.UUID
	logger *logrus.Logger
}

func newFixture(t *testing.T, publisher domain.EventPublisher) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	store := memory.NewStore()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fixture{
		ctx:    context.Background(),
		store:  store,
		coord:  NewCoordinator(store, publisher, logger, WithClock(fixedClock(start))),
		hook:   hook,
		owner:  uuid.New(),
		logger: logger,
	}
}

func (f *fixture) wallet(t *testing.T, name, initial string) *domain.Wallet {
	t.Helper()
	r, err := f.coord.CreateWallet(f.ctx, f.owner, CreateWalletInput{Name: name, InitialAmount: domain.MustParse(initial)})
	require.NoError(t, err)
	return r.Wallet
}

func (f *fixture) goal(t *testing.T, name, target string) *domain.Goal {
	t.Helper()
	g, err := f.coord.CreateGoal(f.ctx, f.owner, CreateGoalInput{Name: name, TargetAmount: domain.MustParse(target), PeriodDays: 30})
	require.NoError(t, err)
	return g
}

func (f *fixture) balance(t *testing.T, walletID uuid.UUID) string {
	t.Helper()
	w, err := f.coord.GetWallet(f.ctx, f.owner, walletID)
	require.NoError(t, err)
	return w.Balance.String()
}

func (f *fixture) goalState(t *testing.T, goalID uuid.UUID) *domain.Goal {
	t.Helper()
	var g *domain.Goal
	err := f.store.View(f.ctx, func(repos domain.Repositories) error {
		var err error
		g, err = repos.Goals().GetByID(f.ctx, goalID)
		return err
	})
	require.NoError(t, err)
	return g
}

func (f *fixture) entryCount(t *testing.T) int {
	t.Helper()
	page, err := f.coord.ListEntries(f.ctx, f.owner, domain.EntryFilter{IncludeReversed: true})
	require.NoError(t, err)
	return page.Total
}

// assertConservation checks that every wallet balance and goal progress equals
// what the live log entries add up to, and that nothing is negative
func assertConservation(t *testing.T, store domain.Store, ownerID uuid.UUID) {
	t.Helper()
	snap, err := domain.ReadSnapshot(context.Background(), store, ownerID, time.Now())
	require.NoError(t, err)

	for _, w := range snap.Wallets {
		derived := domain.ZeroMoney
		for _, e := range snap.Entries {
			derived = derived.Add(e.SignedEffect(w.ID))
		}
		assert.Equal(t, derived.String(), w.Balance.String(), "wallet %s balance must match its log", w.Name)
		assert.False(t, w.Balance.IsNegative(), "wallet %s balance must not be negative", w.Name)
	}

	for _, g := range snap.Goals {
		derived := domain.ZeroMoney
		for _, e := range snap.Entries {
			derived = derived.Add(e.GoalEffect(g.ID))
		}
		assert.Equal(t, derived.String(), g.CurrentAmount.String(), "goal %s progress must match its log", g.Name)
		assert.Equal(t, g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount), g.Achieved, "goal %s achieved flag", g.Name)
	}
}
