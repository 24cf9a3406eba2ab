package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newWallet(owner uuid.UUID, name string, at time.Time) *domain.Wallet {
	return &domain.Wallet{ID: uuid.New(), OwnerID: owner, Name: name, Balance: domain.MustParse("10"), CreatedAt: at, UpdatedAt: at}
}

func TestStore_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	owner := uuid.New()
	kept := newWallet(owner, "Kept", time.Now().UTC())
	dropped := newWallet(owner, "Dropped", time.Now().UTC())

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Wallets().Create(ctx, kept))
	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback(), "rollback after commit is a no-op")

	tx, err = store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Wallets().Create(ctx, dropped))
	require.NoError(t, tx.Rollback())

	err = store.View(ctx, func(repos domain.Repositories) error {
		wallets, err := repos.Wallets().List(ctx, owner, true)
		require.NoError(t, err)
		require.Len(t, wallets, 1)
		assert.Equal(t, "Kept", wallets[0].Name)
		assert.Equal(t, "10.00", wallets[0].Balance.String())

		owners, err := repos.Wallets().ListOwners(ctx)
		assert.Equal(t, []uuid.UUID{owner}, owners)
		return err
	})
	assert.NoError(t, err)
}

func TestStore_ViewIsReadOnly(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	err := store.View(ctx, func(repos domain.Repositories) error {
		return repos.Wallets().Create(ctx, newWallet(uuid.New(), "Nope", time.Now()))
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestStore_Entries(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	owner := uuid.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := newWallet(owner, "A", at)
	b := newWallet(owner, "B", at)

	// Same timestamp: append order decides
	first := &domain.Entry{ID: uuid.New(), OwnerID: owner, WalletID: a.ID, Amount: domain.MustParse("1"), Kind: domain.EntryKindDeposit, CreatedAt: at}
	second := &domain.Entry{ID: uuid.New(), OwnerID: owner, WalletID: a.ID, CounterpartyWalletID: &b.ID, Amount: domain.MustParse("0.5"), Kind: domain.EntryKindTransfer, CreatedAt: at}

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Wallets().Create(ctx, a))
	require.NoError(t, tx.Wallets().Create(ctx, b))
	require.NoError(t, tx.Entries().Append(ctx, first))
	require.NoError(t, tx.Entries().Append(ctx, second))
	assert.Error(t, tx.Entries().Append(ctx, first), "duplicate ids are rejected")
	require.NoError(t, tx.Commit())

	tx, err = store.Begin(ctx)
	require.NoError(t, err)
	list, err := tx.Entries().List(ctx, domain.EntryFilter{OwnerID: owner})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, "0.50", list[0].Amount.String())
	assert.True(t, list[0].CreatedAt.Equal(at))

	page, err := tx.Entries().List(ctx, domain.EntryFilter{OwnerID: owner, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	referenced, err := tx.Entries().HasLiveReferences(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, referenced)

	reversedAt := at.Add(time.Hour)
	changed := *second
	changed.Amount = domain.MustParse("100")
	changed.Description = "edited"
	changed.ReversedAt = &reversedAt
	require.NoError(t, tx.Entries().Update(ctx, &changed))
	require.NoError(t, tx.Commit())

	err = store.View(ctx, func(repos domain.Repositories) error {
		got, err := repos.Entries().GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "0.50", got.Amount.String(), "amount is immutable")
		assert.Equal(t, "edited", got.Description)
		assert.True(t, got.IsReversed())

		referenced, err := repos.Entries().HasLiveReferences(ctx, b.ID)
		assert.False(t, referenced)

		count, err := repos.Entries().Count(ctx, domain.EntryFilter{OwnerID: owner, IncludeReversed: true})
		assert.Equal(t, 2, count)
		return err
	})
	assert.NoError(t, err)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	err := store.View(ctx, func(repos domain.Repositories) error {
		_, err := repos.Goals().GetByID(ctx, uuid.New())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()
	err = tx.Wallets().Update(ctx, newWallet(uuid.New(), "Ghost", time.Now()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_LedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	logger, _ := test.NewNullLogger()
	coordinator := ledger.NewCoordinator(store, nil, logger)
	owner := uuid.New()

	created, err := coordinator.CreateWallet(ctx, owner, ledger.CreateWalletInput{Name: "Main", InitialAmount: domain.MustParse("80")})
	require.NoError(t, err)
	goal, err := coordinator.CreateGoal(ctx, owner, ledger.CreateGoalInput{Name: "Bike", TargetAmount: domain.MustParse("50"), PeriodDays: 10})
	require.NoError(t, err)

	receipt, err := coordinator.ContributeToGoal(ctx, owner, ledger.ContributeInput{GoalID: goal.ID, WalletID: created.Wallet.ID, Amount: domain.MustParse("50")})
	require.NoError(t, err)
	assert.True(t, receipt.Goal.Achieved)

	_, err = coordinator.ReverseEntry(ctx, owner, receipt.Entry.ID)
	require.NoError(t, err)

	wallet, err := coordinator.GetWallet(ctx, owner, created.Wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, "80.00", wallet.Balance.String())

	reloaded, err := coordinator.GetGoal(ctx, owner, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", reloaded.CurrentAmount.String())
	assert.False(t, reloaded.Achieved)
	require.NotNil(t, reloaded.EndDate)
}
