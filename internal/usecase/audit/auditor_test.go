package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/adapter/repository/memory"
	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
)

func TestRunOnce_Consistent(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	store := memory.NewStore()
	coord := ledger.NewCoordinator(store, nil, logger)

	for i := 0; i < 3; i++ {
		_, err := coord.CreateWallet(ctx, uuid.New(), ledger.CreateWalletInput{Name: "Main", InitialAmount: domain.MustParse("10")})
		require.NoError(t, err)
	}
	hook.Reset()

	result, err := NewAuditor(store, logger).RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Owners)
	assert.Empty(t, result.Drifted)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "ledger audit finished", hook.LastEntry().Message)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestRunOnce_ReportsDrift(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	store := memory.NewStore()
	owner := uuid.New()

	// A balance written without a matching log entry
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	wallet := &domain.Wallet{ID: uuid.New(), OwnerID: owner, Name: "Tampered", Balance: domain.MustParse("99")}
	require.NoError(t, tx.Wallets().Create(ctx, wallet))
	require.NoError(t, tx.Commit())

	result, err := NewAuditor(store, logger).RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{owner}, result.Drifted)

	var errorsLogged []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errorsLogged = append(errorsLogged, e.Message)
		}
	}
	assert.Equal(t, []string{"wallet balance drift detected", "owner balance drift detected"}, errorsLogged)
}

func TestStart(t *testing.T) {
	logger, _ := test.NewNullLogger()
	auditor := NewAuditor(memory.NewStore(), logger)

	assert.Error(t, auditor.Start(context.Background(), "not a schedule"))

	require.NoError(t, auditor.Start(context.Background(), "@every 1h"))
	assert.Error(t, auditor.Start(context.Background(), "@every 1h"))
	auditor.Stop()
	auditor.Stop()
}
