package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// The schema must reject exactly what the domain rejects, so every store
// agrees on which goals and amounts are valid.
func TestMigrations_MatchDomainRules(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/000001_create_ledger.up.sql")
	require.NoError(t, err)
	schema := string(raw)

	tests := []struct {
		name       string
		constraint string
	}{
		{"goal period of at least one day", "period_days     INTEGER NOT NULL CHECK (period_days >= 1)"},
		{"non-negative wallet balance", "CHECK (balance >= 0)"},
		{"positive goal target", "CHECK (target_amount > 0)"},
		{"positive entry amount", "CHECK (amount > 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, schema, tt.constraint)
		})
	}

	// NUMERIC(14, 2) holds twelve integer digits, the same bound as Money
	assert.Equal(t, 4, strings.Count(schema, "NUMERIC(14, 2)"))
	assert.Equal(t, "999999999999.99", domain.MaxMoney.String())
}
