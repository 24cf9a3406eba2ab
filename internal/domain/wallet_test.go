package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWallet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		wallet  Wallet
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid wallet",
			wallet: Wallet{
				ID:      uuid.New(),
				OwnerID: uuid.New(),
				Name:    "Savings",
				Balance: MustParse("10"),
			},
		},
		{
			name: "missing owner",
			wallet: Wallet{
				ID:   uuid.New(),
				Name: "Savings",
			},
			wantErr: true,
			errMsg:  "wallet must have an owner",
		},
		{
			name: "blank name",
			wallet: Wallet{
				ID:      uuid.New(),
				OwnerID: uuid.New(),
				Name:    "   ",
			},
			wantErr: true,
			errMsg:  "wallet name cannot be empty",
		},
		{
			name: "name too long",
			wallet: Wallet{
				ID:      uuid.New(),
				OwnerID: uuid.New(),
				Name:    strings.Repeat("a", MaxNameLength+1),
			},
			wantErr: true,
			errMsg:  "cannot exceed",
		},
		{
			name: "negative balance",
			wallet: Wallet{
				ID:      uuid.New(),
				OwnerID: uuid.New(),
				Name:    "Savings",
				Balance: MustParse("-0.01"),
			},
			wantErr: true,
			errMsg:  "wallet balance cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wallet.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Rainy day  ", "wallet name")
	assert.NoError(t, err)
	assert.Equal(t, "Rainy day", name)

	_, err = NormalizeName("", "wallet name")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalizeDescription(t *testing.T) {
	desc, err := NormalizeDescription("  groceries ")
	assert.NoError(t, err)
	assert.Equal(t, "groceries", desc)

	desc, err = NormalizeDescription("")
	assert.NoError(t, err)
	assert.Empty(t, desc)

	_, err = NormalizeDescription(strings.Repeat("x", MaxDescriptionLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
