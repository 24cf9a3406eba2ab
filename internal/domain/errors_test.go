package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotOwned(t *testing.T) {
	err := fmt.Errorf("get wallet: %w", NotOwned("wallet"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "wallet not found")
}

func TestStorageError(t *testing.T) {
	assert.NoError(t, StorageError("op", nil))

	wrapped := StorageError("insert entry", errors.New("connection reset"))
	assert.ErrorIs(t, wrapped, ErrStorageFailure)
	assert.Contains(t, wrapped.Error(), "connection reset")

	// Domain errors raised by a store pass through unchanged
	notFound := fmt.Errorf("wallet %s: %w", "x", ErrNotFound)
	assert.Equal(t, notFound, StorageError("get wallet", notFound))
}
