package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := E(KindOutOfStock, "no copies of %q available", "Dune")
	assert.Equal(t, KindOutOfStock, KindOf(err))
	assert.Equal(t, `no copies of "Dune" available`, MessageOf(err))

	wrapped := fmt.Errorf("handling request: %w", err)
	assert.Equal(t, KindOutOfStock, KindOf(wrapped))

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestStorageWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage(cause)

	assert.Equal(t, KindStorage, KindOf(err))
	assert.ErrorIs(t, err, cause)
	// The client-facing detail stays generic.
	assert.Equal(t, "database error", MessageOf(err))
}

func TestIsMatchesOnKind(t *testing.T) {
	err := E(KindNotFound, "book not found")
	assert.ErrorIs(t, err, &Error{Kind: KindNotFound})
	assert.NotErrorIs(t, err, &Error{Kind: KindConflict})
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "out_of_stock", KindOutOfStock.String())
	assert.Equal(t, "storage_failure", KindStorage.String())
	assert.Equal(t, "unknown", Kind(200).String())
}
