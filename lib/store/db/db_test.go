package db

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarancss/supply/lib/store"
	"github.com/tarancss/supply/lib/store/memory"
)

func TestNewMemory(t *testing.T) {
	for _, opt := range []string{MEMORY, ""} {
		dh, err := New(opt, "")
		require.NoError(t, err)
		assert.IsType(t, &memory.Memory{}, dh)

		_, err = dh.Upsert(context.Background(), store.Snapshot{TotalSupply: big.NewInt(1), CirculatingSupply: big.NewInt(1)})
		require.NoError(t, err)
		require.NoError(t, Close(opt, dh))

		_, ok, _ := dh.Fetch(context.Background())
		assert.False(t, ok)
	}
}

func TestNewUnknown(t *testing.T) {
	_, err := New("cassandra", "")
	assert.ErrorIs(t, err, ErrUnknownDB)
}
