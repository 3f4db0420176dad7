package mongo

import (
	"context"
	"math/big"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tarancss/supply/lib/store"
)

// connect returns a Mongo connection to the database in CSUP_TEST_MONGO (ie. mongodb://localhost:27017) with an empty
// snapshot, or skips the test.
func connect(t *testing.T) *Mongo {
	t.Helper()

	uri := os.Getenv("CSUP_TEST_MONGO")
	if uri == "" {
		t.Skip("CSUP_TEST_MONGO not set")
	}

	m, err := New(uri)
	require.NoError(t, err)
	require.NoError(t, m.DeleteSnapshot(context.Background()))

	t.Cleanup(func() {
		_ = m.DeleteSnapshot(context.Background())
		_ = m.CloseMongo()
	})

	return m
}

func TestMongoSnapshot(t *testing.T) {
	ms := MongoSnapshot{ID: "snap_1", Symbol: "BLP", TotalSupply: "1000000000000000000000", CirculatingSupply: "-1"}

	s, err := ms.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000", s.TotalSupply.String())
	assert.Equal(t, "-1", s.CirculatingSupply.String())

	ms.TotalSupply = "1e21"
	_, err = ms.Snapshot()
	assert.ErrorIs(t, err, store.ErrBadAmount)
}

func TestMongoSnapshotBSON(t *testing.T) {
	b, err := bson.Marshal(MongoSnapshot{Key: key, ID: "snap_1", Symbol: "BLP", TotalSupply: "10", CirculatingSupply: "7"})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(b, &m))
	assert.Equal(t, key, m["_id"])
	assert.Equal(t, "10", m["totalSupply"])
}

func TestUpsertFetch(t *testing.T) {
	m := connect(t)
	ctx := context.Background()

	_, ok, err := m.Fetch(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := m.Upsert(ctx, store.Snapshot{Symbol: "BLP", TotalSupply: big.NewInt(1000), CirculatingSupply: big.NewInt(700)})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := m.Upsert(ctx, store.Snapshot{Symbol: "BLP", TotalSupply: big.NewInt(2000), CirculatingSupply: big.NewInt(1700)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, ok, err := m.Fetch(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "2000", got.TotalSupply.String())
	assert.Equal(t, "1700", got.CirculatingSupply.String())
}
