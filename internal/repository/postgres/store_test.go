package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("STOCKWISE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STOCKWISE_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	slot := "test-" + uuid.NewString()
	_, found, err := store.Load(ctx, slot)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, slot, []byte(`[{"id":"pen1","name":"Pen A"}]`)))
	got, found, err := store.Load(ctx, slot)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"pen1","name":"Pen A"}]`, string(got))
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "", nil)
	require.Error(t, err)
}
