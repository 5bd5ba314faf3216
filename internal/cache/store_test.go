package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore("", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// backends прогоняет один и тот же сценарий на всех реализациях кэша
func backends(t *testing.T) map[string]ports.SnapshotCache {
	return map[string]ports.SnapshotCache{
		"memory": NewMemoryStore(0, 0),
		"badger": newBadgerStore(t),
	}
}

func TestSnapshotCache_SetGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := store.Get(ctx, "image:missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.Set(ctx, "image:1", []byte(`{"id":1}`)))

			got, found, err := store.Get(ctx, "image:1")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []byte(`{"id":1}`), got)
		})
	}
}

func TestSnapshotCache_ExpireZeroDeletes(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "image:2", []byte("x")))
			require.NoError(t, store.Expire(ctx, "image:2", 0))

			_, found, err := store.Get(ctx, "image:2")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestSnapshotCache_ExpireMissingKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Expire(ctx, "image:none", time.Minute))

			_, found, err := store.Get(ctx, "image:none")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestMemoryStore_EntryExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0, 0)

	require.NoError(t, store.Set(ctx, "image:3", []byte("x")))
	require.NoError(t, store.Expire(ctx, "image:3", 20*time.Millisecond))

	_, found, _ := store.Get(ctx, "image:3")
	assert.True(t, found)

	assert.Eventually(t, func() bool {
		_, found, _ := store.Get(ctx, "image:3")
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestBadgerStore_EntryExpires(t *testing.T) {
	ctx := context.Background()
	store := newBadgerStore(t)

	require.NoError(t, store.Set(ctx, "image:4", []byte("x")))
	require.NoError(t, store.Expire(ctx, "image:4", time.Second))

	_, found, _ := store.Get(ctx, "image:4")
	assert.True(t, found)

	// badger хранит срок с точностью до секунды
	assert.Eventually(t, func() bool {
		_, found, _ := store.Get(ctx, "image:4")
		return !found
	}, 4*time.Second, 100*time.Millisecond)
}
