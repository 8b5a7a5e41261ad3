package progress

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(runID string) Snapshot {
	return Snapshot{
		RunID:     runID,
		Label:     "Assessing: Depth & Insight",
		Current:   4,
		Total:     14,
		Status:    StatusRunning,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, sampleSnapshot("run-1")))

	snap, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, "Assessing: Depth & Insight", snap.Label)
	require.Equal(t, 4, snap.Current)

	require.NoError(t, store.Delete(ctx, "run-1"))
	_, err = store.Get(ctx, "run-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreMissingRun(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	want := sampleSnapshot("run-2")
	require.NoError(t, store.Set(ctx, want))

	got, err := store.Get(ctx, "run-2")
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.True(t, server.Exists("procsight:progress:run-2"))

	require.NoError(t, store.Delete(ctx, "run-2"))
	_, err = store.Get(ctx, "run-2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreExpiry(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	require.NoError(t, store.Set(context.Background(), sampleSnapshot("run-3")))

	server.FastForward(2 * time.Minute)
	_, err = store.Get(context.Background(), "run-3")
	require.ErrorIs(t, err, ErrNotFound)
}
