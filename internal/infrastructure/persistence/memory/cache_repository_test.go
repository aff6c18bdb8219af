package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/nutrition/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() (*CacheRepository, *time.Time) {
	clock := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	repo := NewCacheRepository(0)
	repo.now = func() time.Time { return clock }
	return repo, &clock
}

func TestCacheRepository_SetGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestCache()

	value := []byte("payload")
	require.NoError(t, repo.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	exists, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCacheRepository_Miss(t *testing.T) {
	repo, _ := newTestCache()

	_, err := repo.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}

func TestCacheRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestCache()

	require.NoError(t, repo.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, repo.Set(ctx, "default", []byte("b"), 0))

	*clock = clock.Add(2 * time.Second)

	_, err := repo.Get(ctx, "short")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	exists, err := repo.Exists(ctx, "default")
	require.NoError(t, err)
	assert.True(t, exists)

	*clock = clock.Add(DefaultTTL)
	repo.sweep()
	assert.Zero(t, repo.Len())
}

func TestCacheRepository_ExpiredGetKeepsConcurrentSet(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestCache()

	require.NoError(t, repo.Set(ctx, "k", []byte("stale"), time.Second))
	*clock = clock.Add(2 * time.Second)

	// The first clock read in Get happens after the entry was read; refresh
	// the key right there, before the expired entry is evicted.
	refreshed := false
	repo.now = func() time.Time {
		if !refreshed {
			refreshed = true
			require.NoError(t, repo.Set(ctx, "k", []byte("fresh"), time.Minute))
		}
		return *clock
	}

	_, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)
}

func TestCacheRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestCache()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, repo.Delete(ctx, "k"))

	exists, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheRepository_CloseIsIdempotent(t *testing.T) {
	repo := NewCacheRepository(time.Millisecond)
	assert.NoError(t, repo.Close())
	assert.NoError(t, repo.Close())
}
