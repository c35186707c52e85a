//go:build integration

package redis_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	ledgerredis "epaws/internal/adapters/ledger/redis"
	"epaws/internal/domain/ledger"
	"epaws/internal/platform/sentinel"
)

func newStore(t *testing.T) *ledgerredis.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := ledgerredis.Dial(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return ledgerredis.NewStore(client)
}

func TestStore_AdjustClampsAtZero(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	v, err := s.Adjust(ctx, "org-1", ledger.CurrentAnimals, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)

	v, err = s.Adjust(ctx, "org-1", ledger.CurrentAnimals, -10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)

	v, err = s.Adjust(ctx, "org-1", ledger.CurrentAnimals, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	_, err = s.Adjust(ctx, "org-1", ledger.Field("bogus"), 1)
	require.ErrorIs(t, err, sentinel.ErrValidation)
}

func TestStore_ConcurrentAdjustNoLostUpdates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Adjust(ctx, "org-1", ledger.TotalRescues, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := s.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.EqualValues(t, 100, c.TotalRescues)
	assert.Zero(t, c.CurrentAnimals)

	empty, err := s.Get(ctx, "org-unknown")
	require.NoError(t, err)
	assert.Equal(t, ledger.Counters{}, empty)
}
