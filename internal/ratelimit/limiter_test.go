package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/ratelimit/repo"
)

const cooldown = 5 * time.Second

func newTestLimiter(now *time.Time) (*Limiter, *repo.MemoryStore) {
	store := repo.NewMemoryStore()
	store.Now = func() time.Time { return *now }
	return NewLimiter(store, Config{Cooldown: cooldown}), store
}

func TestCheckAndAdmit_Cooldown(t *testing.T) {
	t.Parallel()

	now := time.Now()
	limiter, _ := newTestLimiter(&now)
	ctx := context.Background()

	admitted, _, err := limiter.CheckAndAdmit(ctx, "s1")
	require.NoError(t, err)
	require.True(t, admitted, "first request creates the record and admits")

	admitted, retryAfter, err := limiter.CheckAndAdmit(ctx, "s1")
	require.NoError(t, err)
	require.False(t, admitted)
	require.Equal(t, cooldown, retryAfter)

	now = now.Add(cooldown)
	admitted, _, err = limiter.CheckAndAdmit(ctx, "s1")
	require.NoError(t, err)
	require.True(t, admitted, "admits again once the cooldown elapsed")
}

func TestCheckAndAdmit_RejectionDoesNotRefreshStamp(t *testing.T) {
	t.Parallel()

	now := time.Now()
	limiter, _ := newTestLimiter(&now)
	ctx := context.Background()

	admitted, _, err := limiter.CheckAndAdmit(ctx, "s1")
	require.NoError(t, err)
	require.True(t, admitted)

	now = now.Add(3 * time.Second)
	admitted, retryAfter, err := limiter.CheckAndAdmit(ctx, "s1")
	require.NoError(t, err)
	require.False(t, admitted)
	require.Equal(t, 2*time.Second, retryAfter)

	// 6s after the admit; had the rejection refreshed the stamp this would
	// still be inside the window
	now = now.Add(3 * time.Second)
	admitted, _, err = limiter.CheckAndAdmit(ctx, "s1")
	require.NoError(t, err)
	require.True(t, admitted)
}

func TestCheckAndAdmit_PerSession(t *testing.T) {
	t.Parallel()

	now := time.Now()
	limiter, _ := newTestLimiter(&now)
	ctx := context.Background()

	admitted, _, err := limiter.CheckAndAdmit(ctx, "s1")
	require.NoError(t, err)
	require.True(t, admitted)

	admitted, _, err = limiter.CheckAndAdmit(ctx, "s2")
	require.NoError(t, err)
	require.True(t, admitted, "another session has its own cooldown")
}

func TestCheckAndAdmit_ConcurrentSameSession(t *testing.T) {
	t.Parallel()

	// the check-and-refresh must be atomic: of N concurrent requests from the
	// same session inside the window, exactly one is admitted
	now := time.Now()
	limiter, _ := newTestLimiter(&now)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			admitted, _, err := limiter.CheckAndAdmit(ctx, "s1")
			require.NoError(t, err)
			results[i] = admitted
		}(i)
	}
	wg.Wait()

	admittedCount := 0
	for _, admitted := range results {
		if admitted {
			admittedCount++
		}
	}
	require.Equal(t, 1, admittedCount)
}
