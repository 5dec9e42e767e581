//go:build unit

package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockManager(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire on a held key is denied", func(t *testing.T) {
		m := NewMemoryLockManager()

		granted, err := m.Acquire(ctx, "cart:1", "holder-a", time.Minute)
		require.NoError(t, err)
		require.True(t, granted)

		granted, err = m.Acquire(ctx, "cart:1", "holder-b", time.Minute)
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("expired lock can be re-acquired", func(t *testing.T) {
		m := NewMemoryLockManager()

		granted, err := m.Acquire(ctx, "cart:1", "holder-a", -time.Second)
		require.NoError(t, err)
		require.True(t, granted)

		granted, err = m.Acquire(ctx, "cart:1", "holder-b", time.Minute)
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("release with wrong token is a no-op", func(t *testing.T) {
		m := NewMemoryLockManager()

		granted, err := m.Acquire(ctx, "cart:1", "holder-a", time.Minute)
		require.NoError(t, err)
		require.True(t, granted)

		require.NoError(t, m.Release(ctx, "cart:1", "holder-b"))

		granted, err = m.Acquire(ctx, "cart:1", "holder-c", time.Minute)
		require.NoError(t, err)
		assert.False(t, granted, "lock should still be held by holder-a")
	})

	t.Run("release with matching token frees the key", func(t *testing.T) {
		m := NewMemoryLockManager()

		granted, err := m.Acquire(ctx, "cart:1", "holder-a", time.Minute)
		require.NoError(t, err)
		require.True(t, granted)

		require.NoError(t, m.Release(ctx, "cart:1", "holder-a"))

		granted, err = m.Acquire(ctx, "cart:1", "holder-b", time.Minute)
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("exactly one of many concurrent acquirers wins", func(t *testing.T) {
		m := NewMemoryLockManager()

		const workers = 32
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				granted, err := m.Acquire(ctx, "unit:42", "token", time.Minute)
				require.NoError(t, err)
				if granted {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
	})
}
