package loadercache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/tyre-strategy/pkg/utils/cache"
)

func TestGetLoadsOnce(t *testing.T) {
	calls := 0
	c := New(WithLoader(func(ctx context.Context, key string) (*int, error) {
		calls++
		v := len(key)
		return &v, nil
	}))
	for range 3 {
		v, err := c.Get(context.Background(), "abc")
		assert.NoError(t, err)
		assert.Equal(t, 3, *v)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	c.Invalidate(context.Background(), "abc")
	assert.Equal(t, 0, c.Len())
	_, _ = c.Get(context.Background(), "abc")
	assert.Equal(t, 2, calls)
}

func TestExpiration(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	c := New(
		WithExpiration[string, int](time.Minute),
		WithClock[string, int](func() time.Time { return now }),
		WithLoader(func(ctx context.Context, key string) (*int, error) {
			calls++
			return &calls, nil
		}))
	_, _ = c.Get(context.Background(), "x")
	now = now.Add(30 * time.Second)
	_, _ = c.Get(context.Background(), "x")
	assert.Equal(t, 1, calls)
	now = now.Add(time.Minute)
	_, _ = c.Get(context.Background(), "x")
	assert.Equal(t, 2, calls)
}

func TestErrors(t *testing.T) {
	_, err := New[string, int]().Get(context.Background(), "x")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	errLoad := errors.New("load failed")
	c := New(WithLoader(func(ctx context.Context, key string) (*int, error) {
		return nil, errLoad
	}))
	_, err = c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, errLoad)
	assert.Equal(t, 0, c.Len())
}

func TestSlowLoadDoesNotBlockOtherKeys(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var slowCalls atomic.Int32
	c := New(WithLoader(func(ctx context.Context, key string) (*int, error) {
		if key == "slow" {
			if slowCalls.Add(1) == 1 {
				close(started)
			}
			<-release
		}
		v := len(key)
		return &v, nil
	}))

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get(context.Background(), "slow")
			assert.NoError(t, err)
			assert.Equal(t, 4, *v)
		}()
	}
	<-started

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := c.Get(context.Background(), "fast")
		assert.NoError(t, err)
		assert.Equal(t, 4, *v)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fast key waited for the slow load")
	}

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), slowCalls.Load())
	assert.Equal(t, 2, c.Len())
}
