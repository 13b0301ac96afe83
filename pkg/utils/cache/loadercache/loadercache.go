package loadercache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/utils/cache"
)

type (
	Option[K comparable, V any] func(*config[K, V])
	item[T any]                 struct {
		data    T
		expires time.Time
	}
	LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (*V, error)
	config[K comparable, V any]     struct {
		expiration time.Duration // 0: entries never expire
		loader     LoaderFunc[K, V]
		now        func() time.Time
		l          *log.Logger
	}
	loaderCache[K comparable, V any] struct {
		mutex  sync.Mutex
		items  map[K]item[*V]
		config *config[K, V]
		group  singleflight.Group
	}
)

func WithExpiration[K comparable, V any](expiration time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		c.expiration = expiration
	}
}

func WithLoader[K comparable, V any](lf LoaderFunc[K, V]) Option[K, V] {
	return func(c *config[K, V]) {
		c.loader = lf
	}
}

func WithLogger[K comparable, V any](arg *log.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		c.l = arg
	}
}

// WithClock replaces time.Now (used in tests)
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *config[K, V]) {
		c.now = now
	}
}

func New[K comparable, V any](opts ...Option[K, V]) cache.Cache[K, V] {
	c := &config[K, V]{
		expiration: 10 * time.Minute,
		now:        time.Now,
		l:          log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return &loaderCache[K, V]{
		items:  make(map[K]item[*V]),
		config: c,
	}
}

// Get returns the cached value or loads it. Loads of different keys run in
// parallel, concurrent requests for the same key share one load.
func (c *loaderCache[K, V]) Get(ctx context.Context, key K) (*V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	if c.config.loader == nil {
		return nil, cache.ErrCacheMiss
	}
	ret, err, _ := c.group.Do(fmt.Sprintf("%#v", key), func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		return c.load(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return ret.(*V), nil
}

func (c *loaderCache[K, V]) lookup(key K) (*V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	cacheItem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.config.expiration == 0 || c.config.now().Before(cacheItem.expires) {
		return cacheItem.data, true
	}
	delete(c.items, key)
	return nil, false
}

// load runs the loader without holding the lock
func (c *loaderCache[K, V]) load(ctx context.Context, key K) (*V, error) {
	c.config.l.Debug("loading entry", log.Any("key", key))
	v, err := c.config.loader(ctx, key)
	if err != nil {
		c.config.l.Debug("error loading entry", log.Any("key", key), log.ErrorField(err))
		return nil, err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items[key] = item[*V]{data: v, expires: c.config.now().Add(c.config.expiration)}
	return v, nil
}

func (c *loaderCache[K, V]) Invalidate(ctx context.Context, key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
	c.config.l.Debug("invalidated", log.Any("key", key), log.Int("remain", len(c.items)))
}

func (c *loaderCache[K, V]) InvalidateAll(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[K]item[*V])
}

func (c *loaderCache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}
