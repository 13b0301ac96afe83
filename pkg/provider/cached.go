package provider

import (
	"context"
	"time"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/utils/cache"
	"github.com/mpapenbr/tyre-strategy/pkg/utils/cache/loadercache"
)

// CachedProvider keeps loaded sessions in memory.
type CachedProvider struct {
	cache cache.Cache[SessionKey, []model.LapRecord]
}

func NewCachedProvider(p SessionDataProvider, expiration time.Duration) *CachedProvider {
	return &CachedProvider{
		cache: loadercache.New(
			loadercache.WithExpiration[SessionKey, []model.LapRecord](expiration),
			loadercache.WithLogger[SessionKey, []model.LapRecord](log.Default().Named("provider.cache")),
			loadercache.WithLoader(func(ctx context.Context, key SessionKey) (*[]model.LapRecord, error) {
				laps, err := p.Laps(ctx, key)
				if err != nil {
					return nil, err
				}
				return &laps, nil
			}),
		),
	}
}

func (c *CachedProvider) Laps(ctx context.Context, key SessionKey) ([]model.LapRecord, error) {
	laps, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return *laps, nil
}

func (c *CachedProvider) Invalidate(ctx context.Context, key SessionKey) {
	c.cache.Invalidate(ctx, key)
}
