package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error { return errors.New("conn reset") }
func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("conn reset")
}
func (brokenCache) DeleteByPattern(context.Context, string) (int, error) {
	return 0, errors.New("conn reset")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewCacheService(newMemoryCache(), NewMetricsService(), time.Minute, zap.NewNop(), true)
	key := insightKey("performance", "class1_student1", "all")
	assert.Equal(t, "insights:performance:class1_student1:all", key)

	var got cachedInsight
	assert.False(t, svc.Load(ctx, key, &got))

	svc.Store(ctx, key, cachedInsight{Source: SourceLocal, Payload: []byte(`{"overall_performance":44}`)})
	require.True(t, svc.Load(ctx, key, &got))
	assert.Equal(t, SourceLocal, got.Source)

	require.NoError(t, svc.Invalidate(ctx, InsightsCachePattern))
	assert.False(t, svc.Load(ctx, key, &got))
}

func TestCacheServiceFaultsAreMisses(t *testing.T) {
	ctx := context.Background()
	svc := NewCacheService(brokenCache{}, nil, 0, nil, true)

	var got cachedInsight
	assert.False(t, svc.Load(ctx, "insights:x", &got))
	svc.Store(ctx, "insights:x", got)
	assert.Error(t, svc.Invalidate(ctx, InsightsCachePattern))
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.False(t, nilSvc.Load(context.Background(), "k", &struct{}{}))
	assert.NoError(t, nilSvc.Invalidate(context.Background(), "*"))

	assert.False(t, NewCacheService(nil, nil, 0, nil, true).Enabled())
	assert.False(t, NewCacheService(newMemoryCache(), nil, 0, nil, false).Enabled())
}
