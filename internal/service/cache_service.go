package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
)

// InsightsCachePattern matches every cached insight payload.
const InsightsCachePattern = "insights:*"

const defaultCacheTTL = 5 * time.Minute

// CacheRepository persists encoded insight payloads. Get returns
// appErrors.ErrCacheMiss for absent keys.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// CacheService fronts the repository for the orchestrator. Cache faults are
// logged and reported as misses so a broken cache never fails a request. A
// nil *CacheService behaves as a disabled cache.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service. ttl <= 0 selects five minutes.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		repo:    repo,
		metrics: metrics,
		ttl:     ttl,
		logger:  logger.Named("cache"),
		enabled: enabled && repo != nil,
	}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled
}

// Load decodes the entry at key into dest and reports whether it was found.
func (s *CacheService) Load(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("load failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Store writes value at key with the service TTL.
func (s *CacheService) Store(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("store failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes entries matching pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	n, err := s.repo.DeleteByPattern(ctx, pattern)
	if err != nil {
		s.logger.Warn("invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	s.logger.Info("invalidated", zap.String("pattern", pattern), zap.Int("deleted", n))
	return nil
}

// insightKey builds "insights:{kind}:{subject}:{filter}[:extra...]".
func insightKey(kind, subject, filter string, extra ...string) string {
	parts := append([]string{"insights", kind, subject, filter}, extra...)
	return strings.Join(parts, ":")
}
