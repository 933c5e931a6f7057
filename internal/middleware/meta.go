package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaKey = "response_meta"

	// InsightSourceKey holds the provenance of the insight served on this
	// request. The request logger reads it.
	InsightSourceKey = "insightSource"

	// InsightSourceHeader mirrors meta.source for clients that only read
	// headers.
	InsightSourceHeader = "X-Insight-Source"
)

type requestMeta struct {
	start  time.Time
	values map[string]interface{}
}

func (m *requestMeta) stamp() {
	m.values["processing_time_ms"] = time.Since(m.start).Milliseconds()
}

// WithResponseMeta starts the request clock and the meta block handlers fill
// in. Requests that never wrote meta still get processing_time_ms.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := &requestMeta{start: time.Now(), values: map[string]interface{}{}}
		c.Set(metaKey, m)
		c.Next()
		if _, done := m.values["processing_time_ms"]; !done {
			m.stamp()
		}
	}
}

// SetCacheHit records whether the insight came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaOf(c).values["cache_hit"] = hit
}

// SetInsightSource records where the served insight came from.
func SetInsightSource(c *gin.Context, source string) {
	metaOf(c).values["source"] = source
	c.Set(InsightSourceKey, source)
	c.Header(InsightSourceHeader, source)
}

// ExtractMeta returns the meta block for the request, or nil outside
// WithResponseMeta.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if m, ok := c.Value(metaKey).(*requestMeta); ok {
		return m.values
	}
	return nil
}

// FinalizeMeta stamps processing_time_ms and returns the meta block to write.
func FinalizeMeta(c *gin.Context) map[string]interface{} {
	m := metaOf(c)
	m.stamp()
	return m.values
}

func metaOf(c *gin.Context) *requestMeta {
	if m, ok := c.Value(metaKey).(*requestMeta); ok {
		return m
	}
	m := &requestMeta{start: time.Now(), values: map[string]interface{}{}}
	c.Set(metaKey, m)
	return m
}
