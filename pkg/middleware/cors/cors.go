// Package cors answers browser preflights for the insights API.
package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Policy decides which origins may read insight responses. An empty list or
// a "*" entry admits any origin. "*.school.edu" admits every subdomain of
// school.edu.
type Policy struct {
	any      bool
	exact    map[string]struct{}
	suffixes []string
}

// NewPolicy parses allowed origins.
func NewPolicy(allowed []string) Policy {
	p := Policy{exact: map[string]struct{}{}, any: len(allowed) == 0}
	for _, raw := range allowed {
		origin := strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "/"))
		switch {
		case origin == "":
		case origin == "*":
			p.any = true
		case strings.Contains(origin, "://*."):
			scheme, host, _ := strings.Cut(origin, "://*.")
			p.suffixes = append(p.suffixes, scheme+"://|."+host)
		default:
			p.exact[origin] = struct{}{}
		}
	}
	return p
}

// Allows reports whether origin may read responses.
func (p Policy) Allows(origin string) bool {
	if p.any {
		return true
	}
	origin = strings.ToLower(strings.TrimRight(origin, "/"))
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, s := range p.suffixes {
		scheme, suffix, _ := strings.Cut(s, "|")
		if strings.HasPrefix(origin, scheme) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

var headers = map[string]string{
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Allow-Headers":     "Authorization, Content-Type, X-Request-ID",
	"Access-Control-Allow-Methods":     "GET, POST, OPTIONS",
	"Access-Control-Expose-Headers":    "X-Request-ID, X-Insight-Source",
	"Access-Control-Max-Age":           "600",
}

// New returns middleware enforcing NewPolicy(allowedOrigins). Preflight
// requests end with 204.
func New(allowedOrigins []string) gin.HandlerFunc {
	policy := NewPolicy(allowedOrigins)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if origin != "" && policy.Allows(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			for k, v := range headers {
				h.Set(k, v)
			}
		}

		if c.Request.Method == http.MethodOptions && origin != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
