package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/service"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/response"
)

type scoringHealth interface {
	Health(ctx context.Context) models.ScoringHealth
}

// ReadinessCheck probes one dependency.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// MetricsHandler exposes health and observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	scoring scoringHealth
	checks  []ReadinessCheck
}

func NewMetricsHandler(metrics *service.MetricsService, scoring scoringHealth, checks ...ReadinessCheck) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, scoring: scoring, checks: checks}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary godoc
// @Summary Metrics summary
// @Tags Observability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/summary [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot())
}

// Health responds with a static OK for liveness probes.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready runs every readiness check and answers 503 when any fails.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}
	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}

// ScoringHealth godoc
// @Summary Scoring service health
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /insights/health [get]
func (h *MetricsHandler) ScoringHealth(c *gin.Context) {
	if h.scoring == nil {
		response.JSON(c, http.StatusOK, models.ScoringHealth{Healthy: false, Service: service.ScoringServiceName, Error: "scoring service not configured"})
		return
	}
	response.JSON(c, http.StatusOK, h.scoring.Health(c.Request.Context()))
}
