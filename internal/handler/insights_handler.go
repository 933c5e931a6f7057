package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/dto"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/middleware"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/service"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/response"
)

type studentInsights interface {
	Performance(ctx context.Context, studentID string, filter models.AssessmentFilter) (service.Result[models.PerformanceSummary], error)
	Trends(ctx context.Context, studentID string, filter models.AssessmentFilter) (service.Result[models.StudentTrendReport], error)
	ContentRecommendations(ctx context.Context, studentID string, filter models.AssessmentFilter, targetTopic string) (service.Result[models.ContentRecommendations], error)
	LearningPath(ctx context.Context, studentID string, filter models.AssessmentFilter, targetTopics []string) (service.Result[models.LearningPath], error)
	Behavior(ctx context.Context, studentID string, filter models.AssessmentFilter) (service.Result[models.BehaviorReport], error)
	StudyPlan(ctx context.Context, studentID string, filter models.AssessmentFilter) (service.Result[models.StudyPlanReport], error)
	Comprehensive(ctx context.Context, studentID string, filter models.AssessmentFilter) (service.Result[models.ComprehensiveReport], error)
	Predictions(ctx context.Context, studentID string, filter models.AssessmentFilter) (service.Result[models.PredictionReport], error)
	Tutoring(ctx context.Context, studentID string, filter models.AssessmentFilter) (service.Result[models.TutoringReport], error)
	Adaptive(ctx context.Context, studentID string, filter models.AssessmentFilter) (service.Result[models.AdaptiveReport], error)
}

// InsightsHandler serves per-student insight endpoints.
type InsightsHandler struct {
	service studentInsights
}

func NewInsightsHandler(svc studentInsights) *InsightsHandler {
	return &InsightsHandler{service: svc}
}

// Performance godoc
// @Summary Student performance summary
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Param from query string false "Earliest assessment date (YYYY-MM-DD)"
// @Param to query string false "Latest assessment date (YYYY-MM-DD)"
// @Param assignment_type query string false "Assignment type"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /insights/students/{studentId}/performance [get]
func (h *InsightsHandler) Performance(c *gin.Context) {
	serveStudent(c, h.service.Performance)
}

// Trends godoc
// @Summary Student performance trend
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/trends [get]
func (h *InsightsHandler) Trends(c *gin.Context) {
	serveStudent(c, h.service.Trends)
}

// ContentRecommendations godoc
// @Summary Content recommendations
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Param topic query string false "Target topic"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/content-recommendations [get]
func (h *InsightsHandler) ContentRecommendations(c *gin.Context) {
	var q dto.ContentQuery
	if !bindQuery(c, &q) {
		return
	}
	if err := q.Validate(); err != nil {
		response.Error(c, appErrors.Invalid(err.Error()))
		return
	}
	serveStudentWith(c, q.InsightQuery, func(ctx context.Context, id string, f models.AssessmentFilter) (service.Result[models.ContentRecommendations], error) {
		return h.service.ContentRecommendations(ctx, id, f, strings.TrimSpace(q.Topic))
	})
}

// LearningPath godoc
// @Summary Learning path
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Param topics query string false "Comma separated target topics"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/learning-path [get]
func (h *InsightsHandler) LearningPath(c *gin.Context) {
	var q dto.LearningPathQuery
	if !bindQuery(c, &q) {
		return
	}
	serveStudentWith(c, q.InsightQuery, func(ctx context.Context, id string, f models.AssessmentFilter) (service.Result[models.LearningPath], error) {
		return h.service.LearningPath(ctx, id, f, q.TargetTopics())
	})
}

// Behavior godoc
// @Summary Learning behaviour
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/behavior [get]
func (h *InsightsHandler) Behavior(c *gin.Context) {
	serveStudent(c, h.service.Behavior)
}

// Predictions godoc
// @Summary Performance predictions
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/predictions [get]
func (h *InsightsHandler) Predictions(c *gin.Context) {
	serveStudent(c, h.service.Predictions)
}

// StudyPlan godoc
// @Summary Study plan
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/study-plan [get]
func (h *InsightsHandler) StudyPlan(c *gin.Context) {
	serveStudent(c, h.service.StudyPlan)
}

// Tutoring godoc
// @Summary Tutoring recommendations
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/tutoring [get]
func (h *InsightsHandler) Tutoring(c *gin.Context) {
	serveStudent(c, h.service.Tutoring)
}

// Adaptive godoc
// @Summary Adaptive learning settings
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/adaptive-learning [get]
func (h *InsightsHandler) Adaptive(c *gin.Context) {
	serveStudent(c, h.service.Adaptive)
}

// Comprehensive godoc
// @Summary Comprehensive insights
// @Tags Insights
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /insights/students/{studentId}/comprehensive [get]
func (h *InsightsHandler) Comprehensive(c *gin.Context) {
	serveStudent(c, h.service.Comprehensive)
}

func serveStudent[T any](c *gin.Context, fn func(context.Context, string, models.AssessmentFilter) (service.Result[T], error)) {
	var q dto.InsightQuery
	if !bindQuery(c, &q) {
		return
	}
	serveStudentWith(c, q, fn)
}

func serveStudentWith[T any](c *gin.Context, q dto.InsightQuery, fn func(context.Context, string, models.AssessmentFilter) (service.Result[T], error)) {
	serveInsight(c, "studentId", q, fn)
}

func serveInsight[T any](c *gin.Context, param string, q dto.InsightQuery, fn func(context.Context, string, models.AssessmentFilter) (service.Result[T], error)) {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		response.Error(c, appErrors.Invalid(param+" is required"))
		return
	}
	filter, err := q.Filter()
	if err != nil {
		response.Error(c, appErrors.Invalid(err.Error()))
		return
	}
	res, err := fn(c.Request.Context(), id, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetInsightSource(c, string(res.Source))
	middleware.SetCacheHit(c, res.CacheHit)
	response.JSON(c, http.StatusOK, res.Payload(), middleware.FinalizeMeta(c))
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, appErrors.Invalid("invalid query parameters"))
		return false
	}
	return true
}
