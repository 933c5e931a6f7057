package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/dto"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/service"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/response"
)

type classInsights interface {
	ClassPerformance(ctx context.Context, classID string, filter models.AssessmentFilter) (service.Result[models.ClassSummary], error)
	AtRisk(ctx context.Context, classID string, filter models.AssessmentFilter) (service.Result[models.AtRiskReport], error)
}

type atRiskExporter interface {
	ExportAtRisk(ctx context.Context, classID string, filter models.AssessmentFilter, format models.ExportFormat) (*models.ExportResult, error)
	Resolve(token string) (*service.ExportDownload, error)
}

// ClassHandler serves class-level insights and their exports.
type ClassHandler struct {
	insights classInsights
	exports  atRiskExporter
}

// NewClassHandler constructs the handler. A nil exporter disables export routes.
func NewClassHandler(insights classInsights, exports atRiskExporter) *ClassHandler {
	return &ClassHandler{insights: insights, exports: exports}
}

// Performance godoc
// @Summary Class performance
// @Tags Classes
// @Produce json
// @Param classId path string true "Class ID"
// @Param from query string false "Earliest assessment date (YYYY-MM-DD)"
// @Param to query string false "Latest assessment date (YYYY-MM-DD)"
// @Param assignment_type query string false "Assignment type"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /insights/classes/{classId}/performance [get]
func (h *ClassHandler) Performance(c *gin.Context) {
	var q dto.InsightQuery
	if !bindQuery(c, &q) {
		return
	}
	serveInsight(c, "classId", q, h.insights.ClassPerformance)
}

// AtRisk godoc
// @Summary At-risk students of a class
// @Tags Classes
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /insights/classes/{classId}/at-risk [get]
func (h *ClassHandler) AtRisk(c *gin.Context) {
	var q dto.InsightQuery
	if !bindQuery(c, &q) {
		return
	}
	serveInsight(c, "classId", q, h.insights.AtRisk)
}

// ExportAtRisk godoc
// @Summary Export the at-risk listing
// @Tags Classes
// @Produce json
// @Param classId path string true "Class ID"
// @Param format query string true "csv or pdf"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /insights/classes/{classId}/at-risk/export [post]
func (h *ClassHandler) ExportAtRisk(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	classID := strings.TrimSpace(c.Param("classId"))
	if classID == "" {
		response.Error(c, appErrors.Invalid("classId is required"))
		return
	}
	var q dto.ExportQuery
	if !bindQuery(c, &q) {
		return
	}
	if err := q.Validate(); err != nil {
		response.Error(c, appErrors.Invalid(err.Error()))
		return
	}
	filter, err := q.Filter()
	if err != nil {
		response.Error(c, appErrors.Invalid(err.Error()))
		return
	}
	result, err := h.exports.ExportAtRisk(c.Request.Context(), classID, filter, models.ExportFormat(q.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an export
// @Tags Classes
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /insights/exports/download [get]
func (h *ClassHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Invalid("token is required"))
		return
	}
	dl, err := h.exports.Resolve(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer dl.File.Close() //nolint:errcheck

	var size int64 = -1
	if info, err := dl.File.Stat(); err == nil {
		size = info.Size()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, dl.ContentType, dl.File, nil)
}
