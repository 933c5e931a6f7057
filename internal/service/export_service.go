package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/export"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/jobs"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/storage"
)

// JobKindExportCleanup purges expired export files.
const JobKindExportCleanup = "exports.cleanup"

type atRiskProvider interface {
	AtRisk(ctx context.Context, classID string, filter models.AssessmentFilter) (Result[models.AtRiskReport], error)
}

type exportStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	Retention time.Duration
}

// ExportDownload is an opened export file ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportService renders at-risk listings to files and hands out signed links.
type ExportService struct {
	insights atRiskProvider
	store    exportStore
	signer   *storage.SignedURLSigner
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

func NewExportService(insights atRiskProvider, store exportStore, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		insights: insights,
		store:    store,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ExportAtRisk renders the at-risk listing of a class and stores it.
func (s *ExportService) ExportAtRisk(ctx context.Context, classID string, filter models.AssessmentFilter, format models.ExportFormat) (*models.ExportResult, error) {
	renderer, err := export.ForFormat(string(format))
	if err != nil {
		return nil, appErrors.Invalid("format must be csv or pdf")
	}

	res, err := s.insights.AtRisk(ctx, classID, filter)
	if err != nil {
		return nil, err
	}
	report, err := atRiskReport(res)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to read at-risk listing")
	}

	table := atRiskTable(classID, report)
	data, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	id := uuid.NewString()
	name := fmt.Sprintf("at-risk/%s_%s_%s.%s", sanitizeFilename(classID), s.now().UTC().Format("20060102_150405"), id[:8], renderer.Extension())
	stored, err := s.store.Save(name, data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store export")
	}
	token, expiresAt, err := s.signer.Sign(id, stored)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign export link")
	}

	s.metrics.RecordExport(string(format))
	s.logger.Info("at-risk export generated",
		zap.String("export_id", id),
		zap.String("class_id", classID),
		zap.String("format", string(format)),
		zap.String("source", string(res.Source)),
		zap.Int("rows", len(table.Rows)),
	)

	return &models.ExportResult{
		ID:          id,
		ClassID:     classID,
		Format:      format,
		Source:      string(res.Source),
		DownloadURL: s.downloadURL(token),
		ExpiresAt:   expiresAt,
		Rows:        len(table.Rows),
	}, nil
}

// Resolve verifies a download token and opens the referenced file.
func (s *ExportService) Resolve(token string) (*ExportDownload, error) {
	claims, err := s.signer.Verify(token)
	if errors.Is(err, storage.ErrTokenExpired) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download token expired")
	}
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	f, err := s.store.Open(claims.Name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open export")
	}

	contentType := "application/octet-stream"
	if r, err := export.ForFormat(strings.TrimPrefix(path.Ext(claims.Name), ".")); err == nil {
		contentType = r.ContentType()
	}
	return &ExportDownload{
		File:        f,
		Filename:    path.Base(claims.Name),
		ContentType: contentType,
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// Cleanup removes exports older than the retention window.
func (s *ExportService) Cleanup(ctx context.Context) error {
	deleted, err := s.store.CleanupOlderThan(s.cfg.Retention)
	if err != nil {
		return err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
	return nil
}

// ScheduleCleanup registers the cleanup handler and runs it every interval.
// The queue must already be started.
func (s *ExportService) ScheduleCleanup(q *jobs.Queue, interval time.Duration) error {
	q.Handle(JobKindExportCleanup, func(ctx context.Context, _ jobs.Job) error {
		return s.Cleanup(ctx)
	})
	return q.Every(interval, jobs.Job{ID: JobKindExportCleanup, Kind: JobKindExportCleanup})
}

func (s *ExportService) downloadURL(token string) string {
	return strings.TrimRight(s.cfg.APIPrefix, "/") + "/insights/exports/download?token=" + url.QueryEscape(token)
}

// atRiskReport decodes remote listings into the typed report so both
// sources render the same columns.
func atRiskReport(res Result[models.AtRiskReport]) (models.AtRiskReport, error) {
	if res.Source != SourceRemote {
		return res.Local, nil
	}
	var report models.AtRiskReport
	if err := json.Unmarshal(res.Remote, &report); err != nil {
		return models.AtRiskReport{}, err
	}
	return report, nil
}

var atRiskColumns = []export.Column{
	{Label: "Student ID", Weight: 1.2},
	{Label: "Risk Level", Weight: 0.8},
	{Label: "Overall (%)", Weight: 0.8},
	{Label: "Weak Topics", Weight: 1.6},
	{Label: "Risk Factors", Weight: 2.4},
	{Label: "Interventions", Weight: 2.8},
	{Label: "Last Assessment", Weight: 1},
	{Label: "Assessments", Weight: 0.8},
}

func atRiskTable(classID string, report models.AtRiskReport) export.Table {
	table := export.Table{
		Title:   fmt.Sprintf("At-risk students: %s", classID),
		Columns: atRiskColumns,
		Rows:    make([][]string, 0, len(report.AtRiskStudents)),
	}
	for _, st := range report.AtRiskStudents {
		table.Rows = append(table.Rows, []string{
			st.StudentID,
			string(st.RiskLevel),
			strconv.FormatFloat(st.OverallPerformance, 'f', 1, 64),
			strings.Join(st.WeakTopics, ", "),
			strings.Join(st.RiskFactors, "; "),
			strings.Join(st.InterventionSuggestions, "; "),
			st.LastAssessmentDate,
			strconv.Itoa(st.TotalAssessments),
		})
	}
	return table
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", ".", "-")
	result := replacer.Replace(raw)
	if len(result) > 64 {
		return result[:64]
	}
	return result
}
