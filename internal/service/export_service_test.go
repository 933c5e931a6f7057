package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/storage"
)

type stubAtRisk struct {
	result Result[models.AtRiskReport]
	err    error
}

func (s stubAtRisk) AtRisk(ctx context.Context, classID string, filter models.AssessmentFilter) (Result[models.AtRiskReport], error) {
	return s.result, s.err
}

func localAtRiskResult() Result[models.AtRiskReport] {
	return Result[models.AtRiskReport]{
		Source: SourceLocal,
		Local: models.AtRiskReport{
			ClassID:       "class1",
			TotalStudents: 3,
			AtRiskStudents: []models.AtRiskStudent{
				{
					StudentID:               "class1_s2",
					RiskLevel:               models.RiskHigh,
					OverallPerformance:      48.5,
					WeakTopics:              []string{"algebra", "geometry"},
					RiskFactors:             []string{"Low overall performance (48.5%)"},
					InterventionSuggestions: []string{"Schedule one-on-one tutoring"},
					LastAssessmentDate:      "2024-01-10",
					TotalAssessments:        2,
				},
			},
		},
	}
}

func newExportServiceForTest(t *testing.T, provider atRiskProvider) (*ExportService, *storage.LocalStorage, *MetricsService) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	metrics := NewMetricsService()
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(provider, store, signer, ExportConfig{APIPrefix: "/api/v1", Retention: time.Hour}, metrics, zap.NewNop())
	return svc, store, metrics
}

func tokenFrom(t *testing.T, downloadURL string) string {
	t.Helper()
	u, err := url.Parse(downloadURL)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/insights/exports/download", u.Path)
	return u.Query().Get("token")
}

func TestExportAtRiskCSV(t *testing.T) {
	svc, _, metrics := newExportServiceForTest(t, stubAtRisk{result: localAtRiskResult()})

	res, err := svc.ExportAtRisk(context.Background(), "class1", models.AssessmentFilter{}, models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "local", res.Source)
	assert.Equal(t, 1, res.Rows)
	assert.NotEmpty(t, res.ID)

	dl, err := svc.Resolve(tokenFrom(t, res.DownloadURL))
	require.NoError(t, err)
	defer dl.File.Close() //nolint:errcheck
	assert.Equal(t, "text/csv", dl.ContentType)
	assert.True(t, strings.HasPrefix(dl.Filename, "class1_"))

	rows, err := csv.NewReader(dl.File).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Student ID", rows[0][0])
	assert.Equal(t, []string{"class1_s2", "high", "48.5", "algebra, geometry", "Low overall performance (48.5%)", "Schedule one-on-one tutoring", "2024-01-10", "2"}, rows[1])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exports.WithLabelValues("csv")))
}

func TestExportAtRiskDecodesRemotePayload(t *testing.T) {
	remote, err := json.Marshal(map[string]interface{}{
		"class_id":       "class1",
		"total_students": 2,
		"at_risk_students": []map[string]interface{}{
			{"student_id": "class1_s9", "risk_level": "medium", "overall_performance": 66.25, "weak_topics": []string{"physics"}},
		},
	})
	require.NoError(t, err)
	svc, _, _ := newExportServiceForTest(t, stubAtRisk{result: Result[models.AtRiskReport]{Source: SourceRemote, Remote: remote}})

	res, err := svc.ExportAtRisk(context.Background(), "class1", models.AssessmentFilter{}, models.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "remote", res.Source)
	assert.Equal(t, 1, res.Rows)

	dl, err := svc.Resolve(tokenFrom(t, res.DownloadURL))
	require.NoError(t, err)
	defer dl.File.Close() //nolint:errcheck
	assert.Equal(t, "application/pdf", dl.ContentType)
	head := make([]byte, 4)
	_, err = io.ReadFull(dl.File, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestExportAtRiskErrors(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, stubAtRisk{result: localAtRiskResult()})
	_, err := svc.ExportAtRisk(context.Background(), "class1", models.AssessmentFilter{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	notFound := appErrors.Clone(appErrors.ErrNotFound, "no students found for class nope")
	svc, _, _ = newExportServiceForTest(t, stubAtRisk{err: notFound})
	_, err = svc.ExportAtRisk(context.Background(), "nope", models.AssessmentFilter{}, models.ExportFormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestResolveRejectsBadTokensAndMissingFiles(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t, stubAtRisk{result: localAtRiskResult()})

	_, err := svc.Resolve("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	res, err := svc.ExportAtRisk(context.Background(), "class1", models.AssessmentFilter{}, models.ExportFormatCSV)
	require.NoError(t, err)
	token := tokenFrom(t, res.DownloadURL)

	deleted, err := store.CleanupOlderThan(-time.Hour)
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	_, err = svc.Resolve(token)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportCleanupHonoursRetention(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t, stubAtRisk{result: localAtRiskResult()})

	_, err := store.Save("at-risk/old.csv", []byte("x"))
	require.NoError(t, err)
	_, err = store.Save("at-risk/new.csv", []byte("y"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path("at-risk/old.csv"), past, past))

	require.NoError(t, svc.Cleanup(context.Background()))

	_, err = os.Stat(store.Path("at-risk/old.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.Path("at-risk/new.csv"))
	assert.NoError(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "class-1_a-b", sanitizeFilename("class/1 a.b"))
}
