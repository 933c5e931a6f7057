package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/analysis"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
)

type fakeSource struct {
	students map[string][]models.AssessmentRecord
	order    []string
	err      error
	calls    int
}

func (f *fakeSource) StudentRecords(ctx context.Context, studentID string, filter models.AssessmentFilter) ([]models.AssessmentRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return filter.Apply(f.students[studentID]), nil
}

func (f *fakeSource) ClassRecords(ctx context.Context, classID string, filter models.AssessmentFilter) ([]models.StudentRecords, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.StudentRecords
	for _, id := range f.order {
		if len(id) > len(classID) && id[:len(classID)+1] == classID+"_" {
			out = append(out, models.StudentRecords{StudentID: id, Records: filter.Apply(f.students[id])})
		}
	}
	return out, nil
}

type fakeScorer struct {
	payloads map[InsightKind]string
	err      error
	health   models.ScoringHealth
	bodies   []interface{}
}

func (f *fakeScorer) Call(ctx context.Context, kind InsightKind, body interface{}) (json.RawMessage, error) {
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	payload, ok := f.payloads[kind]
	if !ok {
		return nil, &UpstreamError{Kind: kind, Reason: reasonStatus, Status: 404}
	}
	return json.RawMessage(payload), nil
}

func (f *fakeScorer) Health(ctx context.Context) models.ScoringHealth { return f.health }

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{items: map[string][]byte{}} }

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.items)
	m.items = map[string][]byte{}
	return n, nil
}

func record(student, topic string, score float64, date string) models.AssessmentRecord {
	r := models.AssessmentRecord{StudentID: student, Topic: topic, Score: score, MaxScore: 100, AssignmentType: "quiz"}
	if date != "" {
		r.Date, _ = models.ParseDate(date)
	}
	return r
}

func sampleSource() *fakeSource {
	return &fakeSource{
		order: []string{"class1_student1", "class1_student2", "class1_student3"},
		students: map[string][]models.AssessmentRecord{
			"class1_student1": {
				record("class1_student1", "algebra", 85, "2024-01-15"),
				record("class1_student1", "physics", 78, "2024-01-16"),
				record("class1_student1", "algebra", 92, "2024-01-20"),
			},
			"class1_student2": {
				record("class1_student2", "algebra", 45, "2024-01-15"),
				record("class1_student2", "physics", 52, "2024-01-18"),
			},
			"class1_student3": {
				record("class1_student3", "chemistry", 68, "2024-01-17"),
				record("class1_student3", "physics", 72, "2024-01-19"),
			},
		},
	}
}

func newTestInsights(t *testing.T, source AssessmentSource, scorer Scorer, cache CacheRepository) (*InsightsService, *MetricsService, *observer.ObservedLogs) {
	t.Helper()
	engine, err := analysis.NewEngine(nil)
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)
	metrics := NewMetricsService()
	var cacheSvc *CacheService
	if cache != nil {
		cacheSvc = NewCacheService(cache, metrics, time.Minute, logger, true)
	}
	return NewInsightsService(source, scorer, engine, cacheSvc, metrics, logger), metrics, logs
}

func TestPerformanceUsesRemotePayloadVerbatim(t *testing.T) {
	remote := `{"student_id":"class1_student1","overall_performance":88.1,"trend":"improving","risk_level":"low","weaknesses":[],"recommendations":["keep going"]}`
	scorer := &fakeScorer{payloads: map[InsightKind]string{KindPerformance: remote}}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)

	res, err := svc.Performance(context.Background(), "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.JSONEq(t, remote, string(res.Remote))

	require.Len(t, scorer.bodies, 1)
	body := scorer.bodies[0].(StudentScoringRequest)
	assert.Equal(t, "class1_student1", body.StudentID)
	require.Len(t, body.Scores, 3)
	assert.Equal(t, "2024-01-15", body.Scores[0].Date)
	assert.Equal(t, "class1_student1", body.Scores[0].StudentID)
}

func TestPerformanceFallsBackLocally(t *testing.T) {
	scorer := &fakeScorer{err: &UpstreamError{Kind: KindPerformance, Reason: reasonTransport, Err: errors.New("connection refused")}}
	svc, metrics, logs := newTestInsights(t, sampleSource(), scorer, nil)

	res, err := svc.Performance(context.Background(), "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, 85.0, res.Local.OverallPerformance)
	assert.Equal(t, models.RiskLow, res.Local.RiskLevel)
	assert.Equal(t, uint64(1), metrics.Snapshot().Fallbacks)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "transport", entry.ContextMap()["reason"])
	assert.Equal(t, "performance", entry.ContextMap()["kind"])
}

func TestFallbackIsIdempotent(t *testing.T) {
	svc, _, _ := newTestInsights(t, sampleSource(), nil, nil)

	first, err := svc.Comprehensive(context.Background(), "class1_student2", models.AssessmentFilter{})
	require.NoError(t, err)
	second, err := svc.Comprehensive(context.Background(), "class1_student2", models.AssessmentFilter{})
	require.NoError(t, err)

	a, _ := json.Marshal(first.Payload())
	b, _ := json.Marshal(second.Payload())
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, SourceLocal, first.Source)
}

func TestFallbackIsIdempotentWhenRemoteUnreachable(t *testing.T) {
	scorer := &fakeScorer{err: &UpstreamError{Kind: KindComprehensive, Reason: reasonTransport, Err: errors.New("dial tcp 127.0.0.1:5000: connection refused")}}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)
	ctx := context.Background()

	first, err := svc.Comprehensive(ctx, "class1_student2", models.AssessmentFilter{})
	require.NoError(t, err)
	second, err := svc.Comprehensive(ctx, "class1_student2", models.AssessmentFilter{})
	require.NoError(t, err)

	assert.Equal(t, SourceLocal, first.Source)
	assert.Equal(t, SourceLocal, second.Source)
	assert.Len(t, scorer.bodies, 2, "each request tries the remote first")
	a, _ := json.Marshal(first.Payload())
	b, _ := json.Marshal(second.Payload())
	assert.JSONEq(t, string(a), string(b))
}

func TestUnknownStudentIsNotFound(t *testing.T) {
	scorer := &fakeScorer{}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)

	_, err := svc.Behavior(context.Background(), "class1_ghost", models.AssessmentFilter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, scorer.bodies, "no remote call without records")
}

func TestFilterLeavingNoRecordsIsNotFound(t *testing.T) {
	svc, _, _ := newTestInsights(t, sampleSource(), nil, nil)
	from, _ := models.ParseDate("2025-01-01")

	_, err := svc.Performance(context.Background(), "class1_student1", models.AssessmentFilter{From: &from})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSourceErrorIsInternal(t *testing.T) {
	source := sampleSource()
	source.err = errors.New("disk on fire")
	svc, _, _ := newTestInsights(t, source, nil, nil)

	_, err := svc.Performance(context.Background(), "class1_student1", models.AssessmentFilter{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestTrendsProjection(t *testing.T) {
	scorer := &fakeScorer{payloads: map[InsightKind]string{
		KindTrends: `{"student_id":"class1_student1","overall_performance":85,"trend":"stable","risk_level":"low","recommendations":["x"]}`,
	}}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)

	res, err := svc.Trends(context.Background(), "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"student_id":"class1_student1","overall_performance":85,"trend":{"trend_direction":"stable"},"risk_level":"low"}`, string(res.Remote))
}

func TestTrendsKeepTrendObject(t *testing.T) {
	scorer := &fakeScorer{payloads: map[InsightKind]string{
		KindTrends: `{"student_id":"class1_student1","overall_performance":85,"trend":{"trend_direction":"improving","trend_strength":"strong","recent_performance":92},"risk_level":"low"}`,
	}}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)

	res, err := svc.Trends(context.Background(), "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	require.Equal(t, SourceRemote, res.Source)

	var got models.StudentTrendReport
	require.NoError(t, json.Unmarshal(res.Remote, &got))
	assert.Equal(t, models.TrendImproving, got.Trend.Direction)
	assert.InDelta(t, 92.0, got.Trend.RecentPerformance, 0.001)
}

func TestComprehensiveProjections(t *testing.T) {
	payload := `{"student_id":"class1_student1","comprehensive_insights":{"predictions":{"next_performance":90},"tutoring":{"needed":false}}}`
	scorer := &fakeScorer{payloads: map[InsightKind]string{KindPredictions: payload, KindTutoring: payload, KindAdaptive: payload}}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)
	ctx := context.Background()

	predictions, err := svc.Predictions(ctx, "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, predictions.Source)
	assert.JSONEq(t, `{"student_id":"class1_student1","predictions":{"next_performance":90}}`, string(predictions.Remote))

	tutoring, err := svc.Tutoring(ctx, "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"student_id":"class1_student1","tutoring":{"needed":false}}`, string(tutoring.Remote))

	adaptive, err := svc.Adaptive(ctx, "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, adaptive.Source, "missing section falls back")
	assert.Equal(t, "increase", adaptive.Local.AdaptiveLearning.DifficultyAdjustment)
}

func TestTargetTopicsReachRemoteBody(t *testing.T) {
	scorer := &fakeScorer{}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)
	ctx := context.Background()

	recs, err := svc.ContentRecommendations(ctx, "class1_student1", models.AssessmentFilter{}, "algebra")
	require.NoError(t, err)
	assert.Equal(t, "algebra", recs.Local.TargetTopic)

	path, err := svc.LearningPath(ctx, "class1_student1", models.AssessmentFilter{}, []string{"algebra", "physics"})
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "physics"}, path.Local.TargetTopics)

	require.Len(t, scorer.bodies, 2)
	assert.Equal(t, "algebra", scorer.bodies[0].(StudentScoringRequest).TargetTopic)
	assert.Equal(t, []string{"algebra", "physics"}, scorer.bodies[1].(StudentScoringRequest).TargetTopics)
}

func TestClassPerformanceLocal(t *testing.T) {
	scorer := &fakeScorer{}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)

	res, err := svc.ClassPerformance(context.Background(), "class1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, 3, res.Local.TotalStudents)
	assert.Equal(t, []string{"class1_student1"}, res.Local.TopPerformers)

	require.Len(t, scorer.bodies, 1)
	body := scorer.bodies[0].([]ClassScoringEntry)
	assert.Len(t, body, 3)
}

func TestUnknownClassIsNotFound(t *testing.T) {
	svc, _, _ := newTestInsights(t, sampleSource(), nil, nil)

	_, err := svc.AtRisk(context.Background(), "class9", models.AssessmentFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAtRiskRemoteProjection(t *testing.T) {
	scorer := &fakeScorer{payloads: map[InsightKind]string{KindAtRisk: `{
		"total_students": 3,
		"student_analyses": [
			{"student_id":"class1_student1","overall_performance":85,"risk_level":"low"},
			{"student_id":"class1_student2","overall_performance":48.5,"risk_level":"high"},
			{"student_id":"class1_student3","overall_performance":70,"risk_level":"medium"}
		],
		"class_statistics": {}
	}`}}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)

	res, err := svc.AtRisk(context.Background(), "class1", models.AssessmentFilter{})
	require.NoError(t, err)
	require.Equal(t, SourceRemote, res.Source)

	var body struct {
		ClassID        string `json:"class_id"`
		TotalStudents  int    `json:"total_students"`
		AtRiskStudents []struct {
			StudentID string `json:"student_id"`
		} `json:"at_risk_students"`
	}
	require.NoError(t, json.Unmarshal(res.Remote, &body))
	assert.Equal(t, "class1", body.ClassID)
	assert.Equal(t, 3, body.TotalStudents)
	require.Len(t, body.AtRiskStudents, 2)
	assert.Equal(t, "class1_student2", body.AtRiskStudents[0].StudentID)
}

func TestAtRiskLocalListsEveryStudent(t *testing.T) {
	svc, _, _ := newTestInsights(t, sampleSource(), nil, nil)

	res, err := svc.AtRisk(context.Background(), "class1", models.AssessmentFilter{})
	require.NoError(t, err)
	require.Len(t, res.Local.AtRiskStudents, 3)
	assert.Equal(t, "class1_student2", res.Local.AtRiskStudents[0].StudentID)
	assert.Equal(t, models.RiskHigh, res.Local.AtRiskStudents[0].RiskLevel)
	assert.Equal(t, 1, res.Local.Summary.HighRiskCount)
}

func TestCacheStoresBothSources(t *testing.T) {
	cache := newMemoryCache()
	source := sampleSource()
	scorer := &fakeScorer{payloads: map[InsightKind]string{
		KindPerformance: `{"student_id":"class1_student1","overall_performance":85,"trend":"stable","risk_level":"low"}`,
	}}
	svc, metrics, _ := newTestInsights(t, source, scorer, cache)
	ctx := context.Background()

	first, err := svc.Performance(ctx, "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.Performance(ctx, "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, SourceRemote, second.Source)
	assert.JSONEq(t, string(first.Remote), string(second.Remote))
	assert.Len(t, scorer.bodies, 1)
	assert.Equal(t, 1, source.calls, "cache hit skips loading")

	local, err := svc.Behavior(ctx, "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	again, err := svc.Behavior(ctx, "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, SourceLocal, again.Source)
	assert.Equal(t, local.Local, again.Local)

	require.NoError(t, svc.Invalidate(ctx))
	third, err := svc.Performance(ctx, "class1_student1", models.AssessmentFilter{})
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Equal(t, uint64(2), metrics.Snapshot().CacheHits)
}

func TestHealth(t *testing.T) {
	scorer := &fakeScorer{health: models.ScoringHealth{Healthy: true, Service: ScoringServiceName}}
	svc, _, _ := newTestInsights(t, sampleSource(), scorer, nil)
	assert.True(t, svc.Health(context.Background()).Healthy)

	disabled, _, _ := newTestInsights(t, sampleSource(), nil, nil)
	health := disabled.Health(context.Background())
	assert.False(t, health.Healthy)
	assert.Equal(t, ScoringServiceName, health.Service)
	assert.NotEmpty(t, health.Error)
}
