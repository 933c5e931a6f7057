package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/analysis"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
)

// Source tells where an insight payload came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Result carries either the verbatim remote payload or the local analysis.
type Result[T any] struct {
	Source   Source
	Remote   json.RawMessage
	Local    T
	CacheHit bool
}

// Payload returns the value to serialise for clients.
func (r Result[T]) Payload() interface{} {
	if r.Source == SourceRemote {
		return r.Remote
	}
	return r.Local
}

// cachedInsight is the cache representation of a Result.
type cachedInsight struct {
	Source  Source          `json:"source"`
	Payload json.RawMessage `json:"payload"`
}

// AssessmentSource loads assessment records.
type AssessmentSource interface {
	StudentRecords(ctx context.Context, studentID string, filter models.AssessmentFilter) ([]models.AssessmentRecord, error)
	ClassRecords(ctx context.Context, classID string, filter models.AssessmentFilter) ([]models.StudentRecords, error)
}

// Scorer is the remote scoring service.
type Scorer interface {
	Call(ctx context.Context, kind InsightKind, body interface{}) (json.RawMessage, error)
	Health(ctx context.Context) models.ScoringHealth
}

// InsightsService produces insights from the scoring service when it answers
// with a usable payload and from the local engine otherwise.
type InsightsService struct {
	source  AssessmentSource
	scorer  Scorer
	engine  *analysis.Engine
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewInsightsService constructs the orchestrator. A nil scorer disables
// remote calls.
func NewInsightsService(source AssessmentSource, scorer Scorer, engine *analysis.Engine, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightsService{source: source, scorer: scorer, engine: engine, cache: cache, metrics: metrics, logger: logger}
}

// Engine exposes the local engine for exports and tooling.
func (s *InsightsService) Engine() *analysis.Engine {
	return s.engine
}

// cachedResult returns a previously stored result for key.
func cachedResult[T any](ctx context.Context, s *InsightsService, key string) (Result[T], bool) {
	var cached cachedInsight
	if !s.cache.Load(ctx, key, &cached) {
		return Result[T]{}, false
	}
	return fromCache[T](cached)
}

// orchestrate resolves a result remotely or locally and stores it under key.
// project reshapes a validated remote payload; nil keeps it verbatim.
func orchestrate[T any](
	ctx context.Context,
	s *InsightsService,
	kind InsightKind,
	subject string,
	key string,
	body func() interface{},
	project func(json.RawMessage) (json.RawMessage, error),
	local func() (T, error),
) (Result[T], error) {
	ctx, span := otel.Tracer("lms-insights/service").Start(ctx, "insights."+string(kind))
	defer span.End()
	span.SetAttributes(attribute.String("insights.subject", subject))

	res, err := resolve(ctx, s, kind, subject, body, project, local)
	if err != nil {
		return Result[T]{}, err
	}
	span.SetAttributes(attribute.String("insights.source", string(res.Source)))

	entry := cachedInsight{Source: res.Source, Payload: res.Remote}
	if res.Source == SourceLocal {
		if entry.Payload, err = json.Marshal(res.Local); err != nil {
			return res, nil
		}
	}
	s.cache.Store(ctx, key, entry)
	return res, nil
}

func resolve[T any](
	ctx context.Context,
	s *InsightsService,
	kind InsightKind,
	subject string,
	body func() interface{},
	project func(json.RawMessage) (json.RawMessage, error),
	local func() (T, error),
) (Result[T], error) {
	remote := s.callRemote(ctx, kind, body, project)
	if remote.payload != nil {
		return Result[T]{Source: SourceRemote, Remote: remote.payload}, nil
	}

	reason := reasonDisabled
	if remote.err != nil {
		reason = fallbackReason(remote.err)
		s.logger.Warn("scoring service unavailable, using local analysis",
			zap.String("kind", string(kind)),
			zap.String("subject", subject),
			zap.String("reason", reason),
			zap.Error(remote.err),
		)
	}
	s.metrics.RecordFallback(string(kind), reason)

	value, err := local()
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyRecords) {
			return Result[T]{}, appErrors.NotFoundf("no assessment data for %s", subject)
		}
		return Result[T]{}, err
	}
	return Result[T]{Source: SourceLocal, Local: value}, nil
}

type remoteOutcome struct {
	payload json.RawMessage
	err     error
}

func (s *InsightsService) callRemote(ctx context.Context, kind InsightKind, body func() interface{}, project func(json.RawMessage) (json.RawMessage, error)) remoteOutcome {
	if s.scorer == nil {
		return remoteOutcome{}
	}
	raw, err := s.scorer.Call(ctx, kind, body())
	if err != nil {
		return remoteOutcome{err: err}
	}
	if project == nil {
		return remoteOutcome{payload: raw}
	}
	projected, err := project(raw)
	if err != nil {
		return remoteOutcome{err: &UpstreamError{Kind: kind, Reason: reasonMalformed, Err: err}}
	}
	return remoteOutcome{payload: projected}
}

func fromCache[T any](entry cachedInsight) (Result[T], bool) {
	switch entry.Source {
	case SourceRemote:
		return Result[T]{Source: SourceRemote, Remote: entry.Payload, CacheHit: true}, true
	case SourceLocal:
		var v T
		if err := json.Unmarshal(entry.Payload, &v); err != nil {
			return Result[T]{}, false
		}
		return Result[T]{Source: SourceLocal, Local: v, CacheHit: true}, true
	default:
		return Result[T]{}, false
	}
}

func (s *InsightsService) studentRecords(ctx context.Context, studentID string, filter models.AssessmentFilter) ([]models.AssessmentRecord, error) {
	start := time.Now()
	records, err := s.source.StudentRecords(ctx, studentID, filter)
	s.metrics.ObserveRecordLoad("student", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load assessment records")
	}
	if len(records) == 0 {
		return nil, appErrors.NotFoundf("no assessment data for student %s", studentID)
	}
	return records, nil
}

func (s *InsightsService) classRecords(ctx context.Context, classID string, filter models.AssessmentFilter) ([]models.StudentRecords, error) {
	start := time.Now()
	students, err := s.source.ClassRecords(ctx, classID, filter)
	s.metrics.ObserveRecordLoad("class", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load assessment records")
	}
	for _, st := range students {
		if len(st.Records) > 0 {
			return students, nil
		}
	}
	return nil, appErrors.NotFoundf("no students found for class %s", classID)
}

func studentBody(studentID string, records []models.AssessmentRecord) StudentScoringRequest {
	return StudentScoringRequest{StudentID: studentID, Scores: toScoreRecords(studentID, records)}
}

func classBody(students []models.StudentRecords) []ClassScoringEntry {
	body := make([]ClassScoringEntry, 0, len(students))
	for _, st := range students {
		if len(st.Records) == 0 {
			continue
		}
		body = append(body, ClassScoringEntry{StudentID: st.StudentID, Scores: toScoreRecords(st.StudentID, st.Records)})
	}
	return body
}

// studentInsight is the common path of every per-student kind.
func studentInsight[T any](
	ctx context.Context,
	s *InsightsService,
	kind InsightKind,
	studentID string,
	filter models.AssessmentFilter,
	extra []string,
	build func(StudentScoringRequest) interface{},
	project func(json.RawMessage) (json.RawMessage, error),
	local func([]models.AssessmentRecord) (T, error),
) (Result[T], error) {
	key := insightKey(string(kind), studentID, filter.Key(), extra...)
	if res, ok := cachedResult[T](ctx, s, key); ok {
		return res, nil
	}

	records, err := s.studentRecords(ctx, studentID, filter)
	if err != nil {
		return Result[T]{}, err
	}

	return orchestrate(ctx, s, kind, studentID, key,
		func() interface{} { return build(studentBody(studentID, records)) },
		project,
		func() (T, error) { return local(records) },
	)
}

func sameBody(req StudentScoringRequest) interface{} { return req }

// Performance returns the basic performance analysis of a student.
func (s *InsightsService) Performance(ctx context.Context, studentID string, filter models.AssessmentFilter) (Result[models.PerformanceSummary], error) {
	return studentInsight(ctx, s, KindPerformance, studentID, filter, nil, sameBody, nil,
		func(records []models.AssessmentRecord) (models.PerformanceSummary, error) {
			return s.engine.Performance(studentID, records)
		})
}

// Trends returns the trend view of a student.
func (s *InsightsService) Trends(ctx context.Context, studentID string, filter models.AssessmentFilter) (Result[models.StudentTrendReport], error) {
	return studentInsight(ctx, s, KindTrends, studentID, filter, nil, sameBody, projectTrends,
		func(records []models.AssessmentRecord) (models.StudentTrendReport, error) {
			return s.engine.Trends(studentID, records)
		})
}

// ContentRecommendations suggests content, optionally around a target topic.
func (s *InsightsService) ContentRecommendations(ctx context.Context, studentID string, filter models.AssessmentFilter, targetTopic string) (Result[models.ContentRecommendations], error) {
	build := func(req StudentScoringRequest) interface{} {
		req.TargetTopic = targetTopic
		return req
	}
	return studentInsight(ctx, s, KindContentRecommendations, studentID, filter, []string{"topic=" + targetTopic}, build, nil,
		func(records []models.AssessmentRecord) (models.ContentRecommendations, error) {
			return s.engine.ContentRecommendations(studentID, records, targetTopic)
		})
}

// LearningPath orders topics to study.
func (s *InsightsService) LearningPath(ctx context.Context, studentID string, filter models.AssessmentFilter, targetTopics []string) (Result[models.LearningPath], error) {
	build := func(req StudentScoringRequest) interface{} {
		req.TargetTopics = targetTopics
		return req
	}
	return studentInsight(ctx, s, KindLearningPath, studentID, filter, []string{"topics=" + strings.Join(targetTopics, ",")}, build, nil,
		func(records []models.AssessmentRecord) (models.LearningPath, error) {
			return s.engine.LearningPath(studentID, records, targetTopics)
		})
}

// Behavior analyses learning behaviour.
func (s *InsightsService) Behavior(ctx context.Context, studentID string, filter models.AssessmentFilter) (Result[models.BehaviorReport], error) {
	return studentInsight(ctx, s, KindBehavior, studentID, filter, nil, sameBody, nil,
		func(records []models.AssessmentRecord) (models.BehaviorReport, error) {
			return s.engine.Behavior(studentID, records)
		})
}

// StudyPlan builds a personalised study plan.
func (s *InsightsService) StudyPlan(ctx context.Context, studentID string, filter models.AssessmentFilter) (Result[models.StudyPlanReport], error) {
	return studentInsight(ctx, s, KindStudyPlan, studentID, filter, nil, sameBody, nil,
		func(records []models.AssessmentRecord) (models.StudyPlanReport, error) {
			return s.engine.StudyPlan(studentID, records)
		})
}

// Comprehensive bundles every student insight.
func (s *InsightsService) Comprehensive(ctx context.Context, studentID string, filter models.AssessmentFilter) (Result[models.ComprehensiveReport], error) {
	return studentInsight(ctx, s, KindComprehensive, studentID, filter, nil, sameBody, nil,
		func(records []models.AssessmentRecord) (models.ComprehensiveReport, error) {
			return s.engine.Comprehensive(studentID, records)
		})
}

// Predictions projects future performance.
func (s *InsightsService) Predictions(ctx context.Context, studentID string, filter models.AssessmentFilter) (Result[models.PredictionReport], error) {
	return studentInsight(ctx, s, KindPredictions, studentID, filter, nil, sameBody, projectComprehensive(studentID, "predictions"),
		func(records []models.AssessmentRecord) (models.PredictionReport, error) {
			return s.engine.Predictions(studentID, records)
		})
}

// Tutoring recommends tutoring intensity.
func (s *InsightsService) Tutoring(ctx context.Context, studentID string, filter models.AssessmentFilter) (Result[models.TutoringReport], error) {
	return studentInsight(ctx, s, KindTutoring, studentID, filter, nil, sameBody, projectComprehensive(studentID, "tutoring"),
		func(records []models.AssessmentRecord) (models.TutoringReport, error) {
			return s.engine.Tutoring(studentID, records)
		})
}

// Adaptive suggests difficulty and pacing adjustments.
func (s *InsightsService) Adaptive(ctx context.Context, studentID string, filter models.AssessmentFilter) (Result[models.AdaptiveReport], error) {
	return studentInsight(ctx, s, KindAdaptive, studentID, filter, nil, sameBody, projectComprehensive(studentID, "adaptive_learning"),
		func(records []models.AssessmentRecord) (models.AdaptiveReport, error) {
			return s.engine.Adaptive(studentID, records)
		})
}

// ClassPerformance summarises a class.
func (s *InsightsService) ClassPerformance(ctx context.Context, classID string, filter models.AssessmentFilter) (Result[models.ClassSummary], error) {
	key := insightKey(string(KindClassPerformance), classID, filter.Key())
	if res, ok := cachedResult[models.ClassSummary](ctx, s, key); ok {
		return res, nil
	}
	students, err := s.classRecords(ctx, classID, filter)
	if err != nil {
		return Result[models.ClassSummary]{}, err
	}
	return orchestrate(ctx, s, KindClassPerformance, classID, key,
		func() interface{} { return classBody(students) },
		nil,
		func() (models.ClassSummary, error) { return s.engine.Class(ctx, classID, students) },
	)
}

// AtRisk lists students of a class by urgency.
func (s *InsightsService) AtRisk(ctx context.Context, classID string, filter models.AssessmentFilter) (Result[models.AtRiskReport], error) {
	key := insightKey(string(KindAtRisk), classID, filter.Key())
	if res, ok := cachedResult[models.AtRiskReport](ctx, s, key); ok {
		return res, nil
	}
	students, err := s.classRecords(ctx, classID, filter)
	if err != nil {
		return Result[models.AtRiskReport]{}, err
	}
	return orchestrate(ctx, s, KindAtRisk, classID, key,
		func() interface{} { return classBody(students) },
		projectAtRisk(classID),
		func() (models.AtRiskReport, error) { return s.engine.AtRisk(ctx, classID, students) },
	)
}

// Health reports scoring service reachability. It never fails.
func (s *InsightsService) Health(ctx context.Context) models.ScoringHealth {
	if s.scorer == nil {
		return models.ScoringHealth{Service: ScoringServiceName, Error: "scoring service disabled"}
	}
	return s.scorer.Health(ctx)
}

// Invalidate drops every cached insight.
func (s *InsightsService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, InsightsCachePattern)
}

func projectTrends(raw json.RawMessage) (json.RawMessage, error) {
	var perf map[string]json.RawMessage
	if err := json.Unmarshal(raw, &perf); err != nil {
		return nil, err
	}
	out := map[string]json.RawMessage{}
	for _, field := range []string{"student_id", "trend", "overall_performance", "risk_level"} {
		v, ok := perf[field]
		if !ok {
			return nil, fmt.Errorf("performance payload missing %s", field)
		}
		out[field] = v
	}
	trend, err := trendObject(out["trend"])
	if err != nil {
		return nil, err
	}
	out["trend"] = trend
	return json.Marshal(out)
}

// trendObject lifts a bare direction string into the trend object so
// /trends has one shape whichever side answered.
func trendObject(raw json.RawMessage) (json.RawMessage, error) {
	var direction string
	if err := json.Unmarshal(raw, &direction); err != nil {
		return raw, nil
	}
	return json.Marshal(map[string]string{"trend_direction": direction})
}

func projectComprehensive(studentID, field string) func(json.RawMessage) (json.RawMessage, error) {
	return func(raw json.RawMessage) (json.RawMessage, error) {
		var payload struct {
			Insights map[string]json.RawMessage `json:"comprehensive_insights"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
		section, ok := payload.Insights[field]
		if !ok || string(section) == "null" {
			return nil, fmt.Errorf("comprehensive payload missing %s", field)
		}
		return json.Marshal(map[string]interface{}{"student_id": studentID, field: section})
	}
}

func projectAtRisk(classID string) func(json.RawMessage) (json.RawMessage, error) {
	return func(raw json.RawMessage) (json.RawMessage, error) {
		var payload struct {
			TotalStudents   int               `json:"total_students"`
			StudentAnalyses []json.RawMessage `json:"student_analyses"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
		atRisk := make([]json.RawMessage, 0, len(payload.StudentAnalyses))
		for _, entry := range payload.StudentAnalyses {
			var probe struct {
				RiskLevel string `json:"risk_level"`
			}
			if err := json.Unmarshal(entry, &probe); err != nil {
				return nil, err
			}
			if probe.RiskLevel == string(models.RiskHigh) || probe.RiskLevel == string(models.RiskMedium) {
				atRisk = append(atRisk, entry)
			}
		}
		return json.Marshal(map[string]interface{}{
			"class_id":         classID,
			"at_risk_students": atRisk,
			"total_students":   payload.TotalStudents,
		})
	}
}
