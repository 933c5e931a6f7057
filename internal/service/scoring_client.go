package service

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/config"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/middleware/requestid"
)

// ScoringServiceName is reported by the health endpoint.
const ScoringServiceName = "LMS AI Performance Analysis"

const maxScoringResponse = 4 << 20

// InsightKind names one analysis the scoring service can produce.
type InsightKind string

const (
	KindPerformance            InsightKind = "performance"
	KindTrends                 InsightKind = "trends"
	KindContentRecommendations InsightKind = "content_recommendations"
	KindLearningPath           InsightKind = "learning_path"
	KindBehavior               InsightKind = "behavior"
	KindStudyPlan              InsightKind = "study_plan"
	KindComprehensive          InsightKind = "comprehensive"
	KindPredictions            InsightKind = "predictions"
	KindTutoring               InsightKind = "tutoring"
	KindAdaptive               InsightKind = "adaptive"
	KindClassPerformance       InsightKind = "class_performance"
	KindAtRisk                 InsightKind = "at_risk"
)

type scoringEndpoint struct {
	path   string
	schema string
}

var scoringEndpoints = map[InsightKind]scoringEndpoint{
	KindPerformance:            {path: "/analyze-performance", schema: "performance"},
	KindTrends:                 {path: "/analyze-performance", schema: "performance"},
	KindContentRecommendations: {path: "/content-recommendations", schema: "content_recommendations"},
	KindLearningPath:           {path: "/learning-path", schema: "learning_path"},
	KindBehavior:               {path: "/behavior-analysis", schema: "behavior"},
	KindStudyPlan:              {path: "/study-plan", schema: "study_plan"},
	KindComprehensive:          {path: "/comprehensive-insights", schema: "comprehensive"},
	KindPredictions:            {path: "/comprehensive-insights", schema: "comprehensive"},
	KindTutoring:               {path: "/comprehensive-insights", schema: "comprehensive"},
	KindAdaptive:               {path: "/comprehensive-insights", schema: "comprehensive"},
	KindClassPerformance:       {path: "/analyze-class-performance", schema: "class_performance"},
	KindAtRisk:                 {path: "/analyze-class-performance", schema: "class_performance"},
}

//go:embed schemas/*.json
var schemaFS embed.FS

var schemaCache sync.Map // map[string]*jsonschema.Schema

// ScoreRecord is one assessment as the scoring service expects it.
type ScoreRecord struct {
	StudentID      string  `json:"student_id"`
	Topic          string  `json:"topic"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"max_score"`
	Date           string  `json:"date"`
	AssignmentType string  `json:"assignment_type"`
}

// StudentScoringRequest is the body of every per-student call.
type StudentScoringRequest struct {
	StudentID    string        `json:"student_id"`
	Scores       []ScoreRecord `json:"scores"`
	TargetTopic  string        `json:"target_topic,omitempty"`
	TargetTopics []string      `json:"target_topics,omitempty"`
}

// ClassScoringEntry is one element of the class analysis body.
type ClassScoringEntry struct {
	StudentID string        `json:"student_id"`
	Scores    []ScoreRecord `json:"scores"`
}

func toScoreRecords(studentID string, records []models.AssessmentRecord) []ScoreRecord {
	out := make([]ScoreRecord, len(records))
	for i, r := range records {
		out[i] = ScoreRecord{
			StudentID:      studentID,
			Topic:          r.Topic,
			Score:          r.Score,
			MaxScore:       r.MaxScore,
			Date:           r.Date.String(),
			AssignmentType: r.AssignmentType,
		}
	}
	return out
}

// UpstreamError reports a failed or unusable scoring call. It never reaches
// API clients; the orchestrator falls back on it.
type UpstreamError struct {
	Kind   InsightKind
	Status int
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("scoring %s: %s", e.Kind, e.Reason)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Fallback reasons.
const (
	reasonDisabled  = "disabled"
	reasonTransport = "transport"
	reasonStatus    = "status"
	reasonMalformed = "malformed"
)

func fallbackReason(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Reason
	}
	return reasonTransport
}

// ScoringClient calls the external scoring service over HTTP.
type ScoringClient struct {
	baseURL string
	http    *http.Client
	metrics *MetricsService
	logger  *zap.Logger
}

// NewScoringClient constructs a client from configuration.
func NewScoringClient(cfg config.ScoringConfig, metrics *MetricsService, logger *zap.Logger) *ScoringClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		metrics: metrics,
		logger:  logger,
	}
}

// Call posts body to the endpoint for kind and returns the validated payload.
// There are no retries.
func (c *ScoringClient) Call(ctx context.Context, kind InsightKind, body interface{}) (json.RawMessage, error) {
	endpoint, ok := scoringEndpoints[kind]
	if !ok {
		return nil, &UpstreamError{Kind: kind, Reason: reasonMalformed, Err: fmt.Errorf("unknown insight kind")}
	}

	ctx, span := otel.Tracer("lms-insights/scoring").Start(ctx, "scoring."+string(kind), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("scoring.path", endpoint.path))

	start := time.Now()
	raw, err := c.post(ctx, kind, endpoint, body)
	c.metrics.ObserveScoringCall(string(kind), err == nil, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return raw, nil
}

func (c *ScoringClient) post(ctx context.Context, kind InsightKind, endpoint scoringEndpoint, body interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint.path, bytes.NewReader(payload))
	if err != nil {
		return nil, &UpstreamError{Kind: kind, Reason: reasonTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Kind: kind, Reason: reasonTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxScoringResponse))
	if err != nil {
		return nil, &UpstreamError{Kind: kind, Status: resp.StatusCode, Reason: reasonTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Kind: kind, Status: resp.StatusCode, Reason: reasonStatus}
	}
	if err := validatePayload(endpoint.schema, raw); err != nil {
		return nil, &UpstreamError{Kind: kind, Status: resp.StatusCode, Reason: reasonMalformed, Err: err}
	}
	return json.RawMessage(raw), nil
}

// Health probes GET /health. It never fails; problems are reported in the
// returned status.
func (c *ScoringClient) Health(ctx context.Context) models.ScoringHealth {
	status := models.ScoringHealth{Service: ScoringServiceName}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	resp, err := c.http.Do(req)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status.Error = fmt.Sprintf("scoring service returned status %d", resp.StatusCode)
		return status
	}

	var body struct {
		Healthy *bool  `json:"healthy"`
		Status  string `json:"status"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxScoringResponse))
	if err := json.Unmarshal(raw, &body); err != nil {
		status.Healthy = true
		return status
	}
	switch {
	case body.Healthy != nil:
		status.Healthy = *body.Healthy
	case body.Status == "":
		status.Healthy = true
	default:
		s := strings.ToLower(body.Status)
		status.Healthy = s == "healthy" || s == "ok"
	}
	if !status.Healthy {
		status.Error = "scoring service reports unhealthy"
	}
	return status
}

// validatePayload checks raw against the named embedded schema.
func validatePayload(name string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compiledSchema(name)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	data, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, err
	}
	var def any
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
