package analysis

import (
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// Engine computes local insights. It is safe for concurrent use.
type Engine struct {
	rules *Rulebook
}

// NewEngine returns an engine using the given rules. A nil rulebook falls back
// to the embedded defaults.
func NewEngine(rules *Rulebook) (*Engine, error) {
	if rules == nil {
		var err error
		if rules, err = DefaultRulebook(); err != nil {
			return nil, err
		}
	}
	return &Engine{rules: rules}, nil
}

// Performance analyses one student with the student profile.
func (e *Engine) Performance(studentID string, records []models.AssessmentRecord) (models.PerformanceSummary, error) {
	agg, err := AggregateRecords(records, ProfileStudent)
	if err != nil {
		return models.PerformanceSummary{}, err
	}

	trend := StudentTrend(scoresOf(records), agg.Mean)
	risk := ClassifyRisk(agg.Mean, ProfileStudent)
	suggestions := e.rules.Apply(RuleSetStudent, Facts{
		Average:      agg.Mean,
		WeakTopics:   agg.Weak,
		StrongTopics: agg.Strong,
		Trend:        trend.Direction,
		Risk:         risk,
		Assessments:  agg.Count,
	})

	return models.PerformanceSummary{
		StudentID:          studentID,
		OverallPerformance: agg.Overall,
		PerformanceLevel:   agg.Level,
		WeakTopics:         agg.Weak,
		StrongTopics:       agg.Strong,
		Trend:              trend,
		RiskLevel:          risk,
		ConfidenceScore:    ConfidenceScore(agg.Mean),
		Suggestions:        suggestions,
		TopicBreakdown:     agg.TopicBreakdown(),
		TotalAssessments:   agg.Count,
	}, nil
}

// Trends is the trimmed trend view of Performance.
func (e *Engine) Trends(studentID string, records []models.AssessmentRecord) (models.StudentTrendReport, error) {
	agg, err := AggregateRecords(records, ProfileStudent)
	if err != nil {
		return models.StudentTrendReport{}, err
	}
	return models.StudentTrendReport{
		StudentID:          studentID,
		Trend:              StudentTrend(scoresOf(records), agg.Mean),
		OverallPerformance: agg.Overall,
		RiskLevel:          ClassifyRisk(agg.Mean, ProfileStudent),
	}, nil
}
