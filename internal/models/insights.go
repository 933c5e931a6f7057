package models

// TrendDirection describes the movement of a score series.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// RiskLevel is the intervention tier for a student or class.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Tier orders risk levels: high=3, medium=2, low=1.
func (r RiskLevel) Tier() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// PerformanceLevel is the banded label for an average score.
type PerformanceLevel string

const (
	LevelExcellent  PerformanceLevel = "excellent"
	LevelGood       PerformanceLevel = "good"
	LevelAverage    PerformanceLevel = "average"
	LevelStruggling PerformanceLevel = "struggling"
)

// TrendSummary is the trend block of a performance summary.
type TrendSummary struct {
	Direction         TrendDirection `json:"trend_direction"`
	Strength          string         `json:"trend_strength,omitempty"`
	RecentPerformance float64        `json:"recent_performance"`
}

// TopicPerformance is the per-topic aggregate for one student.
type TopicPerformance struct {
	Topic        string         `json:"topic"`
	AverageScore float64        `json:"average_score"`
	Attempts     int            `json:"attempts"`
	Trend        TrendDirection `json:"trend"`
}

// PerformanceSummary is the basic analysis of one student.
type PerformanceSummary struct {
	StudentID          string             `json:"student_id"`
	OverallPerformance float64            `json:"overall_performance"`
	PerformanceLevel   PerformanceLevel   `json:"performance_level"`
	WeakTopics         []string           `json:"weak_topics"`
	StrongTopics       []string           `json:"strong_topics"`
	Trend              TrendSummary       `json:"trend"`
	RiskLevel          RiskLevel          `json:"risk_level"`
	ConfidenceScore    int                `json:"confidence_score"`
	Suggestions        []string           `json:"suggestions"`
	TopicBreakdown     []TopicPerformance `json:"topic_breakdown"`
	TotalAssessments   int                `json:"total_assessments"`
}

// StudentTrendReport is the trimmed trend view of a student.
type StudentTrendReport struct {
	StudentID          string       `json:"student_id"`
	Trend              TrendSummary `json:"trend"`
	OverallPerformance float64      `json:"overall_performance"`
	RiskLevel          RiskLevel    `json:"risk_level"`
}

// ClassTopicPerformance is one entry of a class topic rollup.
type ClassTopicPerformance struct {
	AverageScore    float64        `json:"average_score"`
	Trend           TrendDirection `json:"trend"`
	Recommendations []string       `json:"recommendations"`
}

// StudentAnalysis is the per-student line of a class rollup.
type StudentAnalysis struct {
	StudentID          string           `json:"student_id"`
	OverallPerformance float64          `json:"overall_performance"`
	PerformanceLevel   PerformanceLevel `json:"performance_level"`
	RiskLevel          RiskLevel        `json:"risk_level"`
	WeakTopics         []string         `json:"weak_topics"`
}

// ClassSummary is the performance rollup of a class.
type ClassSummary struct {
	ClassID          string                           `json:"class_id"`
	TotalStudents    int                              `json:"total_students"`
	ClassAverage     float64                          `json:"class_average"`
	TopPerformers    []string                         `json:"top_performers"`
	NeedsAttention   []string                         `json:"needs_attention"`
	TopicPerformance map[string]ClassTopicPerformance `json:"topic_performance"`
	TopicOrder       []string                         `json:"topic_order"`
	OverallTrend     TrendDirection                   `json:"overall_trend"`
	RiskLevel        RiskLevel                        `json:"risk_level"`
	StudentAnalyses  []StudentAnalysis                `json:"student_analyses"`
}

// AtRiskStudent is one row of the at-risk listing.
type AtRiskStudent struct {
	StudentID               string    `json:"student_id"`
	RiskLevel               RiskLevel `json:"risk_level"`
	OverallPerformance      float64   `json:"overall_performance"`
	WeakTopics              []string  `json:"weak_topics"`
	RiskFactors             []string  `json:"risk_factors"`
	InterventionSuggestions []string  `json:"intervention_suggestions"`
	LastAssessmentDate      string    `json:"last_assessment_date"`
	TotalAssessments        int       `json:"total_assessments"`
}

// AtRiskSummary counts students per risk tier.
type AtRiskSummary struct {
	HighRiskCount   int `json:"high_risk_count"`
	MediumRiskCount int `json:"medium_risk_count"`
	LowRiskCount    int `json:"low_risk_count"`
}

// AtRiskReport lists the students of a class ordered by urgency.
type AtRiskReport struct {
	ClassID        string          `json:"class_id"`
	TotalStudents  int             `json:"total_students"`
	AtRiskStudents []AtRiskStudent `json:"at_risk_students"`
	Summary        AtRiskSummary   `json:"summary"`
}

// ContentRecommendation suggests one topic to study.
type ContentRecommendation struct {
	Topic      string  `json:"topic"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// ContentRecommendations is the content recommendation result for a student.
type ContentRecommendations struct {
	StudentID            string                  `json:"student_id,omitempty"`
	TargetTopic          string                  `json:"target_topic,omitempty"`
	Recommendations      []ContentRecommendation `json:"recommendations"`
	TotalRecommendations int                     `json:"total_recommendations"`
}

// PathStep is one item of a learning path or study plan.
type PathStep struct {
	Topic         string `json:"topic"`
	Type          string `json:"type"`
	EstimatedTime string `json:"estimated_time,omitempty"`
	Duration      string `json:"duration,omitempty"`
}

// LearningPath is an ordered sequence of review and advanced topics.
type LearningPath struct {
	StudentID               string     `json:"student_id,omitempty"`
	TargetTopics            []string   `json:"target_topics,omitempty"`
	OptimizedPath           []PathStep `json:"optimized_path"`
	PathLength              int        `json:"path_length"`
	EstimatedCompletionTime string     `json:"estimated_completion_time"`
}

// BehaviorAnalysis summarises how a student learns.
type BehaviorAnalysis struct {
	LearningStyle   string   `json:"learning_style"`
	Consistency     float64  `json:"consistency"`
	Engagement      float64  `json:"engagement"`
	ImprovementRate float64  `json:"improvement_rate"`
	Recommendations []string `json:"recommendations"`
}

// BehaviorReport wraps the behavior analysis of a student.
type BehaviorReport struct {
	StudentID string           `json:"student_id,omitempty"`
	Behavior  BehaviorAnalysis `json:"behavior_analysis"`
}

// Predictions projects near-term performance.
type Predictions struct {
	NextPerformance       float64   `json:"next_performance"`
	CompletionProbability float64   `json:"completion_probability"`
	EstimatedImprovement  float64   `json:"estimated_improvement"`
	RiskLevel             RiskLevel `json:"risk_level"`
}

// PredictionReport wraps predictions for a student.
type PredictionReport struct {
	StudentID   string      `json:"student_id"`
	Predictions Predictions `json:"predictions"`
}

// StudySchedule describes session cadence.
type StudySchedule struct {
	Frequency       string `json:"frequency"`
	SessionDuration string `json:"session_duration"`
	Breaks          string `json:"breaks"`
}

// FocusArea is a topic with its current standing.
type FocusArea struct {
	Topic              string  `json:"topic"`
	CurrentPerformance float64 `json:"current_performance"`
	Priority           string  `json:"priority"`
}

// StudyPlan is a weekly study plan.
type StudyPlan struct {
	LearningPath            []PathStep    `json:"learning_path"`
	RecommendedContent      []PathStep    `json:"recommended_content"`
	StudySchedule           StudySchedule `json:"study_schedule"`
	FocusAreas              []FocusArea   `json:"focus_areas"`
	EstimatedCompletionTime string        `json:"estimated_completion_time"`
}

// StudyPlanReport wraps the study plan of a student.
type StudyPlanReport struct {
	StudentID string    `json:"student_id"`
	StudyPlan StudyPlan `json:"study_plan"`
}

// TutoringRecommendation decides whether tutoring is needed and how much.
type TutoringRecommendation struct {
	Needed              bool     `json:"needed"`
	RecommendedSessions int      `json:"recommended_sessions"`
	FocusTopics         []string `json:"focus_topics"`
	TutorPreferences    string   `json:"tutor_preferences"`
	EstimatedDuration   string   `json:"estimated_duration"`
	ConfidenceLevel     string   `json:"confidence_level"`
}

// TutoringReport wraps the tutoring recommendation for a student.
type TutoringReport struct {
	StudentID string                 `json:"student_id"`
	Tutoring  TutoringRecommendation `json:"tutoring"`
}

// AdaptiveLearning tunes difficulty and pacing.
type AdaptiveLearning struct {
	DifficultyAdjustment   string   `json:"difficulty_adjustment"`
	ContentPacing          string   `json:"content_pacing"`
	PersonalizationLevel   string   `json:"personalization_level"`
	RecommendedActivities  []string `json:"recommended_activities"`
	LearningPathAdjustment string   `json:"learning_path_adjustment"`
}

// AdaptiveReport wraps adaptive learning suggestions for a student.
type AdaptiveReport struct {
	StudentID        string           `json:"student_id"`
	AdaptiveLearning AdaptiveLearning `json:"adaptive_learning"`
}

// PerformanceSnapshot is the compact performance block of comprehensive insights.
type PerformanceSnapshot struct {
	OverallPerformance float64  `json:"overall_performance"`
	ConfidenceScore    float64  `json:"confidence_score"`
	WeakTopics         []string `json:"weak_topics"`
	StrongTopics       []string `json:"strong_topics"`
}

// InsightHeadline is the top-line verdict of comprehensive insights.
type InsightHeadline struct {
	OverallStatus    string    `json:"overall_status"`
	LearningStyle    string    `json:"learning_style"`
	RiskLevel        RiskLevel `json:"risk_level"`
	PerformanceTrend string    `json:"performance_trend"`
	KeyMessage       string    `json:"key_message"`
}

// ComprehensiveInsights bundles every student analysis.
type ComprehensiveInsights struct {
	Performance            PerformanceSnapshot    `json:"performance"`
	Behavior               BehaviorReport         `json:"behavior"`
	ContentRecommendations ContentRecommendations `json:"content_recommendations"`
	LearningPath           LearningPath           `json:"learning_path"`
	Predictions            Predictions            `json:"predictions"`
	StudyPlan              StudyPlan              `json:"study_plan"`
	Tutoring               TutoringRecommendation `json:"tutoring"`
	AdaptiveLearning       AdaptiveLearning       `json:"adaptive_learning"`
	Summary                InsightHeadline        `json:"summary"`
}

// ComprehensiveReport is the comprehensive insights response for a student.
type ComprehensiveReport struct {
	StudentID string                `json:"student_id"`
	Insights  ComprehensiveInsights `json:"comprehensive_insights"`
}

// ScoringHealth reports reachability of the scoring service.
type ScoringHealth struct {
	Healthy bool   `json:"healthy"`
	Service string `json:"service"`
	Error   string `json:"error,omitempty"`
}
