package analysis

import (
	"fmt"
	"math"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// Record-level cutoffs used by the enrichment views. Unlike topic averages,
// these flag a topic as soon as a single record crosses them.
const (
	recordWeakBelow   = 70
	recordStrongAbove = 85
)

var behaviorRecommendations = []string{
	"Maintain consistent study schedule",
	"Focus on weak areas identified",
	"Practice active learning techniques",
}

// profileView is the shared per-student input of every enrichment.
type profileView struct {
	records []models.AssessmentRecord
	scores  []float64
	avg     float64
	weak    []string
	strong  []string
	slope   float64
}

func newProfileView(records []models.AssessmentRecord) (profileView, error) {
	if len(records) == 0 {
		return profileView{}, ErrEmptyRecords
	}
	scores := scoresOf(records)
	v := profileView{
		records: records,
		scores:  scores,
		avg:     mean(scores),
		weak:    flaggedTopics(records, func(s float64) bool { return s < recordWeakBelow }),
		strong:  flaggedTopics(records, func(s float64) bool { return s > recordStrongAbove }),
	}
	if n := len(scores); n > 1 {
		v.slope = (scores[n-1] - scores[0]) / float64(n)
	}
	return v, nil
}

// flaggedTopics returns distinct topics having at least one matching record,
// in first-match order.
func flaggedTopics(records []models.AssessmentRecord, match func(float64) bool) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range records {
		if !match(r.Score) {
			continue
		}
		if _, ok := seen[r.Topic]; ok {
			continue
		}
		seen[r.Topic] = struct{}{}
		out = append(out, r.Topic)
	}
	return out
}

func head(values []string, n int) []string {
	if len(values) < n {
		n = len(values)
	}
	return append([]string{}, values[:n]...)
}

func (v profileView) contentRecommendations() []models.ContentRecommendation {
	recs := []models.ContentRecommendation{}
	for _, t := range head(v.weak, 2) {
		recs = append(recs, models.ContentRecommendation{Topic: t, Reason: fmt.Sprintf("Strengthen %s fundamentals", t), Confidence: 0.8})
	}
	for _, t := range head(v.strong, 1) {
		recs = append(recs, models.ContentRecommendation{Topic: "Advanced " + t, Reason: fmt.Sprintf("Build on strong %s foundation", t), Confidence: 0.7})
	}
	return recs
}

func (v profileView) learningPath() models.LearningPath {
	path := []models.PathStep{}
	for _, t := range head(v.weak, 3) {
		path = append(path, models.PathStep{Topic: t, Type: "review", EstimatedTime: "2-3 hours"})
	}
	for _, t := range head(v.strong, 2) {
		path = append(path, models.PathStep{Topic: "Advanced " + t, Type: "advanced", EstimatedTime: "3-4 hours"})
	}
	length := min(len(v.weak)+len(v.strong), 5)
	return models.LearningPath{
		OptimizedPath:           path,
		PathLength:              length,
		EstimatedCompletionTime: fmt.Sprintf("%d hours", length*2),
	}
}

func (v profileView) learningStyle() string {
	switch {
	case v.avg > 80:
		return "High Achiever"
	case v.avg < 60:
		return "Needs Support"
	default:
		return "Balanced"
	}
}

func (v profileView) behavior() models.BehaviorAnalysis {
	return models.BehaviorAnalysis{
		LearningStyle:   v.learningStyle(),
		Consistency:     round2(clamp(1-stddev(v.scores)/100, 0.3, 0.9)),
		Engagement:      round2(clamp(v.avg/100, 0.4, 0.95)),
		ImprovementRate: round2(clamp(0.1+math.Max(0, v.slope)/100, 0.1, 0.4)),
		Recommendations: append([]string{}, behaviorRecommendations...),
	}
}

func (v profileView) predictions() models.Predictions {
	return models.Predictions{
		NextPerformance:       Round1(clamp(v.avg+v.slope, 0, 100)),
		CompletionProbability: round2(clamp(v.avg/100+0.1, 0.6, 0.95)),
		EstimatedImprovement:  Round1(clamp(v.slope*2+5, 0, 20)),
		RiskLevel:             ClassifyRisk(v.avg, ProfileStudent),
	}
}

// focusAreas keeps a running pairwise average per topic; priority is set by
// the topic's first score.
func (v profileView) focusAreas() []models.FocusArea {
	index := map[string]int{}
	areas := []models.FocusArea{}
	for _, r := range v.records {
		if i, ok := index[r.Topic]; ok {
			areas[i].CurrentPerformance = (areas[i].CurrentPerformance + r.Score) / 2
			continue
		}
		index[r.Topic] = len(areas)
		areas = append(areas, models.FocusArea{Topic: r.Topic, CurrentPerformance: r.Score, Priority: scorePriority(r.Score)})
	}
	if len(areas) > 5 {
		areas = areas[:5]
	}
	for i := range areas {
		areas[i].CurrentPerformance = Round1(areas[i].CurrentPerformance)
	}
	return areas
}

func scorePriority(score float64) string {
	switch {
	case score < 60:
		return "high"
	case score < 75:
		return "medium"
	default:
		return "low"
	}
}

func (v profileView) studyPlan() models.StudyPlan {
	review := []models.PathStep{}
	for _, t := range head(v.weak, 3) {
		review = append(review, models.PathStep{Topic: t, Type: "review", EstimatedTime: "2 hours"})
	}
	practice := []models.PathStep{}
	for _, t := range head(v.weak, 2) {
		practice = append(practice, models.PathStep{Topic: t, Type: "practice", Duration: "1 hour"})
	}
	schedule := models.StudySchedule{
		Frequency:       "3-4 times per week",
		SessionDuration: "45-60 minutes",
		Breaks:          "15-minute breaks every 45 minutes",
	}
	if v.avg < 70 {
		schedule.Frequency = "4-5 times per week"
		schedule.SessionDuration = "60-90 minutes"
	}
	return models.StudyPlan{
		LearningPath:            review,
		RecommendedContent:      practice,
		StudySchedule:           schedule,
		FocusAreas:              v.focusAreas(),
		EstimatedCompletionTime: fmt.Sprintf("%d hours", len(v.weak)*2+len(v.strong)),
	}
}

func (v profileView) tutoring() models.TutoringRecommendation {
	t := models.TutoringRecommendation{
		Needed:            v.avg < 70,
		FocusTopics:       head(v.weak, 3),
		TutorPreferences:  "Group sessions",
		EstimatedDuration: "4-6 weeks",
		ConfidenceLevel:   "Low",
	}
	switch {
	case v.avg < 60:
		t.RecommendedSessions = 3
		t.TutorPreferences = "One-on-one intensive"
		t.EstimatedDuration = "8-12 weeks"
		t.ConfidenceLevel = "High"
	case v.avg < 70:
		t.RecommendedSessions = 2
		t.ConfidenceLevel = "Medium"
	}
	return t
}

func (v profileView) adaptive() models.AdaptiveLearning {
	a := models.AdaptiveLearning{
		DifficultyAdjustment:   "maintain",
		ContentPacing:          "remedial",
		PersonalizationLevel:   "medium",
		RecommendedActivities:  []string{"Basic tutorials", "Step-by-step guidance", "Extra practice"},
		LearningPathAdjustment: "Standard progression",
	}
	switch {
	case v.avg > 80:
		a.DifficultyAdjustment = "increase"
		a.LearningPathAdjustment = "Skip basic concepts"
		a.RecommendedActivities = []string{"Advanced challenges", "Peer teaching", "Research projects"}
	case v.avg < 60:
		a.DifficultyAdjustment = "decrease"
		a.LearningPathAdjustment = "Add foundational review"
	}
	if v.avg > 70 && v.avg <= 80 {
		a.RecommendedActivities = []string{"Practice problems", "Concept reviews", "Group discussions"}
	}
	switch {
	case v.avg > 85:
		a.ContentPacing = "accelerated"
	case v.avg > 70:
		a.ContentPacing = "standard"
	}
	if len(v.records) > 10 {
		a.PersonalizationLevel = "high"
	}
	return a
}

func (v profileView) headline() models.InsightHeadline {
	h := models.InsightHeadline{
		OverallStatus: "Needs Attention",
		LearningStyle: v.learningStyle(),
		RiskLevel:     ClassifyRisk(v.avg, ProfileStudent),
		KeyMessage:    "Student requires additional support and focused intervention strategies.",
	}
	switch {
	case v.avg > 85:
		h.OverallStatus = "Excellent"
		h.KeyMessage = "Student shows exceptional performance with strong potential for continued growth."
	case v.avg > 70:
		h.OverallStatus = "Good"
		h.KeyMessage = "Student demonstrates solid understanding with room for improvement in specific areas."
	}
	switch {
	case v.avg > 80:
		h.PerformanceTrend = "Improving"
	case v.avg > 70:
		h.PerformanceTrend = "Stable"
	default:
		h.PerformanceTrend = "Declining"
	}
	return h
}

// ContentRecommendations suggests up to two weak topics to strengthen and one
// strong topic to extend.
func (e *Engine) ContentRecommendations(studentID string, records []models.AssessmentRecord, targetTopic string) (models.ContentRecommendations, error) {
	v, err := newProfileView(records)
	if err != nil {
		return models.ContentRecommendations{}, err
	}
	return models.ContentRecommendations{
		StudentID:            studentID,
		TargetTopic:          targetTopic,
		Recommendations:      v.contentRecommendations(),
		TotalRecommendations: min(len(v.weak)+len(v.strong), 3),
	}, nil
}

// LearningPath orders review topics before advanced ones.
func (e *Engine) LearningPath(studentID string, records []models.AssessmentRecord, targetTopics []string) (models.LearningPath, error) {
	v, err := newProfileView(records)
	if err != nil {
		return models.LearningPath{}, err
	}
	path := v.learningPath()
	path.StudentID = studentID
	path.TargetTopics = targetTopics
	return path, nil
}

// Behavior describes learning style, consistency and engagement.
func (e *Engine) Behavior(studentID string, records []models.AssessmentRecord) (models.BehaviorReport, error) {
	v, err := newProfileView(records)
	if err != nil {
		return models.BehaviorReport{}, err
	}
	return models.BehaviorReport{StudentID: studentID, Behavior: v.behavior()}, nil
}

// Predictions extrapolates the average by the per-record slope.
func (e *Engine) Predictions(studentID string, records []models.AssessmentRecord) (models.PredictionReport, error) {
	v, err := newProfileView(records)
	if err != nil {
		return models.PredictionReport{}, err
	}
	return models.PredictionReport{StudentID: studentID, Predictions: v.predictions()}, nil
}

// StudyPlan builds a weekly plan around weak topics.
func (e *Engine) StudyPlan(studentID string, records []models.AssessmentRecord) (models.StudyPlanReport, error) {
	v, err := newProfileView(records)
	if err != nil {
		return models.StudyPlanReport{}, err
	}
	return models.StudyPlanReport{StudentID: studentID, StudyPlan: v.studyPlan()}, nil
}

// Tutoring decides whether and how much tutoring is needed.
func (e *Engine) Tutoring(studentID string, records []models.AssessmentRecord) (models.TutoringReport, error) {
	v, err := newProfileView(records)
	if err != nil {
		return models.TutoringReport{}, err
	}
	return models.TutoringReport{StudentID: studentID, Tutoring: v.tutoring()}, nil
}

// Adaptive tunes difficulty and pacing to the average.
func (e *Engine) Adaptive(studentID string, records []models.AssessmentRecord) (models.AdaptiveReport, error) {
	v, err := newProfileView(records)
	if err != nil {
		return models.AdaptiveReport{}, err
	}
	return models.AdaptiveReport{StudentID: studentID, AdaptiveLearning: v.adaptive()}, nil
}

// Comprehensive bundles every enrichment with a headline verdict.
func (e *Engine) Comprehensive(studentID string, records []models.AssessmentRecord) (models.ComprehensiveReport, error) {
	v, err := newProfileView(records)
	if err != nil {
		return models.ComprehensiveReport{}, err
	}
	return models.ComprehensiveReport{
		StudentID: studentID,
		Insights: models.ComprehensiveInsights{
			Performance: models.PerformanceSnapshot{
				OverallPerformance: Round1(v.avg),
				ConfidenceScore:    Round1(clamp(v.avg, 60, 95)),
				WeakTopics:         head(v.weak, 3),
				StrongTopics:       head(v.strong, 3),
			},
			Behavior: models.BehaviorReport{Behavior: v.behavior()},
			ContentRecommendations: models.ContentRecommendations{
				Recommendations:      v.contentRecommendations(),
				TotalRecommendations: min(len(v.weak)+len(v.strong), 3),
			},
			LearningPath:     v.learningPath(),
			Predictions:      v.predictions(),
			StudyPlan:        v.studyPlan(),
			Tutoring:         v.tutoring(),
			AdaptiveLearning: v.adaptive(),
			Summary:          v.headline(),
		},
	}, nil
}
