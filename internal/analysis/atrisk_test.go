package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

func TestSortAtRiskTierThenPerformance(t *testing.T) {
	input := []models.AtRiskStudent{
		{StudentID: "a", RiskLevel: models.RiskLow, OverallPerformance: 80},
		{StudentID: "b", RiskLevel: models.RiskHigh, OverallPerformance: 50},
		{StudentID: "c", RiskLevel: models.RiskMedium, OverallPerformance: 70},
		{StudentID: "d", RiskLevel: models.RiskHigh, OverallPerformance: 40},
	}

	sorted := SortAtRisk(input)

	ids := make([]string, len(sorted))
	for i, s := range sorted {
		ids[i] = s.StudentID
	}
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids)
	assert.Equal(t, "a", input[0].StudentID, "input must not be reordered")
}

func TestLatestAssessmentDate(t *testing.T) {
	records := []models.AssessmentRecord{
		rec("s", "a", 1, "2024-01-10"),
		rec("s", "a", 1, "2024-02-03"),
		rec("s", "a", 1, ""),
		rec("s", "a", 1, "2024-01-20"),
	}
	assert.Equal(t, "2024-02-03", LatestAssessmentDate(records))
	assert.Equal(t, "2024-01-10", records[0].Date.String())
	assert.Equal(t, DefaultAssessmentDate, LatestAssessmentDate(series("s", "a", 1, 2)))
}

func TestAtRiskReport(t *testing.T) {
	students := []models.StudentRecords{
		{StudentID: "class2_top", Records: []models.AssessmentRecord{
			rec("class2_top", "algebra", 95, "2024-01-02"),
			rec("class2_top", "physics", 92, "2024-01-09"),
		}},
		{StudentID: "class2_low", Records: []models.AssessmentRecord{
			rec("class2_low", "algebra", 40, "2024-01-03"),
			rec("class2_low", "physics", 45, "2024-01-04"),
			rec("class2_low", "chemistry", 50, "2024-01-05"),
		}},
		{StudentID: "class2_mid", Records: []models.AssessmentRecord{
			rec("class2_mid", "algebra", 65, "2024-01-06"),
			rec("class2_mid", "physics", 80, "2024-01-07"),
		}},
		{StudentID: "class2_ok", Records: []models.AssessmentRecord{
			rec("class2_ok", "algebra", 78, ""),
			rec("class2_ok", "physics", 82, ""),
		}},
	}

	report, err := newTestEngine(t).AtRisk(context.Background(), "class2", students)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalStudents)
	assert.Equal(t, models.AtRiskSummary{HighRiskCount: 1, MediumRiskCount: 1, LowRiskCount: 2}, report.Summary)
	require.Len(t, report.AtRiskStudents, 4)

	low := report.AtRiskStudents[0]
	assert.Equal(t, "class2_low", low.StudentID)
	assert.Equal(t, models.RiskHigh, low.RiskLevel)
	assert.Equal(t, []string{"algebra", "physics", "chemistry"}, low.WeakTopics)
	assert.Equal(t, []string{"Critical performance issues", "Below 60% average", "Multiple weak subjects"}, low.RiskFactors)
	assert.Equal(t, []string{
		"Immediate intervention needed",
		"Schedule one-on-one tutoring",
		"Review basic concepts",
		"Consider study group participation",
		"Parent-teacher conference recommended",
	}, low.InterventionSuggestions)
	assert.Equal(t, "2024-01-05", low.LastAssessmentDate)

	mid := report.AtRiskStudents[1]
	assert.Equal(t, "class2_mid", mid.StudentID)
	assert.Equal(t, models.RiskMedium, mid.RiskLevel)
	assert.Equal(t, []string{"Below average performance", "Minor weakness in one subject"}, mid.RiskFactors)
	assert.Equal(t, "Focus on: algebra", mid.InterventionSuggestions[3])

	ok := report.AtRiskStudents[2]
	assert.Equal(t, "class2_ok", ok.StudentID)
	assert.Equal(t, []string{"Continue strong performance", "Focus on areas of improvement"}, ok.InterventionSuggestions)
	assert.Empty(t, ok.RiskFactors)
	assert.Equal(t, DefaultAssessmentDate, ok.LastAssessmentDate)

	top := report.AtRiskStudents[3]
	assert.Equal(t, "class2_top", top.StudentID)
	assert.Equal(t, []string{"None - excellent performance"}, top.RiskFactors)
	assert.Equal(t, []string{"Consider advanced placement", "Mentor other students", "Explore research opportunities"}, top.InterventionSuggestions)
}
