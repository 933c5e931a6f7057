package analysis

import (
	"context"
	"slices"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// DefaultAssessmentDate is reported when a student has no dated records.
const DefaultAssessmentDate = "2024-01-25"

// LatestAssessmentDate returns the most recent record date as YYYY-MM-DD.
func LatestAssessmentDate(records []models.AssessmentRecord) string {
	dates := make([]models.Date, 0, len(records))
	for _, r := range records {
		if !r.Date.IsZero() {
			dates = append(dates, r.Date)
		}
	}
	if len(dates) == 0 {
		return DefaultAssessmentDate
	}
	slices.SortFunc(dates, func(a, b models.Date) int { return b.Compare(a.Time) })
	return dates[0].String()
}

// SortAtRisk orders by risk tier descending, then performance ascending.
func SortAtRisk(students []models.AtRiskStudent) []models.AtRiskStudent {
	sorted := slices.Clone(students)
	slices.SortStableFunc(sorted, func(a, b models.AtRiskStudent) int {
		if ta, tb := a.RiskLevel.Tier(), b.RiskLevel.Tier(); ta != tb {
			return tb - ta
		}
		switch {
		case a.OverallPerformance < b.OverallPerformance:
			return -1
		case a.OverallPerformance > b.OverallPerformance:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

func countRisk(summary models.AtRiskSummary, s models.AtRiskStudent) models.AtRiskSummary {
	switch s.RiskLevel {
	case models.RiskHigh:
		summary.HighRiskCount++
	case models.RiskMedium:
		summary.MediumRiskCount++
	default:
		summary.LowRiskCount++
	}
	return summary
}

// AtRisk lists every student of a class with risk factors and interventions.
// Topics below the classwide weak cutoff are weak; risk uses the student
// profile.
func (e *Engine) AtRisk(ctx context.Context, classID string, students []models.StudentRecords) (models.AtRiskReport, error) {
	rollups, err := rollup(ctx, students, ProfileClasswide)
	if err != nil {
		return models.AtRiskReport{}, err
	}

	rows := make([]models.AtRiskStudent, len(rollups))
	for i, r := range rollups {
		risk := ClassifyRisk(r.agg.Mean, ProfileStudent)
		facts := Facts{
			Average:      r.agg.Mean,
			WeakTopics:   r.agg.Weak,
			StrongTopics: r.agg.Strong,
			Risk:         risk,
			Assessments:  r.agg.Count,
		}
		rows[i] = models.AtRiskStudent{
			StudentID:               r.id,
			RiskLevel:               risk,
			OverallPerformance:      r.agg.Overall,
			WeakTopics:              r.agg.Weak,
			RiskFactors:             e.rules.Apply(RuleSetRiskFactors, facts),
			InterventionSuggestions: e.rules.Apply(RuleSetAtRisk, facts),
			LastAssessmentDate:      LatestAssessmentDate(r.records),
			TotalAssessments:        r.agg.Count,
		}
	}

	return models.AtRiskReport{
		ClassID:        classID,
		TotalStudents:  len(students),
		AtRiskStudents: SortAtRisk(rows),
		Summary:        fold(rows, models.AtRiskSummary{}, countRisk),
	}, nil
}
