package analysis

import "github.com/OnlyAmFo/LMSWithAIFinal/internal/models"

// TrendWindow is the number of trailing scores compared for a trend.
const TrendWindow = 3

const strengthModerate = "moderate"

// Direction compares the last score of the trailing window with its first.
// Fewer scores than the window yields stable.
func Direction(scores []float64) models.TrendDirection {
	return DirectionWindow(scores, TrendWindow)
}

// DirectionWindow is Direction with an explicit window size.
func DirectionWindow(scores []float64, window int) models.TrendDirection {
	if window < 2 || len(scores) < window {
		return models.TrendStable
	}
	recent := scores[len(scores)-window:]
	first, last := recent[0], recent[len(recent)-1]
	switch {
	case last > first:
		return models.TrendImproving
	case last < first:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// StudentTrend builds the trend block of a performance summary. Strength is
// only reported when a full window was available.
func StudentTrend(scores []float64, average float64) models.TrendSummary {
	summary := models.TrendSummary{
		Direction:         Direction(scores),
		RecentPerformance: average,
	}
	if len(scores) >= TrendWindow {
		summary.Strength = strengthModerate
	}
	if len(scores) > 0 {
		summary.RecentPerformance = scores[len(scores)-1]
	}
	return summary
}
