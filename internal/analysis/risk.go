package analysis

import (
	"math"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// ClassifyRisk classifies avg with the given profile.
func ClassifyRisk(avg float64, profile ThresholdProfile) models.RiskLevel {
	return profile.Risk(avg)
}

// ConfidenceScore is round((100 - |avg - 75|) * 0.9). It is not clamped and
// goes negative for extreme averages.
func ConfidenceScore(avg float64) int {
	return int(roundHalfUp((100 - math.Abs(avg-75)) * 0.9))
}
