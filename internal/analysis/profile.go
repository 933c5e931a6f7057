package analysis

import "github.com/OnlyAmFo/LMSWithAIFinal/internal/models"

// ThresholdProfile holds the cutoffs a call site classifies with.
type ThresholdProfile struct {
	Name string
	// Weak marks topics whose average is below it.
	Weak float64
	// Strong marks topics whose average is at or above it.
	Strong float64
	// RiskHigh is the average below which risk is high.
	RiskHigh float64
	// RiskLow is the average at or above which risk is low.
	RiskLow float64
}

var (
	// ProfileStudent is used for single-student analyses.
	ProfileStudent = ThresholdProfile{Name: "student", Weak: 60, Strong: 75, RiskHigh: 60, RiskLow: 75}
	// ProfileClasswide is used for class rollups and the at-risk listing.
	ProfileClasswide = ThresholdProfile{Name: "classwide", Weak: 70, Strong: 85, RiskHigh: 65, RiskLow: 75}
)

// IsWeak reports whether avg falls in the weak band.
func (p ThresholdProfile) IsWeak(avg float64) bool { return avg < p.Weak }

// IsStrong reports whether avg falls in the strong band.
func (p ThresholdProfile) IsStrong(avg float64) bool { return avg >= p.Strong }

// Risk classifies avg against the profile.
func (p ThresholdProfile) Risk(avg float64) models.RiskLevel {
	switch {
	case avg < p.RiskHigh:
		return models.RiskHigh
	case avg < p.RiskLow:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
