package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

func TestDirection(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		want   models.TrendDirection
	}{
		{"empty", nil, models.TrendStable},
		{"two scores", []float64{10, 90}, models.TrendStable},
		{"improving", []float64{70, 80, 90}, models.TrendImproving},
		{"declining", []float64{90, 80, 70}, models.TrendDeclining},
		{"last equals first", []float64{80, 90, 80}, models.TrendStable},
		{"window only", []float64{100, 10, 50, 60}, models.TrendImproving},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Direction(tc.scores))
		})
	}
}

func TestStudentTrend(t *testing.T) {
	full := StudentTrend([]float64{60, 70, 80}, 70)
	assert.Equal(t, models.TrendImproving, full.Direction)
	assert.Equal(t, "moderate", full.Strength)
	assert.Equal(t, 80.0, full.RecentPerformance)

	short := StudentTrend([]float64{0}, 42)
	assert.Equal(t, models.TrendStable, short.Direction)
	assert.Empty(t, short.Strength)
	assert.Equal(t, 0.0, short.RecentPerformance)

	none := StudentTrend(nil, 42)
	assert.Equal(t, 42.0, none.RecentPerformance)
}
