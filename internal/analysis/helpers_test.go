package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(nil)
	require.NoError(t, err)
	return engine
}

func rec(student, topic string, score float64, date string) models.AssessmentRecord {
	r := models.AssessmentRecord{StudentID: student, Topic: topic, Score: score, MaxScore: 100, AssignmentType: "quiz"}
	if date != "" {
		d, err := models.ParseDate(date)
		if err != nil {
			panic(err)
		}
		r.Date = d
	}
	return r
}

func series(student string, topic string, scores ...float64) []models.AssessmentRecord {
	out := make([]models.AssessmentRecord, len(scores))
	for i, s := range scores {
		out[i] = rec(student, topic, s, "")
	}
	return out
}
