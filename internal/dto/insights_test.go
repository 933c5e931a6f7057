package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightQueryFilter(t *testing.T) {
	filter, err := InsightQuery{From: "2024-01-01", To: "2024-02-01T10:00:00Z", AssignmentType: " exam "}.Filter()
	require.NoError(t, err)
	require.NotNil(t, filter.From)
	require.NotNil(t, filter.To)
	assert.Equal(t, "2024-01-01", filter.From.String())
	assert.Equal(t, "2024-02-01", filter.To.String())
	assert.Equal(t, "exam", filter.AssignmentType)

	filter, err = InsightQuery{}.Filter()
	require.NoError(t, err)
	assert.True(t, filter.IsZero())
}

func TestInsightQueryRejectsBadInput(t *testing.T) {
	cases := map[string]InsightQuery{
		"bad from":  {From: "yesterday"},
		"bad to":    {To: "2024-13-01"},
		"reversed":  {From: "2024-02-01", To: "2024-01-01"},
		"long type": {AssignmentType: strings.Repeat("x", 65)},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := q.Filter()
			assert.Error(t, err)
		})
	}
}

func TestLearningPathTopics(t *testing.T) {
	q := LearningPathQuery{Topics: "algebra, geometry,,algebra , physics"}
	assert.Equal(t, []string{"algebra", "geometry", "physics"}, q.TargetTopics())
	assert.Nil(t, LearningPathQuery{Topics: " "}.TargetTopics())
}

func TestExportQueryValidate(t *testing.T) {
	assert.NoError(t, ExportQuery{Format: "pdf"}.Validate())

	err := ExportQuery{}.Validate()
	require.Error(t, err)
	assert.Equal(t, "format is required", err.Error())

	err = ExportQuery{Format: "xlsx"}.Validate()
	require.Error(t, err)
	assert.Equal(t, "format must be one of: csv pdf", err.Error())
}
