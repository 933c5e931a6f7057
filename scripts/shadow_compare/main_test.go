package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffFieldsTolerance(t *testing.T) {
	remote := map[string]interface{}{
		"overall_performance": 71.4,
		"risk_level":          "low",
		"weak_topics":         []interface{}{"physics", "algebra"},
	}
	local := map[string]interface{}{
		"overall_performance": 72.0,
		"risk_level":          "medium",
		"weak_topics":         []interface{}{"algebra", "physics"},
	}

	drifts := diffFields([]string{"overall_performance", "risk_level", "weak_topics"}, remote, local)
	require.Len(t, drifts, 1)
	assert.Equal(t, "risk_level", drifts[0].Field)
}

func TestDiffFieldsNestedLists(t *testing.T) {
	var remote, local map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"at_risk_students":[{"student_id":"s2"},{"student_id":"s1"}]}`), &remote))
	require.NoError(t, json.Unmarshal([]byte(`{"at_risk_students":[{"student_id":"s1"}]}`), &local))

	drifts := diffFields([]string{"at_risk_students.student_id"}, remote, local)
	require.Len(t, drifts, 1)
	assert.Len(t, drifts[0].Remote, 2)

	assert.Empty(t, diffFields([]string{"at_risk_students.student_id"}, remote, remote))
}

func TestToDocumentAcceptsRawAndStructs(t *testing.T) {
	doc, err := toDocument(json.RawMessage(`{"risk_level":"high"}`))
	require.NoError(t, err)
	assert.Equal(t, "high", doc["risk_level"])

	doc, err = toDocument(struct {
		Total int `json:"total_students"`
	}{Total: 3})
	require.NoError(t, err)
	assert.Equal(t, 3.0, doc["total_students"])
}

func TestLoadTargetsRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[{"kind":"horoscope","id":"s1"}]}`), 0o600))

	_, err := loadTargets(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[]}`), 0o600))
	_, err = loadTargets(path)
	assert.Error(t, err)
}
