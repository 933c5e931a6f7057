package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

func TestRuleInitRejectsNonBoolCondition(t *testing.T) {
	env, err := newRuleEnv()
	require.NoError(t, err)

	r := &Rule{When: "average + 1.0", Then: `"x"`}
	assert.Error(t, r.Init(env))
}

func TestRuleInitRejectsNonStringResult(t *testing.T) {
	env, err := newRuleEnv()
	require.NoError(t, err)

	r := &Rule{When: "true", Then: "size(weak_topics)"}
	assert.Error(t, r.Init(env))
}

func TestRuleInitParseError(t *testing.T) {
	env, err := cel.NewEnv()
	require.NoError(t, err)

	r := &Rule{When: "average > ", Then: `"x"`}
	assert.Error(t, r.Init(env))
}

func TestRuleEvalSkipsWhenFalse(t *testing.T) {
	env, err := newRuleEnv()
	require.NoError(t, err)
	r := &Rule{When: `risk == "high"`, Then: `"help"`}
	require.NoError(t, r.Init(env))

	_, fired, err := r.Eval(Facts{Risk: models.RiskLow}.vars())
	require.NoError(t, err)
	assert.False(t, fired)

	text, fired, err := r.Eval(Facts{Risk: models.RiskHigh}.vars())
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, "help", text)
}

func TestStudentRulesOrder(t *testing.T) {
	book, err := DefaultRulebook()
	require.NoError(t, err)

	got := book.Apply(RuleSetStudent, Facts{
		Average:    50,
		WeakTopics: []string{"algebra", "physics"},
		Trend:      models.TrendDeclining,
		Risk:       models.RiskHigh,
	})

	assert.Equal(t, []string{
		"Focus on improving: algebra, physics",
		"Recent performance is declining, seek help.",
		"Immediate intervention recommended.",
	}, got)

	assert.Empty(t, book.Apply(RuleSetStudent, Facts{Average: 80, Trend: models.TrendStable, Risk: models.RiskLow}))
}

func TestTopicRules(t *testing.T) {
	book, err := DefaultRulebook()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Focus on algebra fundamentals",
		"Consider additional tutoring",
		"Regular practice and review",
	}, book.Apply(RuleSetTopic, Facts{Average: 55, Topic: "algebra"}))

	assert.Equal(t, []string{
		"Focus on algebra fundamentals",
		"Encourage peer teaching",
		"Regular practice and review",
	}, book.Apply(RuleSetTopic, Facts{Average: 65, Topic: "algebra"}))

	assert.Equal(t, []string{
		"Continue strong algebra performance",
		"Encourage peer teaching",
		"Regular practice and review",
	}, book.Apply(RuleSetTopic, Facts{Average: 70, Topic: "algebra"}))
}

func TestParseRulebookFillsMissingSets(t *testing.T) {
	book, err := ParseRulebook([]byte(`
student:
  - when: average < 100.0
    then: '"Keep going"'
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Keep going"}, book.Apply(RuleSetStudent, Facts{Average: 10}))
	assert.Equal(t, []string{RuleSetAtRisk, RuleSetRiskFactors, RuleSetStudent, RuleSetTopic}, book.Sets())
	assert.Len(t, book.Apply(RuleSetTopic, Facts{Average: 90, Topic: "x"}), 3)
}

func TestParseRulebookRejectsBadRule(t *testing.T) {
	_, err := ParseRulebook([]byte(`
topic:
  - when: unknown_var > 1
    then: '"x"'
`))
	assert.Error(t, err)
}

func TestLoadRulebookFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("student: []\n"), 0o600))

	book, err := LoadRulebook(path)
	require.NoError(t, err)
	assert.Empty(t, book.Apply(RuleSetStudent, Facts{WeakTopics: []string{"a"}, Risk: models.RiskHigh}))

	_, err = LoadRulebook(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
