package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// Rule set names.
const (
	RuleSetStudent     = "student"
	RuleSetRiskFactors = "risk_factors"
	RuleSetAtRisk      = "at_risk"
	RuleSetTopic       = "topic"
)

var requiredSets = []string{RuleSetStudent, RuleSetRiskFactors, RuleSetAtRisk, RuleSetTopic}

//go:embed rules/default.yaml
var defaultRules []byte

// Facts are the inputs a rule set is evaluated against.
type Facts struct {
	Average      float64
	WeakTopics   []string
	StrongTopics []string
	Trend        models.TrendDirection
	Risk         models.RiskLevel
	Topic        string
	Assessments  int
}

func (f Facts) vars() map[string]any {
	weak := f.WeakTopics
	if weak == nil {
		weak = []string{}
	}
	strong := f.StrongTopics
	if strong == nil {
		strong = []string{}
	}
	return map[string]any{
		"average":       f.Average,
		"weak_topics":   weak,
		"strong_topics": strong,
		"trend":         string(f.Trend),
		"risk":          string(f.Risk),
		"topic":         f.Topic,
		"assessments":   int64(f.Assessments),
	}
}

// Rulebook holds compiled rule sets.
type Rulebook struct {
	sets   map[string][]Rule
	logger *zap.Logger
}

// DefaultRulebook compiles the embedded rules.
func DefaultRulebook() (*Rulebook, error) {
	return ParseRulebook(defaultRules)
}

// ParseRulebook compiles rule sets from YAML. Sets missing from data are taken
// from the embedded defaults.
func ParseRulebook(data []byte) (*Rulebook, error) {
	env, err := newRuleEnv()
	if err != nil {
		return nil, fmt.Errorf("rule env: %w", err)
	}

	sets := map[string][]Rule{}
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	for _, name := range requiredSets {
		if _, ok := sets[name]; ok {
			continue
		}
		defaults := map[string][]Rule{}
		if err := yaml.Unmarshal(defaultRules, &defaults); err != nil {
			return nil, fmt.Errorf("parse default rules: %w", err)
		}
		sets[name] = defaults[name]
	}

	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rules := sets[name]
		for i := range rules {
			if err := rules[i].Init(env); err != nil {
				return nil, fmt.Errorf("rule set %s #%d: %w", name, i+1, err)
			}
		}
	}

	return &Rulebook{sets: sets, logger: zap.NewNop()}, nil
}

// LoadRulebook reads a rules file, or the embedded defaults when path is empty.
func LoadRulebook(path string) (*Rulebook, error) {
	if path == "" {
		return DefaultRulebook()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRulebook(data)
}

// WithLogger attaches a logger used to report rule evaluation errors.
func (b *Rulebook) WithLogger(logger *zap.Logger) *Rulebook {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Sets lists the loaded rule set names.
func (b *Rulebook) Sets() []string {
	names := make([]string, 0, len(b.sets))
	for name := range b.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply evaluates a rule set in order. A rule that fails to evaluate is
// skipped.
func (b *Rulebook) Apply(set string, facts Facts) []string {
	rules := b.sets[set]
	vars := facts.vars()
	out := make([]string, 0, len(rules))
	for i := range rules {
		text, fired, err := rules[i].Eval(vars)
		if err != nil {
			b.logger.Warn("rule eval failed", zap.String("set", set), zap.Int("rule", i+1), zap.Error(err))
			continue
		}
		if fired {
			out = append(out, text)
		}
	}
	return out
}
