package analysis

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Rule appends Then to a recommendation list when When holds. An empty When
// always holds.
type Rule struct {
	When string `yaml:"when"`
	Then string `yaml:"then"`

	when cel.Program
	then cel.Program
}

// newRuleEnv declares the variables every rule may reference.
func newRuleEnv() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		cel.Variable("average", cel.DoubleType),
		cel.Variable("weak_topics", cel.ListType(cel.StringType)),
		cel.Variable("strong_topics", cel.ListType(cel.StringType)),
		cel.Variable("trend", cel.StringType),
		cel.Variable("risk", cel.StringType),
		cel.Variable("topic", cel.StringType),
		cel.Variable("assessments", cel.IntType),
	)
}

// Init compiles both expressions and checks their result types.
func (r *Rule) Init(env *cel.Env) error {
	when := r.When
	if when == "" {
		when = "true"
	}
	var err error
	if r.when, err = compile(env, when, cel.BoolType); err != nil {
		return fmt.Errorf("when %q: %w", r.When, err)
	}
	if r.then, err = compile(env, r.Then, cel.StringType); err != nil {
		return fmt.Errorf("then %q: %w", r.Then, err)
	}
	return nil
}

func compile(env *cel.Env, expr string, want *cel.Type) (cel.Program, error) {
	ast, iss := env.Parse(expr)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if !checked.OutputType().IsExactType(want) {
		return nil, fmt.Errorf("expected %s result, got %s", want, checked.OutputType())
	}
	return env.Program(checked)
}

// Eval returns the rendered suggestion and whether the rule fired.
func (r *Rule) Eval(vars map[string]any) (string, bool, error) {
	if r.when == nil || r.then == nil {
		return "", false, fmt.Errorf("rule not initialised")
	}
	out, _, err := r.when.Eval(vars)
	if err != nil {
		return "", false, err
	}
	if fired, ok := out.Value().(bool); !ok || !fired {
		return "", false, nil
	}
	out, _, err = r.then.Eval(vars)
	if err != nil {
		return "", false, err
	}
	text, ok := out.Value().(string)
	if !ok {
		return "", false, fmt.Errorf("then produced %T", out.Value())
	}
	return text, true, nil
}
