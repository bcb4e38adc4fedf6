// Package tag decides which performance tags apply to a product and formats them
// for display.
package tag

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Built-in tag names.
const (
	HighExposure         = "high-exposure"
	HighClicks           = "high-clicks"
	GoodClickRate        = "good-click-rate"
	GoodConversionRate   = "good-conversion-rate"
	HighGPM              = "high-gpm"
	HighSales            = "high-sales"
	HighTransactionValue = "high-transaction-value"
)

// Rule maps a tag name to a predicate.
// The When field holds a CEL expression over the variables declared by
// NewProductEnv and must evaluate to a boolean. The program is compiled by Init.
type Rule struct {
	// Tag is the name attached to products that satisfy the rule.
	Tag string `yaml:"tag"`
	// Kind groups tags for styling: exposure, click, conversion, gpm, sales, transaction.
	Kind string `yaml:"kind"`
	// When is the CEL predicate.
	When string `yaml:"when"`

	program cel.Program
}

// Init compiles When with env. Syntax errors, references to undeclared variables
// and non-boolean expressions are reported.
func (r *Rule) Init(env *cel.Env) error {
	ast, iss := env.Parse(r.When)
	if iss.Err() != nil {
		return fmt.Errorf("tag %q: %w", r.Tag, iss.Err())
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return fmt.Errorf("tag %q: %w", r.Tag, iss.Err())
	}
	if !checked.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("tag %q: expression must be boolean, got %s", r.Tag, checked.OutputType())
	}

	var err error
	r.program, err = env.Program(checked)
	if err != nil {
		return fmt.Errorf("tag %q: %w", r.Tag, err)
	}

	return nil
}

// Eval runs the compiled predicate against vars.
func (r *Rule) Eval(vars map[string]any) (bool, error) {
	if r.program == nil {
		return false, fmt.Errorf("tag %q: rule is not initialized", r.Tag)
	}

	result, _, err := r.program.Eval(vars)
	if err != nil {
		return false, err
	}

	matched, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("tag %q: non-boolean result %v", r.Tag, result.Value())
	}
	return matched, nil
}
