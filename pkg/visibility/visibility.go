// Package visibility decides whether a form field is shown. Rules are plain
// strings attached to fields; an Evaluator interprets them against the
// current form values.
package visibility

// Evaluator determines whether a field should be visible for a rule string.
// An empty rule means always visible.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context carries the values a rule can reference. The form binds the
// selected method under the "method" key.
type Context struct {
	Values map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}
