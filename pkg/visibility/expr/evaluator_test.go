package expr_test

import (
	"testing"

	"github.com/goliatone/go-recoform/pkg/visibility"
	"github.com/goliatone/go-recoform/pkg/visibility/expr"
)

func TestEvaluatorRules(t *testing.T) {
	t.Parallel()

	evaluator := expr.New()
	tests := []struct {
		name   string
		rule   string
		values map[string]any
		want   bool
	}{
		{name: "empty rule", rule: "  ", want: true},
		{name: "equality", rule: `method == "cbf"`, values: map[string]any{"method": "cbf"}, want: true},
		{name: "inequality", rule: `method != "cbf"`, values: map[string]any{"method": "svd"}, want: true},
		{name: "single quotes", rule: `method == 'svd'`, values: map[string]any{"method": "svd"}, want: true},
		{name: "bare word literal", rule: `method == item_based`, values: map[string]any{"method": "item_based"}, want: true},
		{name: "or left", rule: `method == "user_based" || method == "svd"`, values: map[string]any{"method": "user_based"}, want: true},
		{name: "or right", rule: `method == "user_based" || method == "svd"`, values: map[string]any{"method": "svd"}, want: true},
		{name: "or miss", rule: `method == "user_based" || method == "svd"`, values: map[string]any{"method": "cbf"}, want: false},
		{name: "and with negation", rule: `advanced && !(method == "cbf")`, values: map[string]any{"method": "svd", "advanced": true}, want: true},
		{name: "truthy string", rule: `advanced`, values: map[string]any{"advanced": "true"}, want: true},
		{name: "missing identifier", rule: `advanced`, want: false},
		{name: "bool literal", rule: `advanced == false`, values: map[string]any{"advanced": false}, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := evaluator.Eval("field", tt.rule, visibility.Context{Values: tt.values})
			if err != nil {
				t.Fatalf("Eval(%q) error: %v", tt.rule, err)
			}
			if got != tt.want {
				t.Fatalf("Eval(%q) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestEvaluatorRejectsMalformedRules(t *testing.T) {
	t.Parallel()

	evaluator := expr.New()
	for _, rule := range []string{
		`method == "cbf`,
		`(method == "cbf"`,
		`method ==`,
		`method = "cbf"`,
		`== "cbf"`,
		`method == "cbf" extra`,
	} {
		if _, err := evaluator.Eval("field", rule, visibility.Context{}); err == nil {
			t.Fatalf("expected error for rule %q", rule)
		}
	}
}

func TestEvaluatorFuncAdapter(t *testing.T) {
	t.Parallel()

	var calls int
	fn := visibility.EvaluatorFunc(func(fieldPath, rule string, ctx visibility.Context) (bool, error) {
		calls++
		return fieldPath == "user_id", nil
	})
	got, err := fn.Eval("user_id", "anything", visibility.Context{})
	if err != nil || !got || calls != 1 {
		t.Fatalf("adapter returned %v, %v after %d calls", got, err, calls)
	}
}
