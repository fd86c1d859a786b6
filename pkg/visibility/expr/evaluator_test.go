package expr

import (
	"testing"

	exprvm "github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-checkoutform/pkg/visibility"
)

func TestEvaluatorEmptyRuleIsVisible(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("billing_first_name", "   ", visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected empty rule to be true")
	}
}

func TestEvaluatorStringComparison(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := `billing_person_type == "legal"`

	cases := []struct {
		name   string
		values map[string]any
		want   bool
	}{
		{name: "legal", values: map[string]any{"billing_person_type": "legal"}, want: true},
		{name: "real", values: map[string]any{"billing_person_type": "real"}, want: false},
		{name: "empty", values: map[string]any{"billing_person_type": ""}, want: false},
		{name: "undefined", values: map[string]any{}, want: false},
	}
	for _, tc := range cases {
		ok, err := eval.Eval("billing_company_name", rule, visibility.Context{Values: tc.values})
		if err != nil {
			t.Fatalf("%s: Eval returned error: %v", tc.name, err)
		}
		if ok != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, ok)
		}
	}
}

func TestEvaluatorCheckedHelper(t *testing.T) {
	t.Parallel()

	eval := New()
	cases := []struct {
		value any
		want  bool
	}{
		{value: true, want: true},
		{value: "1", want: true},
		{value: "on", want: true},
		{value: "", want: false},
		{value: "0", want: false},
		{value: false, want: false},
		{value: nil, want: false},
		{value: []string{"0", "1"}, want: true},
	}
	for _, tc := range cases {
		ok, err := eval.Eval("invoice", "checked(billing_invoice_request)", visibility.Context{
			Values: map[string]any{"billing_invoice_request": tc.value},
		})
		if err != nil {
			t.Fatalf("value %#v: Eval returned error: %v", tc.value, err)
		}
		if ok != tc.want {
			t.Fatalf("value %#v: expected %v, got %v", tc.value, tc.want, ok)
		}
	}
}

func TestEvaluatorBooleanComposition(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := `checked(billing_invoice_request) && billing_person_type in ["real", "legal"]`

	ok, err := eval.Eval("person", rule, visibility.Context{
		Values: map[string]any{"billing_invoice_request": "1", "billing_person_type": "real"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for conjunction")
	}

	ok, err = eval.Eval("person", rule, visibility.Context{
		Values: map[string]any{"billing_invoice_request": "", "billing_person_type": "real"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected false when invoice is not requested")
	}
}

func TestEvaluatorExtrasAndTruthy(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("billing_city", `billing_state in extras.mapped`, visibility.Context{
		Values: map[string]any{"billing_state": "THR"},
		Extras: map[string]any{"mapped": []string{"THR", "ABZ"}},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected extras lookup to match")
	}

	ok, err = New().Eval("billing_city", `billing_city`, visibility.Context{
		Values: map[string]any{"billing_city": "Shemiranat"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected non-empty string result to be truthy")
	}
}

func TestEvaluatorInvalidRule(t *testing.T) {
	t.Parallel()

	if _, err := New().Eval("field", `billing_person_type ==`, visibility.Context{}); err == nil {
		t.Fatalf("expected compile error")
	}
}

type countingCache struct {
	*MemoryCache
	sets int
}

func (c *countingCache) Set(rule string, program *exprvm.Program) {
	c.sets++
	c.MemoryCache.Set(rule, program)
}

func TestEvaluatorCachesPrograms(t *testing.T) {
	t.Parallel()

	cache := &countingCache{MemoryCache: NewMemoryCache()}
	eval := New(WithProgramCache(cache))
	for i := 0; i < 3; i++ {
		if _, err := eval.Eval("field", `billing_person_type == "real"`, visibility.Context{}); err != nil {
			t.Fatalf("Eval returned error: %v", err)
		}
	}
	if cache.sets != 1 {
		t.Fatalf("expected a single compile, got %d", cache.sets)
	}
}
