package visibility

// Evaluator determines whether a rule holds for a field given the current
// form values. Rules drive both visibility ("show this group when the person
// type is legal") and conditional required-ness.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values usually holds the submitted
// or prefilled form values while Extras lets callers inject additional data
// such as the reconciled region codes.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// Always is an evaluator that accepts every rule.
var Always Evaluator = EvaluatorFunc(func(string, string, Context) (bool, error) { return true, nil })
