package expr

import (
	"fmt"
	"strings"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-checkoutform/pkg/visibility"
)

// ProgramCache stores compiled rule programs keyed by their source.
type ProgramCache interface {
	Get(rule string) (*exprvm.Program, bool)
	Set(rule string, program *exprvm.Program)
}

// MemoryCache is a ProgramCache backed by a map.
type MemoryCache struct {
	mu       sync.RWMutex
	programs map[string]*exprvm.Program
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{programs: make(map[string]*exprvm.Program)}
}

func (c *MemoryCache) Get(rule string) (*exprvm.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	program, ok := c.programs[rule]
	return program, ok
}

func (c *MemoryCache) Set(rule string, program *exprvm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[rule] = program
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithProgramCache replaces the default in-memory cache. Passing nil disables
// caching.
func WithProgramCache(cache ProgramCache) Option {
	return func(e *Evaluator) {
		e.cache = cache
	}
}

// Evaluator runs visibility rules with github.com/expr-lang/expr.
//
// Rules see every entry of visibility.Context.Values as a top-level variable
// and visibility.Context.Extras under `extras`. Unknown variables evaluate to
// nil, so `person_type == "legal"` is simply false before anything is chosen.
// Two helpers are available:
//   - checked(v) is true for checkbox style values: true, "1", "on", "yes", "true"
//   - truthy(v) is true for non-empty strings, non-zero numbers, and non-empty collections
//
// Non-boolean results are reduced with truthy.
type Evaluator struct {
	cache ProgramCache
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{cache: NewMemoryCache()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *Evaluator) Eval(fieldPath, rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	program, err := e.compile(trimmed)
	if err != nil {
		return false, fmt.Errorf("visibility/expr: compile rule for %q: %w", fieldPath, err)
	}

	result, err := exprlang.Run(program, environment(ctx))
	if err != nil {
		return false, fmt.Errorf("visibility/expr: evaluate rule for %q: %w", fieldPath, err)
	}
	if value, ok := result.(bool); ok {
		return value, nil
	}
	return truthy(result), nil
}

func (e *Evaluator) compile(rule string) (*exprvm.Program, error) {
	if e.cache != nil {
		if program, ok := e.cache.Get(rule); ok && program != nil {
			return program, nil
		}
	}
	program, err := exprlang.Compile(rule,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.Function("checked", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("checked expects 1 argument, got %d", len(params))
			}
			return checked(params[0]), nil
		}),
		exprlang.Function("truthy", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("truthy expects 1 argument, got %d", len(params))
			}
			return truthy(params[0]), nil
		}),
	)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(rule, program)
	}
	return program, nil
}

func environment(ctx visibility.Context) map[string]any {
	env := make(map[string]any, len(ctx.Values)+1)
	for key, value := range ctx.Values {
		env[key] = value
	}
	extras := ctx.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	env["extras"] = extras
	return env
}

func checked(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "on", "yes", "true":
			return true
		}
		return false
	case []string:
		return len(v) > 0 && checked(v[len(v)-1])
	default:
		return truthy(value)
	}
}

func truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
