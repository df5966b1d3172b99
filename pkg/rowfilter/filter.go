// Package rowfilter evaluates widget value filters against raw result rows.
// The aggregation RPC applies most filters server-side; this covers the ones
// added after a query ran, so the builder can narrow fetched data without
// another round trip.
package rowfilter

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/freightlens/backend/pkg/chartspec"
)

// Engine compiles filter operators into expr programs. Programs are cached
// per operator; the row value and filter target are passed via the
// environment on each run.
type Engine struct {
	programCache map[chartspec.FilterOperator]*vm.Program
	mu           sync.RWMutex
}

// NewEngine creates a new filter engine
func NewEngine() *Engine {
	return &Engine{
		programCache: make(map[chartspec.FilterOperator]*vm.Program),
	}
}

// operator expressions. STR/NUM/CONTAINS are registered functions so that
// nil and mixed-type column values coerce instead of failing compilation.
var operatorExprs = map[chartspec.FilterOperator]string{
	chartspec.OpContains: `CONTAINS(value, target)`,
	chartspec.OpEquals:   `STR(value) == STR(target)`,
	chartspec.OpGt:       `NUM(value) > NUM(target)`,
	chartspec.OpLt:       `NUM(value) < NUM(target)`,
	chartspec.OpGte:      `NUM(value) >= NUM(target)`,
	chartspec.OpLte:      `NUM(value) <= NUM(target)`,
}

// Matcher is a compiled filter list. AND across filters: a row must satisfy
// every filter to pass.
type Matcher struct {
	engine  *Engine
	filters []chartspec.ValueFilter
}

// Compile validates and compiles a filter list into a reusable Matcher.
func (e *Engine) Compile(filters []chartspec.ValueFilter) (*Matcher, error) {
	for _, f := range filters {
		if f.Field == "" {
			return nil, fmt.Errorf("filter %s has no field", f.ID)
		}
		if _, ok := operatorExprs[f.Operator]; !ok {
			return nil, fmt.Errorf("unsupported filter operator %q", f.Operator)
		}
		if _, err := e.program(f.Operator); err != nil {
			return nil, err
		}
	}
	return &Matcher{engine: e, filters: filters}, nil
}

// Apply returns the rows that satisfy every filter.
func (m *Matcher) Apply(rows []map[string]any) []map[string]any {
	if len(m.filters) == 0 {
		return rows
	}
	kept := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if m.Matches(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

// Matches reports whether a single row satisfies every filter. Evaluation
// errors exclude the row.
func (m *Matcher) Matches(row map[string]any) bool {
	for _, f := range m.filters {
		program, err := m.engine.program(f.Operator)
		if err != nil {
			return false
		}
		env := map[string]any{
			"value":  row[f.Field],
			"target": f.Value,
		}
		out, err := expr.Run(program, withFunctions(env))
		if err != nil {
			return false
		}
		ok, isBool := out.(bool)
		if !isBool || !ok {
			return false
		}
	}
	return true
}

func (e *Engine) program(op chartspec.FilterOperator) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programCache[op]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if prog, ok := e.programCache[op]; ok {
		return prog, nil
	}

	source, ok := operatorExprs[op]
	if !ok {
		return nil, fmt.Errorf("unsupported filter operator %q", op)
	}

	options := []expr.Option{
		expr.Env(withFunctions(map[string]any{"value": any(nil), "target": ""})),
		expr.AllowUndefinedVariables(),
	}
	prog, err := expr.Compile(source, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression: %w", err)
	}

	e.programCache[op] = prog
	return prog, nil
}

// withFunctions attaches the coercion helpers to an environment map.
func withFunctions(env map[string]any) map[string]any {
	env["STR"] = coerceString
	env["NUM"] = coerceNumber
	env["CONTAINS"] = func(value any, target string) bool {
		return strings.Contains(strings.ToLower(coerceString(value)), strings.ToLower(target))
	}
	return env
}

func coerceString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func coerceNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
