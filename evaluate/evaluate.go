// Package evaluate runs calculator input as a sandboxed expression.
//
// The accepted grammar is number, bool and nil literals, back-reference names
// (_0, _1, ...), unary - + ! not, the binary operators
// + - * / % ** ^ == != < > <= >= && || and or, the ternary a ? b : c, and
// calls to the functions in Builtins. Strings, collections, closures,
// variables, pipes and $env are rejected. Integer +, - and * fail on
// overflow instead of wrapping. There is no I/O and no access to process state.
package evaluate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/jellydator/ttlcache/v3"
)

// DefaultCacheCapacity bounds the number of compiled programs kept around.
const DefaultCacheCapacity = 1000

// Builtins lists the only builtin functions available to expressions.
var Builtins = []string{"abs", "ceil", "floor", "round", "min", "max", "int", "float"}

var (
	// ErrEmpty is the cause for blank input.
	ErrEmpty = errors.New("empty expression")
	// ErrNonFinite is the cause for results such as 1/0.
	ErrNonFinite = errors.New("result is not a finite number")
)

// Error is an evaluation failure: bad syntax, an unknown name or a runtime fault.
type Error struct {
	Expr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Evaluator compiles and runs expressions, caching compiled programs.
type Evaluator struct {
	cache *ttlcache.Cache[string, *vm.Program]
}

// New creates an evaluator whose compiled programs expire after ttl.
func New(ttl time.Duration) *Evaluator {
	c := ttlcache.New[string, *vm.Program](
		ttlcache.WithTTL[string, *vm.Program](ttl),
		ttlcache.WithCapacity[string, *vm.Program](DefaultCacheCapacity),
	)
	go c.Start()
	return &Evaluator{cache: c}
}

// Close stops the cache expiration loop.
func (ev *Evaluator) Close() {
	ev.cache.Stop()
}

// Evaluate runs text with bindings as the only names in scope.
// Every failure is returned as *Error.
func (ev *Evaluator) Evaluate(text string, bindings map[string]any) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Expr: text, Err: ErrEmpty}
	}
	if bindings == nil {
		bindings = map[string]any{}
	}

	program, err := ev.compile(text, bindings)
	if err != nil {
		return nil, &Error{Expr: text, Err: err}
	}

	out, err := run(program, bindings)
	if err != nil {
		return nil, &Error{Expr: text, Err: err}
	}
	if f, ok := out.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return nil, &Error{Expr: text, Err: ErrNonFinite}
	}
	return out, nil
}

func (ev *Evaluator) compile(text string, bindings map[string]any) (*vm.Program, error) {
	key := cacheKey(text, bindings)
	if item := ev.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	if err := checkGrammar(text); err != nil {
		return nil, err
	}

	opts := []expr.Option{
		expr.Env(bindings),
		expr.DisableAllBuiltins(),
	}
	opts = append(opts, overflowChecks()...)
	for _, name := range Builtins {
		opts = append(opts, expr.EnableBuiltin(name))
	}
	program, err := expr.Compile(text, opts...)
	if err != nil {
		return nil, err
	}
	ev.cache.Set(key, program, ttlcache.DefaultTTL)
	return program, nil
}

// cacheKey identifies a compiled program. Programs are type-checked against
// the bindings, so the key includes each binding's name and type.
func cacheKey(text string, bindings map[string]any) string {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(text)
	for _, name := range names {
		b.WriteByte(0)
		b.WriteString(name)
		b.WriteByte(':')
		if t := reflect.TypeOf(bindings[name]); t != nil {
			b.WriteString(t.String())
		}
	}
	return b.String()
}

func run(program *vm.Program, bindings map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return expr.Run(program, bindings)
}
