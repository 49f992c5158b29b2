package evaluate

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var (
	// ErrOverflow is the cause for integer results that do not fit in an int.
	ErrOverflow = errors.New("integer overflow")
	// ErrNotAllowed is the cause for syntax outside the arithmetic and boolean subset.
	ErrNotAllowed = errors.New("not allowed")
)

// allowedOperators are the binary operators an expression may use.
var allowedOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "^": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true, "and": true, "or": true,
}

// checkGrammar rejects everything but number, bool and nil literals,
// bindings, unary and binary arithmetic/comparison/logic, the ternary
// conditional and calls to Builtins.
func checkGrammar(text string) error {
	tree, err := parser.Parse(text)
	if err != nil {
		return err
	}
	v := &grammarVisitor{}
	ast.Walk(&tree.Node, v)
	return v.err
}

type grammarVisitor struct {
	err error
}

func (v *grammarVisitor) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.NilNode, *ast.ConditionalNode:
	case *ast.IdentifierNode:
		if n.Value == "$env" {
			v.err = fmt.Errorf("%w: $env", ErrNotAllowed)
		}
	case *ast.UnaryNode:
		switch n.Operator {
		case "-", "+", "!", "not":
		default:
			v.err = fmt.Errorf("%w: operator %q", ErrNotAllowed, n.Operator)
		}
	case *ast.BinaryNode:
		if !allowedOperators[n.Operator] {
			v.err = fmt.Errorf("%w: operator %q", ErrNotAllowed, n.Operator)
		}
	case *ast.BuiltinNode:
		if !slices.Contains(Builtins, n.Name) {
			v.err = fmt.Errorf("%w: %s", ErrNotAllowed, n.Name)
		}
	case *ast.CallNode:
		callee, ok := n.Callee.(*ast.IdentifierNode)
		if !ok || !slices.Contains(Builtins, callee.Value) {
			v.err = fmt.Errorf("%w: call", ErrNotAllowed)
		}
	default:
		v.err = fmt.Errorf("%w: %T", ErrNotAllowed, n)
	}
}

// overflowChecks replaces int +, - and * with versions that fail instead of
// wrapping. Float arithmetic and ** (always float) are unaffected.
func overflowChecks() []expr.Option {
	return []expr.Option{
		expr.Function("addInt", intOp(addInt), new(func(int, int) int)),
		expr.Function("subInt", intOp(subInt), new(func(int, int) int)),
		expr.Function("mulInt", intOp(mulInt), new(func(int, int) int)),
		expr.Operator("+", "addInt"),
		expr.Operator("-", "subInt"),
		expr.Operator("*", "mulInt"),
	}
}

func intOp(op func(a, b int) (int, bool)) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		r, ok := op(params[0].(int), params[1].(int))
		if !ok {
			return nil, ErrOverflow
		}
		return r, nil
	}
}

func addInt(a, b int) (int, bool) {
	s := a + b
	return s, (b >= 0) == (s >= a)
}

func subInt(a, b int) (int, bool) {
	s := a - b
	return s, (b >= 0) == (s <= a)
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, false
	}
	p := a * b
	return p, p/b == a
}
