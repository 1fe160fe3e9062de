// Package evaluator is the tree-walking fallback SPEC_FULL.md §9 carries
// over from spec.md's own design notes ("a legacy tree-walking evaluator is
// acceptable for the REPL's incomplete-input path"). It is never the main
// execution engine — internal/vm's bytecode interpreter is — and it is used
// only by internal/repl, to give a REPL line immediate feedback without
// round-tripping it through the compiler each keystroke. It shares the same
// Value representation and the same arithmetic/comparison/indexing rules as
// the bytecode VM (via vm.Arith/vm.Compare/vm.IndexGet/vm.IndexSet) so the
// two execution paths can never silently disagree on what an operator means;
// it reimplements only control flow and name binding, which the VM expresses
// as opcodes this package has no access to.
//
// Modeled on spec.md §9's guidance: no Go panics for language-level control
// flow. A 반환 (return) unwinds by returning a Result of SignalReturn up
// the call stack explicitly, exactly as the bytecode VM's own RETURN opcode
// is an ordinary instruction rather than an exception.
package evaluator

import (
	"fmt"

	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/vm"
)

// Signal distinguishes why Eval stopped walking a statement list.
type Signal int

const (
	SignalNormal Signal = iota
	SignalReturn
)

// Result is what evaluating one statement or one statement list produces.
type Result struct {
	Signal Signal
	Value  vm.Value
}

func normal(v vm.Value) Result { return Result{Signal: SignalNormal, Value: v} }
func ret(v vm.Value) Result    { return Result{Signal: SignalReturn, Value: v} }

// Env is a chain of lexical scopes — one per block/function body entered,
// mirroring the compiler's own block-scoped local slots but by name instead
// of by stack slot, since this evaluator never produces bytecode.
type Env struct {
	parent *Env
	vars   map[string]vm.Value
}

func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: map[string]vm.Value{}}
}

func (e *Env) Get(name string) (vm.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return vm.Null, false
}

func (e *Env) Define(name string, val vm.Value) {
	e.vars[name] = val
}

// Set assigns to the nearest enclosing scope already defining name,
// reporting false if no scope does (the caller then defines it in the
// current scope).
func (e *Env) Set(name string, val vm.Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = val
			return true
		}
	}
	return false
}

// Evaluator walks AST directly against a *vm.VM, which supplies Arith,
// Compare, IndexGet/IndexSet, and every registered builtin/global — this
// package owns only control flow and local name binding.
type Evaluator struct {
	v       *vm.VM
	globals *Env
}

// New returns an Evaluator sharing v's globals/builtins table. Every REPL
// line evaluates against the same Evaluator so 정수 x = 1 in one line is
// still visible to the next.
func New(v *vm.VM) *Evaluator {
	return &Evaluator{v: v, globals: NewEnv(nil)}
}

// EvalProgram runs stmts at top scope and returns the value of the last
// expression statement evaluated, if any — the REPL prints this as the
// line's result the way most interactive interpreters do, even though
// 한글스크립트 itself has no implicit "last expression is the result" rule
// in file mode (file mode requires explicit 출력).
func (ev *Evaluator) EvalProgram(stmts []parser.Stmt) (Result, error) {
	var last Result
	for _, s := range stmts {
		r, err := ev.evalStmt(s, ev.globals)
		if err != nil {
			return Result{}, err
		}
		last = r
		if r.Signal == SignalReturn {
			return last, nil
		}
	}
	return last, nil
}

func (ev *Evaluator) evalBlock(stmts []parser.Stmt, env *Env) (Result, error) {
	var last Result
	for _, s := range stmts {
		r, err := ev.evalStmt(s, env)
		if err != nil {
			return Result{}, err
		}
		last = r
		if r.Signal == SignalReturn {
			return last, nil
		}
	}
	return last, nil
}

func (ev *Evaluator) evalStmt(s parser.Stmt, env *Env) (Result, error) {
	switch st := s.(type) {
	case *parser.ExprStmt:
		v, err := ev.evalExpr(st.Expr, env)
		if err != nil {
			return Result{}, err
		}
		return normal(v), nil

	case *parser.VarDecl:
		v := vm.Null
		if st.Value != nil {
			var err error
			v, err = ev.evalExpr(st.Value, env)
			if err != nil {
				return Result{}, err
			}
		}
		env.Define(st.Name, v)
		return normal(vm.Null), nil

	case *parser.AssignStmt:
		v, err := ev.evalExpr(st.Value, env)
		if err != nil {
			return Result{}, err
		}
		if err := ev.assign(st.Target, v, env); err != nil {
			return Result{}, err
		}
		return normal(vm.Null), nil

	case *parser.ReturnStmt:
		v := vm.Null
		if st.Value != nil {
			var err error
			v, err = ev.evalExpr(st.Value, env)
			if err != nil {
				return Result{}, err
			}
		}
		return ret(v), nil

	case *parser.IfStmt:
		cond, err := ev.evalExpr(st.Cond, env)
		if err != nil {
			return Result{}, err
		}
		if cond.Truthy() {
			return ev.evalBlock(st.Then, NewEnv(env))
		}
		return ev.evalBlock(st.Else, NewEnv(env))

	case *parser.WhileStmt:
		for {
			cond, err := ev.evalExpr(st.Cond, env)
			if err != nil {
				return Result{}, err
			}
			if !cond.Truthy() {
				return normal(vm.Null), nil
			}
			r, err := ev.evalBlock(st.Body, NewEnv(env))
			if err != nil {
				return Result{}, err
			}
			if r.Signal == SignalReturn {
				return r, nil
			}
		}

	case *parser.RepeatForStmt:
		count, err := ev.evalExpr(st.Count, env)
		if err != nil {
			return Result{}, err
		}
		if count.Kind != vm.KindInteger {
			return Result{}, fmt.Errorf("반복 횟수는 정수여야 합니다")
		}
		for i := int64(0); i < count.Int; i++ {
			r, err := ev.evalBlock(st.Body, NewEnv(env))
			if err != nil {
				return Result{}, err
			}
			if r.Signal == SignalReturn {
				return r, nil
			}
		}
		return normal(vm.Null), nil

	case *parser.EachStmt:
		coll, err := ev.evalExpr(st.Collection, env)
		if err != nil {
			return Result{}, err
		}
		if coll.Kind != vm.KindArray {
			return Result{}, fmt.Errorf("각각은 배열에만 사용할 수 있습니다")
		}
		for _, item := range coll.Arr.Items {
			loopEnv := NewEnv(env)
			loopEnv.Define(st.Variable, item)
			r, err := ev.evalBlock(st.Body, loopEnv)
			if err != nil {
				return Result{}, err
			}
			if r.Signal == SignalReturn {
				return r, nil
			}
		}
		return normal(vm.Null), nil

	case *parser.BlockStmt:
		return ev.evalBlock(st.Stmts, NewEnv(env))

	default:
		return Result{}, fmt.Errorf("evaluator: %T는 REPL 즉시 평가를 지원하지 않습니다", s)
	}
}

func (ev *Evaluator) assign(target parser.Expr, v vm.Value, env *Env) error {
	switch t := target.(type) {
	case *parser.Identifier:
		if !env.Set(t.Name, v) {
			env.Define(t.Name, v)
		}
		return nil
	case *parser.IndexExpr:
		obj, err := ev.evalExpr(t.Object, env)
		if err != nil {
			return err
		}
		idx, err := ev.evalExpr(t.Index, env)
		if err != nil {
			return err
		}
		return ev.v.IndexSet(obj, idx, v)
	case *parser.MemberExpr:
		obj, err := ev.evalExpr(t.Object, env)
		if err != nil {
			return err
		}
		return ev.v.IndexSet(obj, vm.Str(t.Property), v)
	default:
		return fmt.Errorf("evaluator: 대입 대상이 올바르지 않습니다 (%T)", target)
	}
}

var binaryOps = map[string]bytecode.OpCode{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul,
	"/": bytecode.OpDiv, "%": bytecode.OpMod,
}
var compareOps = map[string]bytecode.OpCode{
	"<": bytecode.OpLt, ">": bytecode.OpGt, "<=": bytecode.OpLe, ">=": bytecode.OpGe,
}

func (ev *Evaluator) evalExpr(e parser.Expr, env *Env) (vm.Value, error) {
	switch ex := e.(type) {
	case *parser.IntLiteral:
		return vm.Int(ex.Value), nil
	case *parser.FloatLiteral:
		return vm.Float(ex.Value), nil
	case *parser.StringLiteral:
		return vm.Str(ex.Value), nil
	case *parser.BoolLiteral:
		return vm.Bool(ex.Value), nil

	case *parser.Identifier:
		if v, ok := env.Get(ex.Name); ok {
			return v, nil
		}
		if v, ok := ev.v.Globals()[ex.Name]; ok {
			return v, nil
		}
		return vm.Null, fmt.Errorf("정의되지 않은 이름입니다: %s", ex.Name)

	case *parser.ArrayLiteral:
		items := make([]vm.Value, len(ex.Elements))
		for i, el := range ex.Elements {
			v, err := ev.evalExpr(el, env)
			if err != nil {
				return vm.Null, err
			}
			items[i] = v
		}
		return vm.NewArray(items), nil

	case *parser.DictLiteral:
		items := make(map[string]vm.Value, len(ex.Entries))
		for _, entry := range ex.Entries {
			k, err := ev.evalExpr(entry.Key, env)
			if err != nil {
				return vm.Null, err
			}
			if k.Kind != vm.KindString {
				return vm.Null, fmt.Errorf("사전 키는 문자열이어야 합니다")
			}
			v, err := ev.evalExpr(entry.Value, env)
			if err != nil {
				return vm.Null, err
			}
			items[k.Str] = v
		}
		return vm.NewDictionary(items), nil

	case *parser.BinaryExpr:
		l, err := ev.evalExpr(ex.Left, env)
		if err != nil {
			return vm.Null, err
		}
		r, err := ev.evalExpr(ex.Right, env)
		if err != nil {
			return vm.Null, err
		}
		if ex.Op == "&&" {
			return vm.Bool(l.Truthy() && r.Truthy()), nil
		}
		if ex.Op == "||" {
			return vm.Bool(l.Truthy() || r.Truthy()), nil
		}
		if ex.Op == "==" {
			return vm.Bool(l.Equals(r)), nil
		}
		if ex.Op == "!=" {
			return vm.Bool(!l.Equals(r)), nil
		}
		if op, ok := binaryOps[ex.Op]; ok {
			return ev.v.Arith(op, l, r)
		}
		if op, ok := compareOps[ex.Op]; ok {
			ok2, err := ev.v.Compare(op, l, r)
			return vm.Bool(ok2), err
		}
		return vm.Null, fmt.Errorf("알 수 없는 연산자입니다: %s", ex.Op)

	case *parser.UnaryExpr:
		v, err := ev.evalExpr(ex.Operand, env)
		if err != nil {
			return vm.Null, err
		}
		switch ex.Op {
		case "-":
			return ev.v.Arith(bytecode.OpSub, vm.Int(0), v)
		case "!":
			return vm.Bool(!v.Truthy()), nil
		default:
			return vm.Null, fmt.Errorf("알 수 없는 단항 연산자입니다: %s", ex.Op)
		}

	case *parser.IndexExpr:
		obj, err := ev.evalExpr(ex.Object, env)
		if err != nil {
			return vm.Null, err
		}
		idx, err := ev.evalExpr(ex.Index, env)
		if err != nil {
			return vm.Null, err
		}
		return ev.v.IndexGet(obj, idx)

	case *parser.MemberExpr:
		obj, err := ev.evalExpr(ex.Object, env)
		if err != nil {
			return vm.Null, err
		}
		return ev.v.IndexGet(obj, vm.Str(ex.Property))

	case *parser.CallExpr:
		if id, ok := ex.Callee.(*parser.Identifier); ok && id.Name == "출력" {
			if len(ex.Args) != 1 {
				return vm.Null, fmt.Errorf("출력은 인자 1개를 받습니다")
			}
			v, err := ev.evalExpr(ex.Args[0], env)
			if err != nil {
				return vm.Null, err
			}
			fmt.Fprintln(ev.v.Out, v.String())
			return vm.Null, nil
		}
		callee, err := ev.evalExpr(ex.Callee, env)
		if err != nil {
			return vm.Null, err
		}
		args := make([]vm.Value, len(ex.Args))
		for i, a := range ex.Args {
			v, err := ev.evalExpr(a, env)
			if err != nil {
				return vm.Null, err
			}
			args[i] = v
		}
		return ev.v.CallValue(callee, args)

	default:
		return vm.Null, fmt.Errorf("evaluator: %T는 REPL 즉시 평가를 지원하지 않습니다", e)
	}
}
