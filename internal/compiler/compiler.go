// Package compiler lowers a parser.Program to a bytecode.Chunk.
//
// Grounded on the teacher's internal/compiler/stmt_compiler.go (the
// emitOp/emitByte-per-statement-visitor technique, the local-vs-global split,
// manual jump backpatching) and hoisting_compiler.go (the two-pass
// collect-then-precompile scheme for mutual recursion), generalized to
// type-switch over the tagged-union AST in internal/parser rather than the
// teacher's Accept(visitor) dispatch, and emitting through
// bytecode.Chunk.Emit/PatchJump rather than raw WriteOp/WriteByte.
package compiler

import (
	"fmt"

	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/semantic"
)

// newBuiltinName is the hidden global NEW_EXPR calls invoke. The name is not
// reserved: the lexer accepts "_"-leading ASCII identifiers, so user source
// can name this global directly.
const newBuiltinName = "__new__"

// Compiler walks one Program and produces one Chunk. It is single-use:
// construct a fresh Compiler per compilation via New.
type Compiler struct {
	chunk     *bytecode.Chunk
	table     *semantic.SymbolTable
	funcDepth int
	fileName  string

	functions map[string]*parser.FunctionLiteral // hoisted top-level FunctionDecls
	classes   map[string]*parser.ClassDecl

	Errors []error
}

func New(fileName string) *Compiler {
	return &Compiler{
		chunk:     bytecode.NewChunk(),
		table:     semantic.NewSymbolTable(),
		fileName:  fileName,
		functions: map[string]*parser.FunctionLiteral{},
		classes:   map[string]*parser.ClassDecl{},
	}
}

// Compile lowers prog to a Chunk. A non-empty Errors slice means the chunk
// is not safe to run — the caller should surface the errors rather than
// hand the chunk to the VM, matching spec.md §7's "any error prevents
// bytecode emission" propagation policy.
func (c *Compiler) Compile(prog *parser.Program) (*bytecode.Chunk, []error) {
	c.hoist(prog.Stmts)
	c.precompileClasses()
	c.precompileFunctions()
	for _, stmt := range prog.Stmts {
		c.compileStmt(stmt)
	}
	c.emit(bytecode.OpHalt, lexer.Location{Filename: c.fileName})
	return c.chunk, c.Errors
}

func (c *Compiler) errf(loc lexer.Location, kind errors.Kind, format string, args ...interface{}) {
	c.Errors = append(c.Errors, errors.New(kind, fmt.Sprintf(format, args...), loc.Filename, loc.Line, loc.Column))
}

func (c *Compiler) debugAt(loc lexer.Location) bytecode.DebugInfo {
	return bytecode.DebugInfo{Line: loc.Line, Column: loc.Column, File: c.fileName}
}

// emit is Chunk.Emit stamped with loc's debug info, returning the
// instruction's starting offset.
func (c *Compiler) emit(op bytecode.OpCode, loc lexer.Location, operands ...int) int {
	return c.chunk.Emit(op, c.debugAt(loc), operands...)
}

// patchForward backpatches the single-operand jump instruction at pos so it
// lands at target, sized to that opcode's declared width. Used for JUMP/
// JUMP_IF_FALSE/JUMP_IF_TRUE (1-byte, per DESIGN.md Open Question #1); an
// out-of-range offset surfaces as errors.JumpTooFar with loc rather than the
// bare error PatchJump returns, since only the compiler has a source
// location to attach.
func (c *Compiler) patchForward(pos, target int, loc lexer.Location) {
	op := bytecode.OpCode(c.chunk.Code[pos])
	def, err := bytecode.Get(op)
	if err != nil {
		c.errf(loc, errors.JumpTooFar, "%s", err)
		return
	}
	width := def.OperandWidths[0]
	value := target - pos - 1 - width
	if err := c.chunk.PatchJump(pos, value); err != nil {
		c.errf(loc, errors.JumpTooFar, "%s", err)
	}
}

// emitLoop emits LOOP (2-byte backward operand) jumping back to loopStart.
func (c *Compiler) emitLoop(loopStart int, loc lexer.Location) {
	pos := c.emit(bytecode.OpLoop, loc, 0)
	value := pos + 1 + 2 - loopStart
	if err := c.chunk.PatchJump(pos, value); err != nil {
		c.errf(loc, errors.JumpTooFar, "%s", err)
	}
}

// loadName resolves name against the local scope chain, then falls back to
// a global lookup — this is where a hoisted top-level function ends up read
// back: precompileFunctions already emitted STORE_GLOBAL for it, so an
// ordinary LOAD_GLOBAL here finds it with no special call-site case needed
// (unlike the teacher's HoistingCompiler.VisitCallExpr, which hand-rolls a
// functionIndexes fast path because its chunk has no deduplicated Names
// pool to key a plain global lookup on).
func (c *Compiler) loadName(name string, loc lexer.Location) {
	if sym, ok := c.table.Resolve(name); ok {
		c.emit(bytecode.OpLoadVar, loc, sym.Slot)
		return
	}
	c.emit(bytecode.OpLoadGlobal, loc, c.chunk.AddName(name))
}

// storeName mirrors loadName for assignment targets.
func (c *Compiler) storeName(name string, loc lexer.Location) {
	if sym, ok := c.table.Resolve(name); ok {
		c.emit(bytecode.OpStoreVar, loc, sym.Slot)
		return
	}
	c.emit(bytecode.OpStoreGlobal, loc, c.chunk.AddName(name))
}

// compileExpr lowers one expression, leaving exactly one value on the
// stack (per spec.md §4.3's per-opcode stack-effect column).
func (c *Compiler) compileExpr(e parser.Expr) {
	switch ex := e.(type) {
	case *parser.Identifier:
		c.loadName(ex.Name, ex.Loc())

	case *parser.IntLiteral:
		c.emit(bytecode.OpLoadConst, ex.Loc(), c.chunk.AddConstant(ex.Value))

	case *parser.FloatLiteral:
		c.emit(bytecode.OpLoadConst, ex.Loc(), c.chunk.AddConstant(ex.Value))

	case *parser.StringLiteral:
		c.emit(bytecode.OpLoadConst, ex.Loc(), c.chunk.AddConstant(ex.Value))

	case *parser.BoolLiteral:
		if ex.Value {
			c.emit(bytecode.OpLoadTrue, ex.Loc())
		} else {
			c.emit(bytecode.OpLoadFalse, ex.Loc())
		}

	case *parser.ArrayLiteral:
		for _, elem := range ex.Elements {
			c.compileExpr(elem)
		}
		c.emit(bytecode.OpBuildArray, ex.Loc(), len(ex.Elements))

	case *parser.DictLiteral:
		// No BUILD_DICT opcode exists in spec.md §4.3's normative table.
		// A dictionary literal desugars to a flat [k1, v1, k2, v2, ...]
		// array handed to the stdlib builtin that folds pairs into a
		// Dictionary Value — this needs no new opcode, only a global the
		// VM's builtin table resolves at runtime.
		for _, entry := range ex.Entries {
			c.compileExpr(entry.Key)
			c.compileExpr(entry.Value)
		}
		c.emit(bytecode.OpBuildArray, ex.Loc(), len(ex.Entries)*2)
		c.emit(bytecode.OpLoadGlobal, ex.Loc(), c.chunk.AddName("사전_생성"))
		c.emit(bytecode.OpSwap, ex.Loc())
		c.emit(bytecode.OpCall, ex.Loc(), 1)

	case *parser.BinaryExpr:
		c.compileExpr(ex.Left)
		c.compileExpr(ex.Right)
		c.emitBinaryOp(ex.Op, ex.Loc())

	case *parser.UnaryExpr:
		c.compileExpr(ex.Operand)
		switch ex.Op {
		case "-":
			c.emit(bytecode.OpNeg, ex.Loc())
		case "!":
			c.emit(bytecode.OpNot, ex.Loc())
		default:
			c.errf(ex.Loc(), errors.UnexpectedToken, "알 수 없는 단항 연산자 %q", ex.Op)
		}

	case *parser.CallExpr:
		// 출력(v) is a compiler intrinsic, not an ordinary global call: PRINT
		// is its own opcode (spec.md §4.3), so a call to the exact builtin
		// name lowers straight to it instead of LOAD_GLOBAL+CALL.
		if callee, ok := ex.Callee.(*parser.Identifier); ok && callee.Name == "출력" {
			if len(ex.Args) != 1 {
				c.errf(ex.Loc(), errors.ArityMismatch, "출력은 인자 1개를 받습니다 (받은 개수: %d)", len(ex.Args))
				return
			}
			c.compileExpr(ex.Args[0])
			c.emit(bytecode.OpPrint, ex.Loc())
			c.emit(bytecode.OpLoadNull, ex.Loc())
			return
		}
		c.compileExpr(ex.Callee)
		for _, arg := range ex.Args {
			c.compileExpr(arg)
		}
		c.emit(bytecode.OpCall, ex.Loc(), len(ex.Args))

	case *parser.IndexExpr:
		c.compileExpr(ex.Object)
		c.compileExpr(ex.Index)
		c.emit(bytecode.OpIndexGet, ex.Loc())

	case *parser.FunctionLiteral:
		c.compileFunctionLiteral(ex)

	case *parser.PostpositionCallExpr:
		c.compileExpr(ex.Target)
		for _, arg := range ex.Args {
			c.compileExpr(arg)
		}
		c.emit(bytecode.OpPostpositionCall, ex.Loc(), int(ex.Postposition), c.chunk.AddName(ex.Method))

	case *parser.MatchExpr:
		c.compileMatchExpr(ex)

	case *parser.MemberExpr:
		// No GET_PROPERTY opcode exists either: a ClassInstance's
		// field-map is read the same way an Array's numeric index is,
		// INDEX_GET generalized at the VM to accept a string key against
		// a ClassInstance receiver.
		c.compileExpr(ex.Object)
		c.emit(bytecode.OpLoadConst, ex.Loc(), c.chunk.AddConstant(ex.Property))
		c.emit(bytecode.OpIndexGet, ex.Loc())

	case *parser.ThisExpr:
		if sym, ok := c.table.Resolve("이것"); ok {
			c.emit(bytecode.OpLoadVar, ex.Loc(), sym.Slot)
		} else {
			c.errf(ex.Loc(), errors.UndefinedName, "메소드 밖에서는 '이것'을 사용할 수 없습니다")
		}

	case *parser.NewExpr:
		c.emit(bytecode.OpLoadGlobal, ex.Loc(), c.chunk.AddName(newBuiltinName))
		c.emit(bytecode.OpLoadConst, ex.Loc(), c.chunk.AddConstant(ex.ClassName))
		for _, arg := range ex.Args {
			c.compileExpr(arg)
		}
		c.emit(bytecode.OpCall, ex.Loc(), len(ex.Args)+1)

	case *parser.RangeExpr:
		c.errf(ex.Loc(), errors.UnexpectedToken, "범위 표현식은 반복문 밖에서 사용할 수 없습니다")

	default:
		c.errf(e.Loc(), errors.UnexpectedToken, "컴파일할 수 없는 표현식입니다 (%T)", e)
	}
}

func (c *Compiler) emitBinaryOp(op string, loc lexer.Location) {
	switch op {
	case "+":
		c.emit(bytecode.OpAdd, loc)
	case "-":
		c.emit(bytecode.OpSub, loc)
	case "*":
		c.emit(bytecode.OpMul, loc)
	case "/":
		c.emit(bytecode.OpDiv, loc)
	case "%":
		c.emit(bytecode.OpMod, loc)
	case "==":
		c.emit(bytecode.OpEq, loc)
	case "!=":
		c.emit(bytecode.OpNe, loc)
	case "<":
		c.emit(bytecode.OpLt, loc)
	case ">":
		c.emit(bytecode.OpGt, loc)
	case "<=":
		c.emit(bytecode.OpLe, loc)
	case ">=":
		c.emit(bytecode.OpGe, loc)
	case "&&":
		c.emit(bytecode.OpAnd, loc)
	case "||":
		c.emit(bytecode.OpOr, loc)
	default:
		c.errf(loc, errors.UnexpectedToken, "알 수 없는 이항 연산자 %q", op)
	}
}

// compileMatchExpr lowers 맞추기(value){ pattern -> body, ... } by
// duplicating the scrutinee for each case, comparing for equality, and
// jumping to the next case on mismatch — the same shape as the teacher's
// VisitMatchStmt, generalized to an expression result instead of a
// statement and to the Emit/PatchJump API. The default case ("_", nil
// Pattern) has no comparison at all; it must be last structurally and simply
// falls through to its body.
func (c *Compiler) compileMatchExpr(ex *parser.MatchExpr) {
	c.compileExpr(ex.Value)
	var endJumps []int
	for i, cs := range ex.Cases {
		isLast := i == len(ex.Cases)-1
		var nextCasePos int
		if cs.Pattern != nil {
			c.emit(bytecode.OpDup, ex.Loc())
			c.compileExpr(cs.Pattern)
			c.emit(bytecode.OpEq, ex.Loc())
			nextCasePos = c.emit(bytecode.OpJumpIfFalse, ex.Loc(), 0)
			c.emit(bytecode.OpPop, ex.Loc())
		}
		c.emit(bytecode.OpPop, ex.Loc()) // drop the scrutinee before the body runs
		c.compileBlockAsExpr(cs.Body, ex.Loc())
		if !isLast || cs.Pattern != nil {
			endJumps = append(endJumps, c.emit(bytecode.OpJump, ex.Loc(), 0))
		}
		if cs.Pattern != nil {
			c.patchForward(nextCasePos, len(c.chunk.Code), ex.Loc())
			c.emit(bytecode.OpPop, ex.Loc())
			if isLast {
				c.emit(bytecode.OpLoadNull, ex.Loc()) // no case matched
			}
		}
	}
	for _, pos := range endJumps {
		c.patchForward(pos, len(c.chunk.Code), ex.Loc())
	}
}

// compileBlockAsExpr compiles stmts as an expression-producing block: every
// statement but a trailing ExprStmt is compiled normally (and pops its
// value), the trailing ExprStmt's value is left on the stack as the block's
// result. An empty body or a body not ending in an expression pushes null.
func (c *Compiler) compileBlockAsExpr(stmts []parser.Stmt, loc lexer.Location) {
	for i, stmt := range stmts {
		if i == len(stmts)-1 {
			if es, ok := stmt.(*parser.ExprStmt); ok {
				c.compileExpr(es.Expr)
				return
			}
		}
		c.compileStmt(stmt)
	}
	c.emit(bytecode.OpLoadNull, loc)
}
