package compiler

import (
	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/semantic"
)

// inBlock runs body with a fresh nested symbol-table scope, mirroring
// internal/semantic's analyzer.inBlock — the compiler's local-slot
// allocation must walk the exact same scope shape the analyzer already
// validated, or a name that passed semantic analysis could resolve to the
// wrong slot here.
func (c *Compiler) inBlock(body func()) {
	c.table.Enter()
	body()
	c.table.Exit()
}

// declareLocalOrGlobal mirrors semantic.SemanticAnalyzer's method of the
// same name: at true top level (funcDepth == 0) a declaration becomes a
// global, resolved later by name through the Names pool; inside any
// function body it is a stack slot in the current SymbolTable.
func (c *Compiler) declareLocalOrGlobal(name string, kind semantic.SymbolKind) {
	if c.funcDepth == 0 {
		return
	}
	c.table.Declare(name, kind)
}

// storeDeclared stores the top of stack into name's just-declared slot (or
// global, at top level), then pops it — VarDecl is a statement, not an
// expression, so nothing of its value survives to the next instruction.
func (c *Compiler) storeDeclared(name string, loc lexer.Location) {
	c.storeName(name, loc)
	c.emit(bytecode.OpPop, loc)
}

func (c *Compiler) compileStmts(stmts []parser.Stmt) {
	for _, stmt := range stmts {
		c.compileStmt(stmt)
	}
}

func (c *Compiler) compileStmt(stmt parser.Stmt) {
	switch s := stmt.(type) {
	case *parser.VarDecl:
		if s.Value != nil {
			c.compileExpr(s.Value)
		} else {
			c.emit(bytecode.OpLoadNull, s.Loc())
		}
		c.declareLocalOrGlobal(s.Name, semantic.SymVar)
		c.storeDeclared(s.Name, s.Loc())

	case *parser.AssignStmt:
		c.compileAssign(s)

	case *parser.ReturnStmt:
		if s.Value != nil {
			c.compileExpr(s.Value)
		} else {
			c.emit(bytecode.OpLoadNull, s.Loc())
		}
		c.emit(bytecode.OpReturn, s.Loc())

	case *parser.IfStmt:
		c.compileIf(s)

	case *parser.WhileStmt:
		c.compileWhile(s)

	case *parser.RangeForStmt:
		c.compileRangeFor(s)

	case *parser.RepeatForStmt:
		c.compileRepeatFor(s)

	case *parser.EachStmt:
		c.compileEach(s)

	case *parser.BlockStmt:
		c.inBlock(func() { c.compileStmts(s.Stmts) })

	case *parser.ImportStmt:
		c.compileImport(s)

	case *parser.TryStmt:
		c.compileTry(s)

	case *parser.ThrowStmt:
		c.compileExpr(s.Value)
		c.emit(bytecode.OpLoadGlobal, s.Loc(), c.chunk.AddName("__throw__"))
		c.emit(bytecode.OpSwap, s.Loc())
		c.emit(bytecode.OpCall, s.Loc(), 1)
		c.emit(bytecode.OpPop, s.Loc())

	case *parser.ClassDecl:
		// Fully handled by precompileClasses/precompileFunctions before the
		// main pass runs — nothing left to emit here, matching how
		// FunctionDecl is skipped below.

	case *parser.ExprStmt:
		c.compileExpr(s.Expr)
		c.emit(bytecode.OpPop, s.Loc())

	case *parser.FunctionDecl:
		// Hoisted: precompileFunctions already compiled and registered it.

	default:
		c.errf(stmt.Loc(), errors.UnexpectedToken, "컴파일할 수 없는 문장입니다 (%T)", stmt)
	}
}

func (c *Compiler) compileAssign(s *parser.AssignStmt) {
	switch target := s.Target.(type) {
	case *parser.Identifier:
		c.compileExpr(s.Value)
		c.storeName(target.Name, s.Loc())
		c.emit(bytecode.OpPop, s.Loc())

	case *parser.IndexExpr:
		c.compileExpr(target.Object)
		c.compileExpr(target.Index)
		c.compileExpr(s.Value)
		c.emit(bytecode.OpIndexSet, s.Loc())

	case *parser.MemberExpr:
		c.compileExpr(target.Object)
		c.emit(bytecode.OpLoadConst, s.Loc(), c.chunk.AddConstant(target.Property))
		c.compileExpr(s.Value)
		c.emit(bytecode.OpIndexSet, s.Loc())

	default:
		c.errf(s.Loc(), errors.UnexpectedToken, "대입 대상이 될 수 없습니다 (%T)", s.Target)
	}
}

// compileIf follows spec.md §4.3's control-flow lowering verbatim: compile
// C, JUMP_IF_FALSE Jelse, POP, compile T, JUMP Jend, patch Jelse, POP,
// compile E, patch Jend.
func (c *Compiler) compileIf(s *parser.IfStmt) {
	c.compileExpr(s.Cond)
	jElse := c.emit(bytecode.OpJumpIfFalse, s.Loc(), 0)
	c.emit(bytecode.OpPop, s.Loc())
	c.inBlock(func() { c.compileStmts(s.Then) })
	jEnd := c.emit(bytecode.OpJump, s.Loc(), 0)
	c.patchForward(jElse, len(c.chunk.Code), s.Loc())
	c.emit(bytecode.OpPop, s.Loc())
	if s.Else != nil {
		c.inBlock(func() { c.compileStmts(s.Else) })
	}
	c.patchForward(jEnd, len(c.chunk.Code), s.Loc())
}

func (c *Compiler) compileWhile(s *parser.WhileStmt) {
	loopStart := len(c.chunk.Code)
	c.compileExpr(s.Cond)
	jEnd := c.emit(bytecode.OpJumpIfFalse, s.Loc(), 0)
	c.emit(bytecode.OpPop, s.Loc())
	c.inBlock(func() { c.compileStmts(s.Body) })
	c.emitLoop(loopStart, s.Loc())
	c.patchForward(jEnd, len(c.chunk.Code), s.Loc())
	c.emit(bytecode.OpPop, s.Loc())
}

// compileRangeFor lowers "Variable가 From부터 To까지/미만 반복 { Body }": a
// materialized integer induction variable, a fixed step of 1, and a
// compile-time-chosen comparison for the upper bound, per spec.md §4.3.
func (c *Compiler) compileRangeFor(s *parser.RangeForStmt) {
	c.inBlock(func() {
		c.compileExpr(s.Range.From)
		c.declareLocalOrGlobal(s.Variable, semantic.SymVar)
		c.storeDeclared(s.Variable, s.Loc())
		sym, _ := c.table.Resolve(s.Variable)

		loopStart := len(c.chunk.Code)
		c.loadSlotOrGlobal(s.Variable, sym, s.Loc())
		c.compileExpr(s.Range.To)
		if s.Range.Bound == "미만" {
			c.emit(bytecode.OpLt, s.Loc())
		} else {
			c.emit(bytecode.OpLe, s.Loc())
		}
		jEnd := c.emit(bytecode.OpJumpIfFalse, s.Loc(), 0)
		c.emit(bytecode.OpPop, s.Loc())

		c.inBlock(func() { c.compileStmts(s.Body) })

		c.loadSlotOrGlobal(s.Variable, sym, s.Loc())
		c.emit(bytecode.OpLoadConst, s.Loc(), c.chunk.AddConstant(int64(1)))
		c.emit(bytecode.OpAdd, s.Loc())
		c.storeSlotOrGlobal(s.Variable, sym, s.Loc())
		c.emit(bytecode.OpPop, s.Loc())

		c.emitLoop(loopStart, s.Loc())
		c.patchForward(jEnd, len(c.chunk.Code), s.Loc())
		c.emit(bytecode.OpPop, s.Loc())
	})
}

// compileRepeatFor lowers "Count번 반복한다 { Body }" using two synthetic
// "__"-prefixed locals (iteration count, iteration index). These names are
// not reserved: the lexer also accepts "_"-leading ASCII identifiers in user
// source.
func (c *Compiler) compileRepeatFor(s *parser.RepeatForStmt) {
	c.inBlock(func() {
		c.compileExpr(s.Count)
		c.declareLocalOrGlobal("__repeat_n", semantic.SymVar)
		c.storeDeclared("__repeat_n", s.Loc())
		nSym, _ := c.table.Resolve("__repeat_n")

		c.emit(bytecode.OpLoadConst, s.Loc(), c.chunk.AddConstant(int64(0)))
		c.declareLocalOrGlobal("__repeat_i", semantic.SymVar)
		c.storeDeclared("__repeat_i", s.Loc())
		iSym, _ := c.table.Resolve("__repeat_i")

		loopStart := len(c.chunk.Code)
		c.loadSlotOrGlobal("__repeat_i", iSym, s.Loc())
		c.loadSlotOrGlobal("__repeat_n", nSym, s.Loc())
		c.emit(bytecode.OpLt, s.Loc())
		jEnd := c.emit(bytecode.OpJumpIfFalse, s.Loc(), 0)
		c.emit(bytecode.OpPop, s.Loc())

		c.inBlock(func() { c.compileStmts(s.Body) })

		c.loadSlotOrGlobal("__repeat_i", iSym, s.Loc())
		c.emit(bytecode.OpLoadConst, s.Loc(), c.chunk.AddConstant(int64(1)))
		c.emit(bytecode.OpAdd, s.Loc())
		c.storeSlotOrGlobal("__repeat_i", iSym, s.Loc())
		c.emit(bytecode.OpPop, s.Loc())

		c.emitLoop(loopStart, s.Loc())
		c.patchForward(jEnd, len(c.chunk.Code), s.Loc())
		c.emit(bytecode.OpPop, s.Loc())
	})
}

// compileEach lowers "각각 Variable 이 Collection { Body }" using 길이
// (length), a stdlib builtin, for the bound check — no LENGTH opcode exists
// in spec.md §4.3's normative table, so the comparison calls through the
// same global-call path any other stdlib function uses.
func (c *Compiler) compileEach(s *parser.EachStmt) {
	c.inBlock(func() {
		c.compileExpr(s.Collection)
		c.declareLocalOrGlobal("__each_coll", semantic.SymVar)
		c.storeDeclared("__each_coll", s.Loc())
		collSym, _ := c.table.Resolve("__each_coll")

		c.emit(bytecode.OpLoadConst, s.Loc(), c.chunk.AddConstant(int64(0)))
		c.declareLocalOrGlobal("__each_i", semantic.SymVar)
		c.storeDeclared("__each_i", s.Loc())
		iSym, _ := c.table.Resolve("__each_i")

		c.declareLocalOrGlobal(s.Variable, semantic.SymVar)
		varSym, _ := c.table.Resolve(s.Variable)

		loopStart := len(c.chunk.Code)
		c.loadSlotOrGlobal("__each_i", iSym, s.Loc())
		c.emit(bytecode.OpLoadGlobal, s.Loc(), c.chunk.AddName("길이"))
		c.emit(bytecode.OpSwap, s.Loc())
		c.loadSlotOrGlobal("__each_coll", collSym, s.Loc())
		c.emit(bytecode.OpCall, s.Loc(), 1)
		c.emit(bytecode.OpLt, s.Loc())
		jEnd := c.emit(bytecode.OpJumpIfFalse, s.Loc(), 0)
		c.emit(bytecode.OpPop, s.Loc())

		c.loadSlotOrGlobal("__each_coll", collSym, s.Loc())
		c.loadSlotOrGlobal("__each_i", iSym, s.Loc())
		c.emit(bytecode.OpIndexGet, s.Loc())
		c.storeSlotOrGlobal(s.Variable, varSym, s.Loc())
		c.emit(bytecode.OpPop, s.Loc())

		c.inBlock(func() { c.compileStmts(s.Body) })

		c.loadSlotOrGlobal("__each_i", iSym, s.Loc())
		c.emit(bytecode.OpLoadConst, s.Loc(), c.chunk.AddConstant(int64(1)))
		c.emit(bytecode.OpAdd, s.Loc())
		c.storeSlotOrGlobal("__each_i", iSym, s.Loc())
		c.emit(bytecode.OpPop, s.Loc())

		c.emitLoop(loopStart, s.Loc())
		c.patchForward(jEnd, len(c.chunk.Code), s.Loc())
		c.emit(bytecode.OpPop, s.Loc())
	})
}

// loadSlotOrGlobal/storeSlotOrGlobal read back a name declared via
// declareLocalOrGlobal earlier in the same compile, using the resolved
// *semantic.Symbol when one exists (funcDepth > 0) or a plain global
// access at true top level — mirroring loadName/storeName but taking the
// already-resolved symbol instead of re-resolving by name, since a
// synthetic loop-control name may shadow nothing and resolve cleanly either
// way.
func (c *Compiler) loadSlotOrGlobal(name string, sym *semantic.Symbol, loc lexer.Location) {
	if sym != nil {
		c.emit(bytecode.OpLoadVar, loc, sym.Slot)
		return
	}
	c.emit(bytecode.OpLoadGlobal, loc, c.chunk.AddName(name))
}

func (c *Compiler) storeSlotOrGlobal(name string, sym *semantic.Symbol, loc lexer.Location) {
	if sym != nil {
		c.emit(bytecode.OpStoreVar, loc, sym.Slot)
		return
	}
	c.emit(bytecode.OpStoreGlobal, loc, c.chunk.AddName(name))
}

// compileImport lowers "가져오기 Path [as Alias]" to a call through the
// module loader's hidden entry point — internal/module resolves Path and
// returns the module's exported Value, which is then bound under Alias (or
// Path itself when no alias is given).
func (c *Compiler) compileImport(s *parser.ImportStmt) {
	c.emit(bytecode.OpLoadGlobal, s.Loc(), c.chunk.AddName("__import__"))
	c.emit(bytecode.OpLoadConst, s.Loc(), c.chunk.AddConstant(s.Path))
	c.emit(bytecode.OpCall, s.Loc(), 1)
	alias := s.Alias
	if alias == "" {
		alias = s.Path
	}
	c.declareLocalOrGlobal(alias, semantic.SymVar)
	c.storeDeclared(alias, s.Loc())
}

// compileTry lowers try/catch with no dedicated opcode: spec.md §4.3's
// table has no TRY/CATCH/THROW entries, so both blocks compile to ordinary
// function values and the VM-level __try__ builtin runs the try-thunk,
// catching a thrown value internally (via the same panic/recover idiom the
// teacher's own parser already uses for control flow, here moved to the
// runtime) and invoking the catch-thunk with it on failure.
func (c *Compiler) compileTry(s *parser.TryStmt) {
	c.emit(bytecode.OpLoadGlobal, s.Loc(), c.chunk.AddName("__try__"))
	c.compileFunctionBody(nil, s.Try, s.Loc(), "")
	c.compileFunctionBody([]string{s.CatchVar}, s.Catch, s.Loc(), "")
	c.emit(bytecode.OpCall, s.Loc(), 2)
	c.emit(bytecode.OpPop, s.Loc())
}
