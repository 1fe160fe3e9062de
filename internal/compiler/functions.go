package compiler

import (
	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/semantic"
)

// compileFunctionLiteral pushes a function value for an expression-position
// function literal (anonymous lambda, or a named one used as a value — the
// Name is cosmetic in that position and carries no hoisting).
func (c *Compiler) compileFunctionLiteral(fn *parser.FunctionLiteral) {
	c.compileFunctionBody(fn.Params, fn.Body, fn.Loc(), "")
}

// compileFunctionBody is the single place a callable's code gets emitted:
// top-level hoisted functions, class methods/constructors (thisName =
// "이것"), and the anonymous try/catch thunks all funnel through here.
//
// Functions never close over an enclosing frame's locals — spec.md §3's
// Function note says as much explicitly ("when closures are compiled to
// bytecode the body handle is the chunk offset instead"), so every body
// gets a fresh SymbolTable rooted at depth 0, exactly like the teacher's
// NewStmtCompiler sub-compilers reset localCount to 0 per function.
//
// The body is emitted inline in the chunk's single Code stream (per
// BUILD_FUNCTION's "addr is chunk offset of body" semantics) behind a JUMP
// that skips it during ordinary fall-through execution, so control only
// ever enters it via CALL.
func (c *Compiler) compileFunctionBody(params []string, body []parser.Stmt, loc lexer.Location, thisName string) {
	skip := c.emit(bytecode.OpJump, loc, 0)
	bodyStart := len(c.chunk.Code)

	savedTable := c.table
	c.table = semantic.NewSymbolTable()
	c.funcDepth++

	arity := 0
	if thisName != "" {
		c.table.Declare(thisName, semantic.SymParam)
		arity++
	}
	for _, p := range params {
		c.table.Declare(p, semantic.SymParam)
		arity++
	}

	c.compileStmts(body)
	if !endsInReturn(body) {
		c.emit(bytecode.OpLoadNull, loc)
		c.emit(bytecode.OpReturn, loc)
	}

	c.funcDepth--
	c.table = savedTable

	c.patchForward(skip, len(c.chunk.Code), loc)
	c.emit(bytecode.OpBuildFunction, loc, arity, bodyStart)
}

func endsInReturn(body []parser.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*parser.ReturnStmt)
	return ok
}
