package semantic

import (
	"fmt"

	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
)

// SemanticAnalyzer walks a Program once before compilation, resolving every
// name against a SymbolTable (locals) or the global/class/builtin namespace,
// and reporting the shape errors the grammar itself cannot catch: using a
// name before any declaration reaches it, declaring the same name twice in
// one scope, a declared type annotation that disagrees with an obvious
// literal initializer, and a class naming a superclass that was never
// declared. It does not run the program — that is internal/compiler and
// internal/vm's job — it only decides, ahead of time, whether compilation
// can proceed.
type SemanticAnalyzer struct {
	dict    *dictionary.Dictionary
	globals map[string]SymbolKind
	classes map[string]*parser.ClassDecl
	table   *SymbolTable
	// funcDepth counts how many function bodies are currently being
	// checked. A VarDecl at the script's true top level has funcDepth 0; a
	// VarDecl at the start of a function body also has table.Depth() 0 (a
	// fresh table per function, mirroring stmt_compiler.go's localCount
	// reset), so funcDepth is what actually distinguishes "declare a
	// global" from "declare slot 0 of this function".
	funcDepth int
	Errors    []error
}

// NewAnalyzer builds an analyzer that treats dict's BuiltinFunc/BuiltinVar
// entries as always-resolved names, matching the lexer's own builtin
// recognition so 출력/수학_제곱근/etc. never trip UndefinedName.
func NewAnalyzer(dict *dictionary.Dictionary) *SemanticAnalyzer {
	return &SemanticAnalyzer{
		dict:    dict,
		globals: make(map[string]SymbolKind),
		classes: make(map[string]*parser.ClassDecl),
	}
}

// Analyze resolves prog and returns the collected errors (empty if prog is
// well-formed). It never panics: every check records a *errors.LangError and
// continues, so one bad statement does not hide problems in the rest of the
// file, mirroring the parser's own panic-mode-then-continue philosophy.
func (a *SemanticAnalyzer) Analyze(prog *parser.Program) []error {
	a.hoist(prog.Stmts)
	a.table = NewSymbolTable()
	for _, s := range prog.Stmts {
		a.checkStmt(s)
	}
	return a.Errors
}

// hoist pre-declares every top-level function and class name before the
// body of any of them is checked, so mutually-recursive functions and
// forward-referenced classes resolve regardless of source order — the same
// guarantee the compiler's hoisting pass (hoisting_compiler.go) gives at the
// bytecode level, made explicit here.
func (a *SemanticAnalyzer) hoist(stmts []parser.Stmt) {
	for _, s := range stmts {
		switch d := s.(type) {
		case *parser.FunctionDecl:
			a.declareGlobal(d.Fn.Name, SymFunc, d.Loc())
		case *parser.ClassDecl:
			a.declareGlobal(d.Name, SymClass, d.Loc())
			a.classes[d.Name] = d
		case *parser.VarDecl:
			a.declareGlobal(d.Name, SymVar, d.Loc())
		}
	}
	// Superclass references can only be checked once every class name in
	// the file has been hoisted.
	for _, c := range a.classes {
		if c.Superclass != "" {
			if _, ok := a.classes[c.Superclass]; !ok {
				a.errf(c.Loc(), errors.UnresolvedReference,
					fmt.Sprintf("클래스 %q의 상위 클래스 %q를 찾을 수 없습니다", c.Name, c.Superclass))
			}
		}
	}
}

func (a *SemanticAnalyzer) declareGlobal(name string, kind SymbolKind, loc lexer.Location) {
	if existing, ok := a.globals[name]; ok {
		a.errf(loc, errors.Redefinition,
			fmt.Sprintf("%q은(는) 이미 %s(으)로 선언되었습니다", name, existing))
		return
	}
	a.globals[name] = kind
}

func (a *SemanticAnalyzer) errf(loc lexer.Location, kind errors.Kind, msg string) {
	a.Errors = append(a.Errors, errors.New(kind, msg, loc.Filename, loc.Line, loc.Column))
}

// resolveName reports whether name is known anywhere: the local scope
// chain, the hoisted globals, or the dictionary's builtin vocabulary.
func (a *SemanticAnalyzer) resolveName(name string) bool {
	if a.table != nil {
		if _, ok := a.table.Resolve(name); ok {
			return true
		}
	}
	if _, ok := a.globals[name]; ok {
		return true
	}
	switch a.dict.Classify(name) {
	case dictionary.BuiltinFunc, dictionary.BuiltinVar:
		return true
	}
	return false
}

func (a *SemanticAnalyzer) checkStmts(stmts []parser.Stmt) {
	for _, s := range stmts {
		a.checkStmt(s)
	}
}

func (a *SemanticAnalyzer) checkStmt(s parser.Stmt) {
	switch st := s.(type) {
	case *parser.VarDecl:
		a.checkExpr(st.Value)
		a.checkTypeAnnotation(st)
		a.declareLocalOrGlobal(st.Name, SymVar, st.Loc())

	case *parser.AssignStmt:
		a.checkExpr(st.Target)
		a.checkExpr(st.Value)

	case *parser.ReturnStmt:
		if st.Value != nil {
			a.checkExpr(st.Value)
		}

	case *parser.IfStmt:
		a.checkExpr(st.Cond)
		a.inBlock(func() { a.checkStmts(st.Then) })
		a.inBlock(func() { a.checkStmts(st.Else) })

	case *parser.WhileStmt:
		a.checkExpr(st.Cond)
		a.inBlock(func() { a.checkStmts(st.Body) })

	case *parser.RangeForStmt:
		a.checkExpr(st.Range.From)
		a.checkExpr(st.Range.To)
		a.inBlock(func() {
			a.table.Declare(st.Variable, SymVar)
			a.checkStmts(st.Body)
		})

	case *parser.RepeatForStmt:
		a.checkExpr(st.Count)
		a.inBlock(func() { a.checkStmts(st.Body) })

	case *parser.EachStmt:
		a.checkExpr(st.Collection)
		a.inBlock(func() {
			a.table.Declare(st.Variable, SymVar)
			a.checkStmts(st.Body)
		})

	case *parser.BlockStmt:
		a.inBlock(func() { a.checkStmts(st.Stmts) })

	case *parser.ImportStmt:
		if st.Path == "" {
			a.errf(st.Loc(), errors.UnresolvedReference, "가져오기 경로가 비어 있습니다")
		}

	case *parser.TryStmt:
		a.inBlock(func() { a.checkStmts(st.Try) })
		a.inBlock(func() {
			if st.CatchVar != "" {
				a.table.Declare(st.CatchVar, SymVar)
			}
			a.checkStmts(st.Catch)
		})

	case *parser.ThrowStmt:
		a.checkExpr(st.Value)

	case *parser.ClassDecl:
		a.checkClassDecl(st)

	case *parser.ExprStmt:
		a.checkExpr(st.Expr)

	case *parser.FunctionDecl:
		a.checkFunctionLiteral(st.Fn)
	}
}

// declareLocalOrGlobal declares name as a local inside a function body
// (funcDepth > 0 while checkFunctionLiteral is checking a body), or promotes
// it to the hoisted globals map at the top level, matching the compiler's
// own declareLocalOrGlobal, which makes the same local-versus-global split.
func (a *SemanticAnalyzer) declareLocalOrGlobal(name string, kind SymbolKind, loc lexer.Location) {
	if a.funcDepth == 0 {
		if _, ok := a.globals[name]; ok {
			// Already hoisted at Analyze's pre-pass (top-level var), not an
			// error — re-declaring via = after the hoist pass is how every
			// top-level VarDecl reaches here.
			return
		}
		a.globals[name] = kind
		return
	}
	if _, ok := a.table.Declare(name, kind); !ok {
		a.errf(loc, errors.Redefinition, fmt.Sprintf("%q은(는) 이미 이 블록에서 선언되었습니다", name))
	}
}

func (a *SemanticAnalyzer) inBlock(body func()) {
	a.table.Enter()
	body()
	a.table.Exit()
}

// checkFunctionLiteral analyzes a function body in its own fresh scope
// chain: the teacher's sub-compilers reset localCount to 0 for every nested
// function, so a fresh SymbolTable here keeps slot numbering in lockstep.
func (a *SemanticAnalyzer) checkFunctionLiteral(fn *parser.FunctionLiteral) {
	saved := a.table
	a.table = NewSymbolTable()
	a.funcDepth++
	for _, p := range fn.Params {
		a.table.Declare(p, SymParam)
	}
	a.checkStmts(fn.Body)
	a.funcDepth--
	a.table = saved
}

func (a *SemanticAnalyzer) checkClassDecl(cd *parser.ClassDecl) {
	if cd.Constructor != nil {
		a.checkFunctionLiteral(cd.Constructor.Fn)
	}
	for _, m := range cd.Methods {
		a.checkFunctionLiteral(m.Fn)
	}
}

// checkTypeAnnotation flags only the decidable case: an obvious literal
// initializer whose kind disagrees with the declared type keyword. Anything
// else (a call, an identifier, an arithmetic expression) is left to the VM's
// runtime type checks, since a full static type system is out of scope.
func (a *SemanticAnalyzer) checkTypeAnnotation(vd *parser.VarDecl) {
	if vd.TypeAnn == "" {
		return
	}
	var mismatch bool
	switch vd.Value.(type) {
	case *parser.IntLiteral:
		mismatch = vd.TypeAnn != "정수"
	case *parser.FloatLiteral:
		mismatch = vd.TypeAnn != "실수"
	case *parser.StringLiteral:
		mismatch = vd.TypeAnn != "문자열" && vd.TypeAnn != "문자"
	case *parser.BoolLiteral:
		mismatch = vd.TypeAnn != "논리"
	case *parser.ArrayLiteral:
		mismatch = vd.TypeAnn != "배열"
	default:
		return
	}
	if mismatch {
		a.errf(vd.Loc(), errors.TypeAnnotationMismatch,
			fmt.Sprintf("%q은(는) %s (으)로 선언되었지만 다른 형식의 값이 대입되었습니다", vd.Name, vd.TypeAnn))
	}
}

func (a *SemanticAnalyzer) checkExpr(e parser.Expr) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *parser.Identifier:
		if !a.resolveName(ex.Name) {
			a.errf(ex.Loc(), errors.UndefinedName, fmt.Sprintf("%q이(가) 정의되지 않았습니다", ex.Name))
		}
	case *parser.ArrayLiteral:
		for _, el := range ex.Elements {
			a.checkExpr(el)
		}
	case *parser.DictLiteral:
		for _, ent := range ex.Entries {
			a.checkExpr(ent.Key)
			a.checkExpr(ent.Value)
		}
	case *parser.BinaryExpr:
		a.checkExpr(ex.Left)
		a.checkExpr(ex.Right)
	case *parser.UnaryExpr:
		a.checkExpr(ex.Operand)
	case *parser.CallExpr:
		a.checkExpr(ex.Callee)
		for _, arg := range ex.Args {
			a.checkExpr(arg)
		}
	case *parser.IndexExpr:
		a.checkExpr(ex.Object)
		a.checkExpr(ex.Index)
	case *parser.FunctionLiteral:
		a.checkFunctionLiteral(ex)
	case *parser.RangeExpr:
		a.checkExpr(ex.From)
		a.checkExpr(ex.To)
	case *parser.PostpositionCallExpr:
		a.checkExpr(ex.Target)
		for _, arg := range ex.Args {
			a.checkExpr(arg)
		}
	case *parser.MatchExpr:
		a.checkExpr(ex.Value)
		for _, c := range ex.Cases {
			if c.Pattern != nil {
				a.checkExpr(c.Pattern)
			}
			a.inBlock(func() { a.checkStmts(c.Body) })
		}
	case *parser.MemberExpr:
		a.checkExpr(ex.Object)
	case *parser.ThisExpr:
		// Resolved dynamically against the call frame's receiver at
		// runtime; nothing to check statically.
	case *parser.NewExpr:
		if _, ok := a.classes[ex.ClassName]; !ok {
			a.errf(ex.Loc(), errors.UnresolvedReference,
				fmt.Sprintf("클래스 %q를 찾을 수 없습니다", ex.ClassName))
		}
		for _, arg := range ex.Args {
			a.checkExpr(arg)
		}
	}
}
