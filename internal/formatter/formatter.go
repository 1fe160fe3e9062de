// Package formatter pretty-prints a parsed Program back to canonical
// 한글스크립트 source, backing `hgs fmt FILE`. Grounded directly on the
// teacher's internal/formatter/formatter.go recursive strings.Builder
// walk over Stmt/Expr — same indent/lineBreak bookkeeping, same
// needsBlankLine rule between declarations — retargeted at the student
// grammar's own statement/expression node set and its postposition-driven
// surface syntax (가져오기/반환/각각/번 반복한다 instead of import/return/
// for-in/for).
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"hangeulscript/internal/parser"
)

// Formatter renders a Program with 4-space indentation, matching the
// teacher's own indentStr default.
type Formatter struct {
	indent    int
	indentStr string
	output    strings.Builder
}

func New() *Formatter {
	return &Formatter{indentStr: "    "}
}

// Format renders stmts, inserting a blank line between top-level function
// and class declarations the way the teacher's needsBlankLine does.
func (f *Formatter) Format(stmts []parser.Stmt) string {
	f.output.Reset()
	f.indent = 0
	for i, stmt := range stmts {
		f.formatStmt(stmt)
		if i < len(stmts)-1 && f.needsBlankLine(stmt, stmts[i+1]) {
			f.output.WriteString("\n")
		}
	}
	return f.output.String()
}

func (f *Formatter) needsBlankLine(curr, next parser.Stmt) bool {
	_, currFn := curr.(*parser.FunctionDecl)
	_, nextFn := next.(*parser.FunctionDecl)
	_, currClass := curr.(*parser.ClassDecl)
	_, nextClass := next.(*parser.ClassDecl)
	if currFn || nextFn || currClass || nextClass {
		return true
	}
	_, currImport := curr.(*parser.ImportStmt)
	_, nextImport := next.(*parser.ImportStmt)
	return currImport && !nextImport
}

func (f *Formatter) writeIndent() {
	for i := 0; i < f.indent; i++ {
		f.output.WriteString(f.indentStr)
	}
}

func (f *Formatter) formatBlock(body []parser.Stmt) {
	f.output.WriteString(" {\n")
	f.indent++
	for _, s := range body {
		f.formatStmt(s)
	}
	f.indent--
	f.writeIndent()
	f.output.WriteString("}")
}

func (f *Formatter) formatStmt(stmt parser.Stmt) {
	if stmt == nil {
		return
	}
	switch s := stmt.(type) {
	case *parser.VarDecl:
		f.writeIndent()
		if s.TypeAnn != "" {
			f.output.WriteString(s.TypeAnn + " ")
		}
		f.output.WriteString(s.Name + " = ")
		f.formatExpr(s.Value)
		f.output.WriteString("\n")

	case *parser.AssignStmt:
		f.writeIndent()
		f.formatExpr(s.Target)
		f.output.WriteString(" = ")
		f.formatExpr(s.Value)
		f.output.WriteString("\n")

	case *parser.ReturnStmt:
		f.writeIndent()
		f.output.WriteString("반환")
		if s.Value != nil {
			f.output.WriteString(" ")
			f.formatExpr(s.Value)
		}
		f.output.WriteString("\n")

	case *parser.IfStmt:
		f.writeIndent()
		f.output.WriteString("만약 ")
		f.formatExpr(s.Cond)
		f.formatBlock(s.Then)
		if len(s.Else) > 0 {
			f.output.WriteString(" 아니면")
			f.formatBlock(s.Else)
		}
		f.output.WriteString("\n")

	case *parser.WhileStmt:
		f.writeIndent()
		f.output.WriteString("동안 ")
		f.formatExpr(s.Cond)
		f.formatBlock(s.Body)
		f.output.WriteString("\n")

	case *parser.RangeForStmt:
		f.writeIndent()
		f.output.WriteString(s.Variable + "가 ")
		f.formatExpr(s.Range)
		f.output.WriteString(" 반복")
		f.formatBlock(s.Body)
		f.output.WriteString("\n")

	case *parser.RepeatForStmt:
		f.writeIndent()
		f.formatExpr(s.Count)
		f.output.WriteString("번 반복한다")
		f.formatBlock(s.Body)
		f.output.WriteString("\n")

	case *parser.EachStmt:
		f.writeIndent()
		f.output.WriteString("각각 " + s.Variable + " 이 ")
		f.formatExpr(s.Collection)
		f.formatBlock(s.Body)
		f.output.WriteString("\n")

	case *parser.BlockStmt:
		f.writeIndent()
		f.formatBlock(s.Stmts)
		f.output.WriteString("\n")

	case *parser.ImportStmt:
		f.writeIndent()
		f.output.WriteString("가져오기 " + strconv.Quote(s.Path))
		if s.Alias != "" {
			f.output.WriteString(" " + s.Alias)
		}
		f.output.WriteString("\n")

	case *parser.TryStmt:
		f.writeIndent()
		f.output.WriteString("시도")
		f.formatBlock(s.Try)
		f.output.WriteString(" 잡기")
		if s.CatchVar != "" {
			f.output.WriteString(" " + s.CatchVar)
		}
		f.formatBlock(s.Catch)
		f.output.WriteString("\n")

	case *parser.ThrowStmt:
		f.writeIndent()
		f.output.WriteString("던지기 ")
		f.formatExpr(s.Value)
		f.output.WriteString("\n")

	case *parser.FunctionDecl:
		f.writeIndent()
		f.formatFunctionLiteral("함수", s.Fn)
		f.output.WriteString("\n")

	case *parser.ClassDecl:
		f.writeIndent()
		f.output.WriteString("클래스 " + s.Name)
		if s.Superclass != "" {
			f.output.WriteString(": " + s.Superclass)
		}
		f.output.WriteString(" {\n")
		f.indent++
		for _, field := range s.Fields {
			f.writeIndent()
			f.output.WriteString(field.Name + "\n")
		}
		if s.Constructor != nil {
			f.writeIndent()
			f.formatFunctionLiteral("함수", s.Constructor.Fn)
			f.output.WriteString("\n")
		}
		for _, m := range s.Methods {
			f.writeIndent()
			f.formatFunctionLiteral("함수", m.Fn)
			f.output.WriteString("\n")
		}
		f.indent--
		f.writeIndent()
		f.output.WriteString("}\n")

	case *parser.ExprStmt:
		f.writeIndent()
		f.formatExpr(s.Expr)
		f.output.WriteString("\n")
	}
}

func (f *Formatter) formatFunctionLiteral(keyword string, fn *parser.FunctionLiteral) {
	f.output.WriteString(keyword + " " + fn.Name + "(")
	f.output.WriteString(strings.Join(fn.Params, ", "))
	f.output.WriteString(")")
	f.formatBlock(fn.Body)
}

func (f *Formatter) formatExpr(expr parser.Expr) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *parser.Identifier:
		f.output.WriteString(e.Name)

	case *parser.IntLiteral:
		f.output.WriteString(strconv.FormatInt(e.Value, 10))

	case *parser.FloatLiteral:
		f.output.WriteString(strconv.FormatFloat(e.Value, 'g', -1, 64))

	case *parser.StringLiteral:
		f.output.WriteString(strconv.Quote(e.Value))

	case *parser.BoolLiteral:
		if e.Value {
			f.output.WriteString("참")
		} else {
			f.output.WriteString("거짓")
		}

	case *parser.ArrayLiteral:
		f.output.WriteString("[")
		for i, el := range e.Elements {
			if i > 0 {
				f.output.WriteString(", ")
			}
			f.formatExpr(el)
		}
		f.output.WriteString("]")

	case *parser.DictLiteral:
		f.output.WriteString("{")
		for i, entry := range e.Entries {
			if i > 0 {
				f.output.WriteString(", ")
			}
			f.formatExpr(entry.Key)
			f.output.WriteString(": ")
			f.formatExpr(entry.Value)
		}
		f.output.WriteString("}")

	case *parser.BinaryExpr:
		f.formatExpr(e.Left)
		f.output.WriteString(" " + e.Op + " ")
		f.formatExpr(e.Right)

	case *parser.UnaryExpr:
		f.output.WriteString(e.Op)
		f.formatExpr(e.Operand)

	case *parser.CallExpr:
		f.formatExpr(e.Callee)
		f.output.WriteString("(")
		for i, arg := range e.Args {
			if i > 0 {
				f.output.WriteString(", ")
			}
			f.formatExpr(arg)
		}
		f.output.WriteString(")")

	case *parser.IndexExpr:
		f.formatExpr(e.Object)
		f.output.WriteString("[")
		f.formatExpr(e.Index)
		f.output.WriteString("]")

	case *parser.FunctionLiteral:
		f.formatFunctionLiteral("함수", e)

	case *parser.RangeExpr:
		f.formatExpr(e.From)
		f.output.WriteString("부터 ")
		f.formatExpr(e.To)
		bound := e.Bound
		if bound == "" {
			bound = "이하"
		}
		f.output.WriteString(" " + bound)

	case *parser.PostpositionCallExpr:
		f.formatExpr(e.Target)
		f.output.WriteString("을 " + e.Method + "(")
		for i, arg := range e.Args {
			if i > 0 {
				f.output.WriteString(", ")
			}
			f.formatExpr(arg)
		}
		f.output.WriteString(")")

	case *parser.MatchExpr:
		f.output.WriteString("맞추기 ")
		f.formatExpr(e.Value)
		f.output.WriteString(" {\n")
		f.indent++
		for _, c := range e.Cases {
			f.writeIndent()
			if c.Pattern == nil {
				f.output.WriteString("_")
			} else {
				f.formatExpr(c.Pattern)
			}
			f.output.WriteString(" -> ")
			for i, s := range c.Body {
				if i > 0 {
					f.output.WriteString("; ")
				}
				f.formatStmtInline(s)
			}
			f.output.WriteString("\n")
		}
		f.indent--
		f.writeIndent()
		f.output.WriteString("}")

	case *parser.MemberExpr:
		f.formatExpr(e.Object)
		f.output.WriteString("." + e.Property)

	case *parser.ThisExpr:
		f.output.WriteString("이것")

	case *parser.NewExpr:
		f.output.WriteString("새로운 " + e.ClassName + "(")
		for i, arg := range e.Args {
			if i > 0 {
				f.output.WriteString(", ")
			}
			f.formatExpr(arg)
		}
		f.output.WriteString(")")

	default:
		f.output.WriteString(fmt.Sprintf("<%T>", e))
	}
}

// formatStmtInline renders a single statement without its own trailing
// newline/indent, for a match case's compact "pattern -> stmt" body.
func (f *Formatter) formatStmtInline(s parser.Stmt) {
	if es, ok := s.(*parser.ExprStmt); ok {
		f.formatExpr(es.Expr)
		return
	}
	var sub Formatter
	sub.indentStr = f.indentStr
	sub.formatStmt(s)
	f.output.WriteString(strings.TrimSpace(sub.output.String()))
}
