// Package errors unifies every diagnostic the pipeline can raise — lexer,
// parser, semantic analyzer, compiler, VM — into a single LangError type,
// grounded on the teacher's SentraError (same single-line render contract,
// same WithSource/WithStack builder style) but retargeted at the closed
// error-kind taxonomy spec.md §7 names.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind is one of the closed set of error kinds spec.md §7 enumerates.
type Kind string

const (
	// Lexer
	InvalidToken        Kind = "InvalidToken"
	UnterminatedString  Kind = "UnterminatedString"
	// Parser
	UnexpectedToken Kind = "UnexpectedToken"
	MissingToken    Kind = "MissingToken"
	TrailingInput   Kind = "TrailingInput"
	// Semantic
	UndefinedName          Kind = "UndefinedName"
	Redefinition           Kind = "Redefinition"
	TypeAnnotationMismatch Kind = "TypeAnnotationMismatch"
	UnresolvedReference    Kind = "UnresolvedReference"
	// Runtime
	TypeMismatch         Kind = "TypeMismatch"
	ZeroDivision         Kind = "ZeroDivision"
	IndexOutOfBounds     Kind = "IndexOutOfBounds"
	NotCallable          Kind = "NotCallable"
	ArityMismatch        Kind = "ArityMismatch"
	StackUnderflow       Kind = "StackUnderflow"
	RuntimeLimitExceeded Kind = "RuntimeLimitExceeded"
	UndefinedGlobal      Kind = "UndefinedGlobal"
	// Compiler
	JumpTooFar Kind = "JumpTooFar"
)

// SourceLocation identifies where the error occurred.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// StackFrame is one call-stack entry, attached by the VM when a runtime
// error propagates out of a call.
type StackFrame struct {
	Function string
	File     string
	Line     int
	Column   int
}

// LangError is the single error type every phase returns. Cause, when
// non-nil, wraps an underlying Go error (e.g. a failed os.ReadFile inside a
// stdlib builtin) via github.com/pkg/errors so "--verbose" can render a
// stack-annotated %+v without changing the single-line user-visible format.
type LangError struct {
	Kind      Kind
	Message   string
	Location  SourceLocation
	CallStack []StackFrame
	Source    string
	Cause     error
}

// New builds a LangError of kind at file:line:col.
func New(kind Kind, message, file string, line, column int) *LangError {
	return &LangError{
		Kind:    kind,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

// Wrap builds a LangError whose Cause chains an underlying Go error.
func Wrap(cause error, kind Kind, message, file string, line, column int) *LangError {
	e := New(kind, message, file, line, column)
	e.Cause = pkgerrors.WithStack(cause)
	return e
}

func (e *LangError) WithSource(source string) *LangError {
	e.Source = source
	return e
}

func (e *LangError) WithStack(stack []StackFrame) *LangError {
	e.CallStack = stack
	return e
}

func (e *LangError) AddStackFrame(function, file string, line, column int) *LangError {
	e.CallStack = append(e.CallStack, StackFrame{Function: function, File: file, Line: line, Column: column})
	return e
}

// Error renders the single-line user-visible form:
// "<filename>:<line>:<col>: <kind>: <message>".
func (e *LangError) Error() string {
	if e.Location.File == "" && e.Location.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Location.File, e.Location.Line, e.Location.Column, e.Kind, e.Message)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *LangError) Unwrap() error { return e.Cause }

// Verbose renders the one-liner plus source context, call stack, and — if
// Cause is set — its %+v stack trace. Used only by the CLI's --verbose mode.
func (e *LangError) Verbose() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	sb.WriteString("\n")
	if e.Source != "" {
		sb.WriteString(fmt.Sprintf("  %d | %s\n", e.Location.Line, e.Source))
		pad := strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.Location.Line)))
		if e.Location.Column > 0 {
			pad += strings.Repeat(" ", e.Location.Column-1)
		}
		sb.WriteString(pad + "^\n")
	}
	for _, f := range e.CallStack {
		if f.Function != "" {
			sb.WriteString(fmt.Sprintf("  at %s (%s:%d:%d)\n", f.Function, f.File, f.Line, f.Column))
		} else {
			sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", f.File, f.Line, f.Column))
		}
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("caused by: %+v\n", e.Cause))
	}
	return sb.String()
}
