// Package diagnostics is the single sink every pipeline phase (lexer,
// parser, semantic analyzer, compiler, VM, module loader) reports its
// *errors.LangError values to, per SPEC_FULL.md §2's "diagnostics sink"
// paragraph. cmd/hgs constructs one Reporter per invocation, lets every
// phase append to it instead of returning early on the first error, and
// renders the aggregate once at the end — so "hgs run bad.ksj" can report
// every parse error in a file in one pass rather than stopping at the
// first, matching how internal/parser and internal/semantic already
// accumulate their own []error slices instead of stopping early.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/kr/pretty"

	"hangeulscript/internal/errors"
)

// Reporter aggregates every LangError (or plain error) a run produces.
type Reporter struct {
	Verbose bool
	errs    []error
}

// New constructs an empty Reporter. Verbose controls whether Render prints
// the one-line form or a github.com/kr/pretty struct dump per error.
func New(verbose bool) *Reporter {
	return &Reporter{Verbose: verbose}
}

// Add appends err if non-nil; a nil err is ignored.
func (r *Reporter) Add(err error) {
	if err == nil {
		return
	}
	r.errs = append(r.errs, err)
}

// AddAll appends every non-nil error in errs.
func (r *Reporter) AddAll(errs []error) {
	for _, e := range errs {
		r.Add(e)
	}
}

// HasErrors reports whether anything was ever Added.
func (r *Reporter) HasErrors() bool { return len(r.errs) > 0 }

// Errors returns every accumulated error in report order.
func (r *Reporter) Errors() []error { return r.errs }

// Render writes every accumulated error to w: one line each in the default
// mode ("<file>:<line>:<col>: <kind>: <message>"), or a full kr/pretty
// struct dump of the underlying *errors.LangError (falling back to
// fmt.Fprintf("%+v") for a plain error, e.g. a module I/O failure that
// never became a LangError) when Verbose is set.
func (r *Reporter) Render(w io.Writer) {
	for _, e := range r.errs {
		if !r.Verbose {
			fmt.Fprintln(w, e.Error())
			continue
		}
		if le, ok := e.(*errors.LangError); ok {
			fmt.Fprintf(w, "%# v\n", pretty.Formatter(le))
			continue
		}
		fmt.Fprintf(w, "%+v\n", e)
	}
}
