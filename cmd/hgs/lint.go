package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/diagnostics"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/semantic"
)

// lintCmd runs lexing, parsing, and semantic analysis without compiling or
// executing — SPEC_FULL.md §6's "hgs lint FILE" thin entry point, sharing
// internal/diagnostics.Reporter with run/build so the rendered output is
// identical in shape.
type lintCmd struct {
	verbose bool
}

func (*lintCmd) Name() string     { return "lint" }
func (*lintCmd) Synopsis() string { return "실행하지 않고 어휘/구문/의미 오류를 검사합니다" }
func (*lintCmd) Usage() string {
	return "lint FILE:\n  파일을 실행하지 않고 정적으로 검사합니다.\n"
}
func (l *lintCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&l.verbose, "verbose", false, "구조화된 오류 덤프를 출력합니다")
}

func (l *lintCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "파일을 지정해야 합니다")
		return subcommands.ExitUsageError
	}
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "파일을 읽을 수 없습니다: %v\n", err)
		return subcommands.ExitFailure
	}

	dict := dictionary.Default()
	rep := diagnostics.New(l.verbose)

	sc := lexer.New(path, string(source), dict)
	p := parser.NewWithSource(sc.All(), string(source), path)
	stmts := p.Parse()
	rep.AddAll(p.Errors)
	if rep.HasErrors() {
		rep.Render(os.Stderr)
		return subcommands.ExitFailure
	}

	analyzer := semantic.NewAnalyzer(dict)
	rep.AddAll(analyzer.Analyze(&parser.Program{Stmts: stmts}))
	if rep.HasErrors() {
		rep.Render(os.Stderr)
		return subcommands.ExitFailure
	}
	fmt.Println("문제가 발견되지 않았습니다")
	return subcommands.ExitSuccess
}
