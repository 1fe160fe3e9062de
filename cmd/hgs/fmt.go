package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/formatter"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
)

type fmtCmd struct {
	write bool
}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "소스 파일을 표준 형식으로 출력합니다" }
func (*fmtCmd) Usage() string {
	return "fmt FILE [-w]:\n  파일을 정규화된 형태로 출력합니다. -w는 제자리에서 덮어씁니다.\n"
}
func (fc *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&fc.write, "w", false, "결과로 파일을 덮어씁니다")
}

func (fc *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	sc := lexer.New(path, string(source), dict)
	p := parser.NewWithSource(sc.All(), string(source), path)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		for _, e := range p.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitFailure
	}

	out := formatter.New().Format(stmts)
	if fc.write {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "파일을 쓸 수 없습니다: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
