package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/compiler"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/diagnostics"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
)

type buildCmd struct {
	out     string
	verbose bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "컴파일: .ksj 파일을 .kjc 바이트코드로 컴파일합니다 (실행하지 않음)" }
func (*buildCmd) Usage() string {
	return "build FILE [-o OUTPUT.kjc]:\n  소스를 컴파일해 .kjc 파일로 저장합니다.\n"
}
func (b *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&b.out, "o", "", "출력 .kjc 경로 (기본: 입력 파일명에서 확장자만 교체)")
	f.BoolVar(&b.verbose, "verbose", false, "구조화된 오류 덤프를 출력합니다")
}

func (b *buildCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "파일을 지정해야 합니다")
		return subcommands.ExitUsageError
	}
	path := args[0]
	out := b.out
	if out == "" {
		out = strings.TrimSuffix(path, ".ksj") + ".kjc"
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "파일을 읽을 수 없습니다: %v\n", err)
		return subcommands.ExitFailure
	}

	dict := dictionary.Default()
	rep := diagnostics.New(b.verbose)

	sc := lexer.New(path, string(source), dict)
	p := parser.NewWithSource(sc.All(), string(source), path)
	stmts := p.Parse()
	rep.AddAll(p.Errors)
	if rep.HasErrors() {
		rep.Render(os.Stderr)
		return subcommands.ExitFailure
	}

	c := compiler.New(path)
	chunk, cerrs := c.Compile(&parser.Program{Stmts: stmts})
	rep.AddAll(cerrs)
	if rep.HasErrors() {
		rep.Render(os.Stderr)
		return subcommands.ExitFailure
	}

	f2, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "출력 파일을 만들 수 없습니다: %v\n", err)
		return subcommands.ExitFailure
	}
	defer f2.Close()
	if err := bytecode.Serialize(chunk, f2); err != nil {
		fmt.Fprintf(os.Stderr, "직렬화 오류: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(out)
	return subcommands.ExitSuccess
}
