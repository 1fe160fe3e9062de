package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"hangeulscript/internal/compiler"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/jit"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/stdlib"
	"hangeulscript/internal/vm"
)

// jitDumpCmd runs FILE to completion (so every region that goes hot during
// that one run reaches tier-1) and prints the LLVM IR internal/jit built
// for each such region, per SPEC_FULL.md §6's "hgs jit-dump FILE".
type jitDumpCmd struct{}

func (*jitDumpCmd) Name() string     { return "jit-dump" }
func (*jitDumpCmd) Synopsis() string { return "Tier-1로 컴파일된 모든 구간의 LLVM IR을 출력합니다" }
func (*jitDumpCmd) Usage() string {
	return "jit-dump FILE:\n  파일을 실행하고 tier-1에 도달한 모든 구간의 LLVM IR을 출력합니다.\n"
}
func (*jitDumpCmd) SetFlags(f *flag.FlagSet) {}

func (*jitDumpCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	c := compiler.New(path)
	chunk, cerrs := c.Compile(&parser.Program{Stmts: stmts})
	if len(cerrs) > 0 {
		for _, e := range cerrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitFailure
	}

	v := vm.New()
	stdlib.Register(v)
	rt := jit.NewRuntime()
	v.SetJIT(rt)
	rt.Track(chunk)

	if _, err := v.Run(chunk); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ir := rt.Dump(chunk)
	if len(ir) == 0 {
		fmt.Println("; tier-1에 도달한 구간이 없습니다 (hot_threshold 미만)")
		return subcommands.ExitSuccess
	}
	for name, text := range ir {
		fmt.Printf("; region %s\n%s\n", name, text)
	}
	return subcommands.ExitSuccess
}
