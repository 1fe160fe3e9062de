package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"hangeulscript/internal/compiler"
	"hangeulscript/internal/config"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/diagnostics"
	"hangeulscript/internal/jit"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/module"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/stdlib"
	"hangeulscript/internal/vm"
)

type runCmd struct {
	verbose bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "실행: .ksj 파일을 실행합니다" }
func (*runCmd) Usage() string {
	return "run FILE:\n  한글스크립트 소스 파일을 실행합니다.\n"
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.verbose, "verbose", false, "구조화된 오류 덤프를 출력합니다")
}

func (r *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "파일을 지정해야 합니다")
		return subcommands.ExitUsageError
	}
	return runFile(args[0], r.verbose)
}

// runFile drives the full pipeline — lexer -> parser -> compiler -> vm —
// against a single source file, matching internal/vm/vm_test.go's
// runSource helper exactly, plus the module prefetcher and JIT wiring a
// standalone test doesn't need.
func runFile(path string, verbose bool) subcommands.ExitStatus {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "파일을 읽을 수 없습니다: %v\n", err)
		return subcommands.ExitFailure
	}

	dict := dictionary.Default()
	rep := diagnostics.New(verbose)

	sc := lexer.New(path, string(source), dict)
	tokens := sc.All()
	p := parser.NewWithSource(tokens, string(source), path)
	stmts := p.Parse()
	rep.AddAll(p.Errors)
	if rep.HasErrors() {
		rep.Render(os.Stderr)
		return subcommands.ExitFailure
	}

	prog := &parser.Program{Stmts: stmts}

	c := compiler.New(path)
	chunk, cerrs := c.Compile(prog)
	rep.AddAll(cerrs)
	if rep.HasErrors() {
		rep.Render(os.Stderr)
		return subcommands.ExitFailure
	}

	v := vm.New()
	stdlib.Register(v)
	loader := module.NewLoader(dict)
	loader.Register(v)
	jitRT := jit.NewRuntime()
	v.SetJIT(jitRT)

	if cfg, err := config.Load(); err == nil {
		cfg.ApplyLimits(v)
		cfg.ApplyJIT(jitRT)
	}

	if err := loader.Prefetch(context.Background(), prog); err != nil {
		fmt.Fprintf(os.Stderr, "모듈 준비 중 오류: %v\n", err)
	}

	jitRT.Track(chunk)
	if _, err := v.Run(chunk); err != nil {
		rep.Add(err)
		rep.Render(os.Stderr)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
