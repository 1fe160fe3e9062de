// Command hgs is 한글스크립트's CLI entry point: bare REPL, or one of the
// google/subcommands-registered verbs SPEC_FULL.md §6 names (run, build,
// jit-dump, fmt, lint, lsp). Grounded on the pack's informatter-nilan for
// the subcommands-registration shape (the teacher's own cmd/sentra/main.go
// hand-rolls an os.Args + alias-map dispatcher instead); the pipeline
// wiring the verbs drive (lexer -> parser -> compiler -> vm, each verb
// taking the stages it needs; lint is the verb that runs the semantic pass)
// is the teacher's own, reused via internal/vm/vm_test.go's runSource
// helper shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"hangeulscript/internal/config"
	"hangeulscript/internal/repl"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&buildCmd{}, "")
	subcommands.Register(&jitDumpCmd{}, "")
	subcommands.Register(&fmtCmd{}, "")
	subcommands.Register(&lintCmd{}, "")
	subcommands.Register(&lspCmd{}, "")

	// Bare "hgs" or "hgs FILE" (no recognized verb) falls through to the
	// REPL or a direct run, matching SPEC_FULL.md §6's "hgs FILE -> execute"
	// shorthand alongside the explicit "hgs run FILE".
	if len(os.Args) < 2 {
		startREPL()
		return
	}
	if _, err := os.Stat(os.Args[1]); err == nil {
		os.Exit(int(runFile(os.Args[1], false)))
	}

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

func startREPL() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "설정 파일 오류: %v\n", err)
		os.Exit(1)
	}
	r := repl.New(false, cfg)
	if err := r.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "오류: %v\n", err)
		os.Exit(1)
	}
}
