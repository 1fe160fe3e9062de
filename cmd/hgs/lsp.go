package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"hangeulscript/internal/lsp"
)

// lspCmd runs the Language Server Protocol server over stdin/stdout, per
// SPEC_FULL.md §6's "hgs lsp" — the long-running counterpart to the
// one-shot lint command, for editor integration.
type lspCmd struct{}

func (*lspCmd) Name() string     { return "lsp" }
func (*lspCmd) Synopsis() string { return "표준 입출력으로 LSP 서버를 실행합니다" }
func (*lspCmd) Usage() string {
	return "lsp:\n  stdin/stdout을 통해 Language Server Protocol 서버를 실행합니다.\n"
}
func (*lspCmd) SetFlags(f *flag.FlagSet) {}

func (*lspCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	server := lsp.NewServer(os.Stdin, os.Stdout)
	if err := server.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lsp 서버 오류: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
