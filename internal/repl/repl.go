// Package repl is 한글스크립트's interactive line-at-a-time loop, invoked by
// cmd/hgs when run with no file argument. Grounded on the teacher's
// internal/repl/repl.go bufio.Scanner shape for the read loop itself, but
// its compile-and-reset-chunk approach is replaced: internal/vm.VM.Run
// documents that it resets everything except v.globals specifically so
// "the REPL's line-at-a-time loop" can run many small chunks against one
// persistent global table, which this package now actually does.
//
// Line editing and history come from github.com/chzyer/readline and the
// colored-vs-plain prompt choice from github.com/mattn/go-isatty, both
// enrichments from the pack's informatter-nilan (the teacher's own REPL is
// a bare bufio.Scanner with no history).
package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"hangeulscript/internal/compiler"
	"hangeulscript/internal/config"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/evaluator"
	"hangeulscript/internal/jit"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/module"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/stdlib"
	"hangeulscript/internal/vm"
)

const fileName = "<repl>"

// REPL owns the one persistent VM + evaluator + loader a session's lines
// all run against, so 정수 x = 1 on one line is visible to the next.
type REPL struct {
	dict    *dictionary.Dictionary
	v       *vm.VM
	ev      *evaluator.Evaluator
	loader  *module.Loader
	jitRT   *jit.Runtime
	verbose bool
}

// New wires one VM shared across every line: internal/stdlib's builtins,
// internal/module's "__import__", and an internal/jit.Runtime tracking
// every chunk this session ever compiles, exactly as cmd/hgs's "run"
// subcommand wires a single-shot VM (see DESIGN.md's internal/jit entry on
// why a Runtime must Track a chunk before the VM runs it). cfg may be nil,
// meaning "no .hgsrc.yaml found" — every compiled-in default then applies.
func New(verbose bool, cfg *config.Config) *REPL {
	dict := dictionary.Default()
	v := vm.New()
	stdlib.Register(v)
	loader := module.NewLoader(dict)
	loader.Register(v)
	jitRT := jit.NewRuntime()
	v.SetJIT(jitRT)
	if cfg != nil {
		cfg.ApplyLimits(v)
		cfg.ApplyJIT(jitRT)
	}

	return &REPL{
		dict:    dict,
		v:       v,
		ev:      evaluator.New(v),
		loader:  loader,
		jitRT:   jitRT,
		verbose: verbose,
	}
}

// Run drives the read-eval-print loop until EOF (Ctrl-D) or 종료/exit.
func (r *REPL) Run() error {
	prompt := "> "
	if isatty.IsTerminal(os.Stdin.Fd()) {
		prompt = "\033[32m한글스크립트>\033[0m "
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "종료",
	})
	if err != nil {
		return fmt.Errorf("readline 초기화 실패: %w", err)
	}
	defer rl.Close()

	fmt.Println("한글스크립트 REPL — 종료하려면 Ctrl-D 또는 '종료'를 입력하세요")

	var pending strings.Builder
	for {
		rl.SetPrompt(continuationPrompt(prompt, pending.Len() > 0))
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			pending.Reset()
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if pending.Len() == 0 && (trimmed == "종료" || trimmed == "exit") {
			return nil
		}
		if pending.Len() > 0 {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)

		source := pending.String()
		stmts, perrs, incomplete := r.tryParse(source)
		if incomplete {
			// Unterminated block or string — wait for more lines before
			// reporting anything, matching how a file-mode parse error
			// would only ever be reported once the whole file is read.
			continue
		}
		pending.Reset()

		if len(perrs) > 0 {
			r.reportParseErrors(perrs)
			continue
		}
		r.evalLine(stmts)
	}
}

// tryParse parses source and reports whether it looks incomplete (ran out
// of tokens mid-block/mid-string) rather than genuinely malformed — the
// parser's own MissingToken/UnterminatedString kinds at end-of-input are
// treated as "need another line", since a real syntax error in the middle
// of the buffer already parsed would surface as a different error kind.
func (r *REPL) tryParse(source string) (stmts []parser.Stmt, errs []error, incomplete bool) {
	sc := lexer.New(fileName, source, r.dict)
	tokens := sc.All()
	p := parser.NewWithSource(tokens, source, fileName)
	stmts = p.Parse()
	if len(p.Errors) == 0 {
		return stmts, nil, false
	}
	if last, ok := p.Errors[len(p.Errors)-1].(*errors.LangError); ok {
		if last.Kind == errors.MissingToken || last.Kind == errors.UnterminatedString {
			return nil, nil, true
		}
	}
	return nil, p.Errors, false
}

func (r *REPL) reportParseErrors(errs []error) {
	for _, e := range errs {
		r.printErr(e)
	}
}

// evalLine compiles source through the full pipeline and runs it on the
// REPL's persistent VM; if compilation itself fails (a construct the
// compiler rejects that the tree-walker could still have handled, e.g. a
// bare expression with no enclosing function needing a RETURN target) it
// falls back to internal/evaluator per SPEC_FULL.md §9's design note.
func (r *REPL) evalLine(stmts []parser.Stmt) {
	prog := &parser.Program{Stmts: stmts}
	c := compiler.New(fileName)
	chunk, cerrs := c.Compile(prog)
	if len(cerrs) == 0 {
		r.jitRT.Track(chunk)
		result, err := r.v.Run(chunk)
		if err != nil {
			r.printRuntimeErr(err)
			return
		}
		if result.Kind != vm.KindNull {
			fmt.Println(result.String())
		}
		return
	}

	res, err := r.ev.EvalProgram(stmts)
	if err != nil {
		fmt.Println("오류:", err)
		return
	}
	if res.Value.Kind != vm.KindNull {
		fmt.Println(res.Value.String())
	}
}

func (r *REPL) printErr(e error) {
	if le, ok := e.(*errors.LangError); ok && r.verbose {
		fmt.Println(le.Verbose())
		return
	}
	fmt.Println(e.Error())
}

func (r *REPL) printRuntimeErr(err error) {
	if le, ok := err.(*errors.LangError); ok {
		r.printErr(le)
		return
	}
	fmt.Println("오류:", err)
}

func continuationPrompt(base string, continuing bool) string {
	if !continuing {
		return base
	}
	return strings.Repeat(" ", len([]rune(stripANSI(base)))-2) + "... "
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		if r == '\033' {
			inEsc = true
			continue
		}
		if inEsc {
			if r == 'm' {
				inEsc = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.hgs_history"
}
