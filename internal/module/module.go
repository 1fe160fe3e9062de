// Package module resolves 가져오기 "Path" [Alias] (import statements),
// lowered by internal/compiler to a call through the hidden "__import__"
// global. Grounded on the teacher's internal/module.ModuleLoader for the
// cache-by-name/search-path shape, retargeted at the student pipeline: a
// module is a .ksj source file run once, lazily, with its globals exposed
// as a Dictionary Value rather than the teacher's hand-built
// per-stdlib-module vm.Module.Exports map.
//
// SPEC_FULL.md §2's "module prefetcher" runs strictly between VM runs:
// Prefetch walks the parsed Program for every statically-discoverable
// import path and resolves+reads+parses+compiles them concurrently via
// golang.org/x/sync/errgroup, so the later __import__ call for a path
// already prefetched only has to run a chunk it already has in hand.
package module

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	xmodule "golang.org/x/mod/module"
	"golang.org/x/sync/errgroup"

	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/compiler"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/stdlib"
	"hangeulscript/internal/vm"
)

// sourceExt is spec.md §6's conventional source extension.
const sourceExt = ".ksj"

// entry is one resolved module: compiled eagerly (by Prefetch or on first
// __import__ miss), executed lazily and memoized on first __import__ hit.
type entry struct {
	path       string
	chunk      *bytecode.Chunk
	compileErr error
	value      vm.Value
	ran        bool
	runErr     error
}

// Loader resolves import paths to compiled chunks and, on first use, runs
// them to produce their exported Value. One Loader is shared by every
// __import__ call in a process, matching the teacher's single
// process-wide ModuleLoader.
type Loader struct {
	mu         sync.Mutex
	cache      map[string]*entry
	searchPath []string
	dict       *dictionary.Dictionary
}

// NewLoader constructs a Loader searching the current directory and a
// "./lib" directory, mirroring the teacher's getDefaultSearchPath minus
// the stdlib-path entry (this repo's standard library is Go code,
// internal/stdlib, not .ksj files on disk).
func NewLoader(dict *dictionary.Dictionary) *Loader {
	return &Loader{
		cache:      map[string]*entry{},
		searchPath: []string{".", "./lib"},
		dict:       dict,
	}
}

// AddSearchPath appends a directory to the module search path.
func (l *Loader) AddSearchPath(dir string) {
	l.searchPath = append(l.searchPath, dir)
}

// Prefetch resolves, reads, and compiles every import path reachable in
// prog concurrently, per SPEC_FULL.md §2. A path that fails to resolve or
// compile is recorded on its entry and only surfaces as an error if
// __import__ is actually asked for it later — Prefetch never fails the
// caller's VM run over an import nothing ends up using.
func (l *Loader) Prefetch(ctx context.Context, prog *parser.Program) error {
	paths := collectImportPaths(prog.Stmts)
	if len(paths) == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for _, p := range paths {
		p := p
		l.mu.Lock()
		_, already := l.cache[p]
		l.mu.Unlock()
		if already {
			continue
		}
		g.Go(func() error {
			chunk, err := l.resolveAndCompile(p)
			l.mu.Lock()
			l.cache[p] = &entry{path: p, chunk: chunk, compileErr: err}
			l.mu.Unlock()
			return nil // per-module errors surface at __import__ time, not here
		})
	}
	return g.Wait()
}

// Register installs "__import__" on v: a hidden builtin, in the same
// family as internal/vm/builtins.go's __new__/__try__, resolving a module
// path to its exported Dictionary Value. A repeated 가져오기 of the same
// path replays the cached Value rather than re-executing the file's top
// level, matching ordinary import semantics.
func (l *Loader) Register(v *vm.VM) {
	v.RegisterBuiltin("__import__", func(caller *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 || args[0].Kind != vm.KindString {
			return vm.Null, caller.RuntimeError(errors.TypeMismatch, "가져오기는 문자열 경로 인자 1개가 필요합니다")
		}
		return l.resolve(caller, args[0].Str)
	})
}

// resolve returns path's module Value, compiling it if Prefetch hasn't
// already and running its top level exactly once.
func (l *Loader) resolve(caller *vm.VM, path string) (vm.Value, error) {
	l.mu.Lock()
	e, ok := l.cache[path]
	if !ok {
		e = &entry{path: path}
		l.cache[path] = e
	}
	l.mu.Unlock()

	if e.chunk == nil && e.compileErr == nil {
		e.chunk, e.compileErr = l.resolveAndCompile(path)
	}
	if e.compileErr != nil {
		return vm.Null, caller.RuntimeError(errors.UnresolvedReference, "모듈을 불러올 수 없습니다: %s (%v)", path, e.compileErr)
	}

	if !e.ran {
		// A module runs in its own VM sharing the same builtins (stdlib,
		// __import__ itself for transitive imports) but its own global
		// table, so one module's globals can never collide with another's
		// or with the importing script's.
		modVM := vm.New()
		stdlib.Register(modVM)
		l.Register(modVM)
		if _, err := modVM.Run(e.chunk); err != nil {
			e.runErr = err
		} else {
			e.value = vm.NewDictionary(modVM.Globals())
		}
		e.ran = true
	}
	if e.runErr != nil {
		return vm.Null, caller.RuntimeError(errors.UnresolvedReference, "모듈 실행 중 오류가 발생했습니다: %s (%v)", path, e.runErr)
	}
	return e.value, nil
}

// resolveAndCompile validates path, locates its source file across the
// search path, and compiles it to a Chunk without running it.
func (l *Loader) resolveAndCompile(path string) (*bytecode.Chunk, error) {
	// golang.org/x/mod/module's CheckFilePath enforces the same
	// punctuation rules (no "//", no leading/trailing slash, no empty
	// path element) as a Go import path while its character set — any
	// Unicode letter — admits Korean module names, unlike CheckImportPath
	// which is ASCII-only. This is the "adapted to our module path
	// grammar" validation SPEC_FULL.md §2 calls for.
	if err := xmodule.CheckFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", path, err)
	}

	file, err := l.findFile(path)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	sc := lexer.New(file, string(source), l.dict)
	p := parser.NewWithSource(sc.All(), string(source), file)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		return nil, fmt.Errorf("%d parse error(s) in %s: %v", len(p.Errors), file, p.Errors[0])
	}

	c := compiler.New(file)
	chunk, errs := c.Compile(&parser.Program{Stmts: stmts})
	if len(errs) > 0 {
		return nil, fmt.Errorf("%d compile error(s) in %s: %v", len(errs), file, errs[0])
	}
	return chunk, nil
}

// findFile locates path's source file, trying it as a direct file (with
// sourceExt appended if missing) under every search directory in turn.
func (l *Loader) findFile(path string) (string, error) {
	name := path
	if filepath.Ext(name) != sourceExt {
		name += sourceExt
	}
	for _, dir := range l.searchPath {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("module not found in search path: %s", path)
}

// collectImportPaths walks every statement reachable without entering a
// function or method body (spec.md's imports are conventionally written at
// a file's top level; a conditionally-imported path still gets picked up
// since this walk doesn't evaluate conditions, it only looks for
// ImportStmt nodes) and returns the de-duplicated set of import paths.
func collectImportPaths(stmts []parser.Stmt) []string {
	seen := map[string]bool{}
	var out []string
	var walk func([]parser.Stmt)
	walk = func(body []parser.Stmt) {
		for _, s := range body {
			switch st := s.(type) {
			case *parser.ImportStmt:
				if !seen[st.Path] {
					seen[st.Path] = true
					out = append(out, st.Path)
				}
			case *parser.BlockStmt:
				walk(st.Stmts)
			case *parser.IfStmt:
				walk(st.Then)
				walk(st.Else)
			case *parser.WhileStmt:
				walk(st.Body)
			case *parser.RangeForStmt:
				walk(st.Body)
			case *parser.RepeatForStmt:
				walk(st.Body)
			case *parser.EachStmt:
				walk(st.Body)
			case *parser.TryStmt:
				walk(st.Try)
				walk(st.Catch)
			}
		}
	}
	walk(stmts)
	return out
}
