// Package semantic resolves names and catches shape errors (redeclaration,
// unknown identifiers, type-annotation mismatches) before compilation, so the
// compiler's local-slot allocator (grounded on the teacher's
// internal/compiler/stmt_compiler.go locals/localCount tracking) never has to
// guess whether a name is local, global, or undefined.
package semantic

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	SymVar SymbolKind = iota
	SymConst
	SymFunc
	SymParam
	SymClass
)

func (k SymbolKind) String() string {
	switch k {
	case SymVar:
		return "var"
	case SymConst:
		return "const"
	case SymFunc:
		return "func"
	case SymParam:
		return "param"
	case SymClass:
		return "class"
	default:
		return "?"
	}
}

// Symbol is a resolved name: its scope depth and slot mirror exactly what the
// compiler will assign as a local-variable stack slot, so the analyzer and
// compiler never disagree about where a name lives.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Depth int
	Slot  int
}

// scope is one block's worth of declarations. SymbolTable is a chain of
// these, innermost first, exactly the shape stmt_compiler.go's locals slice
// approximates with a flat name list — here made explicit and nested so
// shadowing across nested blocks resolves to the closest declaration.
type scope struct {
	depth   int
	symbols map[string]*Symbol
	parent  *scope
	nextSlot *int // shared slot counter for the whole function, not just this block
}

// SymbolTable tracks the scope chain for one function (or the top-level
// script, depth 0). Each function body gets a fresh SymbolTable rooted at
// depth 0 with its own slot counter, matching how the compiler starts
// localCount back at 0 inside NewStmtCompiler's sub-compilers.
type SymbolTable struct {
	current *scope
	slot    int
}

// NewSymbolTable starts a table with a single top-level scope.
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{}
	t.current = &scope{depth: 0, symbols: map[string]*Symbol{}, nextSlot: &t.slot}
	return t
}

// Enter pushes a new nested block scope (if/while/for bodies, function
// bodies). Declarations in it shadow outer scopes but share the same slot
// counter, since all locals of one function share one flat stack frame.
func (t *SymbolTable) Enter() {
	t.current = &scope{
		depth:    t.current.depth + 1,
		symbols:  map[string]*Symbol{},
		parent:   t.current,
		nextSlot: t.current.nextSlot,
	}
}

// Exit pops the innermost scope, returning to its parent.
func (t *SymbolTable) Exit() {
	if t.current.parent != nil {
		t.current = t.current.parent
	}
}

// Depth reports the current nesting depth (0 = top level).
func (t *SymbolTable) Depth() int { return t.current.depth }

// Declare records name as kind in the current scope, assigning it the next
// free slot. It reports false if name is already declared in THIS scope
// (redeclaration is only an error within the same block; shadowing an outer
// scope's name is allowed, matching how the teacher's compiler lets an inner
// block's local reuse an outer name via a fresh slot).
func (t *SymbolTable) Declare(name string, kind SymbolKind) (*Symbol, bool) {
	if _, exists := t.current.symbols[name]; exists {
		return nil, false
	}
	sym := &Symbol{Name: name, Kind: kind, Depth: t.current.depth, Slot: *t.current.nextSlot}
	*t.current.nextSlot++
	t.current.symbols[name] = sym
	return sym, true
}

// Resolve looks up name starting at the innermost scope and walking out.
func (t *SymbolTable) Resolve(name string) (*Symbol, bool) {
	for s := t.current; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// ResolveLocal looks up name only within the current scope, without walking
// to parents — used to test for same-scope redeclaration independent of
// Declare's own check.
func (t *SymbolTable) ResolveLocal(name string) (*Symbol, bool) {
	sym, ok := t.current.symbols[name]
	return sym, ok
}

// SlotCount reports how many slots the function using this table has
// allocated in total. The compiler does not call it; it counts its own
// local slots.
func (t *SymbolTable) SlotCount() int { return t.slot }
