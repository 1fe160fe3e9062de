// Tier-2 optimizing analyzer: spec.md §4.8's eligibility/priority rules and
// analyzer pipeline (histogram, detect_loops, detect_recursion,
// analyze_call_site). Grounded on original_source/include/jit/
// InliningAnalyzer.h for the pass boundary ("analyze fully before any
// mutation") and on the teacher's internal/jit/jit.go AnalyzeLoop, which is
// a stub ("always return unknown template"); this is the real analysis.
package jit

import (
	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/vm"
)

// Priority is spec.md §4.8's inlining priority classification.
type Priority int

const (
	PriorityIneligible Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// FunctionMeta is spec.md §3's "Function metadata (JIT)" record.
type FunctionMeta struct {
	FunctionID       string
	BytecodeOffset   int
	BytecodeSize     int
	ExecutionCount   int
	Histogram        map[bytecode.OpCode]int
	HasLoops         bool
	HasRecursion     bool
	HasConditionals  bool
	HasFunctionCalls bool
	ParamCount       int
	CallSites        []CallSite
}

// CallSite is spec.md §3's "Call site (JIT)" record.
type CallSite struct {
	CallOffset      int
	ArgCount        int
	ConstantArgs    []interface{}
	HasConstantArgs bool
}

// ComplexityScore implements spec.md §4.8's derived complexity_score.
func (m *FunctionMeta) ComplexityScore() int {
	score := m.BytecodeSize
	if m.HasLoops {
		score += 20
	}
	if m.HasRecursion {
		score += 50
	}
	if m.HasConditionals {
		score += 5
	}
	if m.HasFunctionCalls {
		score += 10
	}
	return score
}

// IsPure implements spec.md §3's is_pure derivation: no LOAD_GLOBAL and no
// STORE_GLOBAL in the opcode histogram.
func (m *FunctionMeta) IsPure() bool {
	return m.Histogram[bytecode.OpLoadGlobal] == 0 && m.Histogram[bytecode.OpStoreGlobal] == 0
}

// Eligible implements spec.md §4.8's "Eligibility (all must hold)". The
// execution-count floor uses DefaultHotThreshold rather than a Runtime's
// possibly-reconfigured threshold: tier-2 promotion additionally requires
// having cleared the spec's baseline "stable hot path" bar regardless of
// how aggressively .hgsrc.yaml tunes tier-1 entry.
func (m *FunctionMeta) Eligible() bool {
	return m.BytecodeSize <= 50 &&
		m.ExecutionCount >= DefaultHotThreshold &&
		!m.HasRecursion &&
		m.ComplexityScore() <= 100
}

// ClassifyPriority implements spec.md §4.8's priority table, called only
// once Eligible() holds.
func (m *FunctionMeta) ClassifyPriority() Priority {
	if !m.Eligible() {
		return PriorityIneligible
	}
	switch {
	case m.BytecodeSize <= 10 && !m.HasLoops && !m.HasConditionals:
		return PriorityHigh
	case m.HasLoops:
		return PriorityLow
	case m.BytecodeSize <= 30:
		return PriorityMedium
	default:
		return PriorityMedium
	}
}

// analyzeFunction walks [start, end) and builds FunctionMeta — step 1 of
// spec.md §4.8's analyzer pipeline ("collecting opcodes and a histogram").
func analyzeFunction(chunk *bytecode.Chunk, fn *vm.Function, start, end, executionCount int) *FunctionMeta {
	instrs := decode(chunk, start, end)
	meta := &FunctionMeta{
		FunctionID:     fn.Name,
		BytecodeOffset: start,
		BytecodeSize:   end - start,
		ExecutionCount: executionCount,
		Histogram:      map[bytecode.OpCode]int{},
		ParamCount:     fn.Arity,
	}

	var pendingConstArgs []interface{}
	allConstSoFar := true

	for _, ins := range instrs {
		meta.Histogram[ins.Op]++
		switch ins.Op {
		case bytecode.OpLoop:
			meta.HasLoops = true
		case bytecode.OpJumpIfFalse, bytecode.OpJumpIfTrue:
			meta.HasConditionals = true
		case bytecode.OpLoadConst:
			if allConstSoFar {
				pendingConstArgs = append(pendingConstArgs, chunk.Constants[ins.Operands[0]])
			}
		case bytecode.OpLoadGlobal:
			name := chunk.Names[ins.Operands[0]]
			if name == fn.Name {
				meta.HasRecursion = true
			}
			allConstSoFar = true
			pendingConstArgs = nil
		case bytecode.OpCall:
			meta.HasFunctionCalls = true
			argc := ins.Operands[0]
			site := CallSite{CallOffset: ins.Offset, ArgCount: argc}
			if len(pendingConstArgs) >= argc {
				site.ConstantArgs = pendingConstArgs[len(pendingConstArgs)-argc:]
				site.HasConstantArgs = true
			}
			meta.CallSites = append(meta.CallSites, site)
			allConstSoFar = true
			pendingConstArgs = nil
		default:
			if ins.Op != bytecode.OpDup && ins.Op != bytecode.OpSwap {
				allConstSoFar = false
				pendingConstArgs = nil
			}
		}
	}
	return meta
}
