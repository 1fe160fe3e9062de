// Package jit implements the HotPathDetector and two-tier native-compile
// pipeline spec.md §4.6-§4.8 describes, against the vm.JIT interface
// internal/vm/vm.go defines (the VM never imports this package — only the
// reverse). Grounded on the teacher's internal/jit/jit.go Profiler, whose
// RecordCall keys a counter by *Function pointer and fires at a two-tier
// 100/1000 threshold; every function in that file is a stub ("no actual
// compilation") with a TODO-shaped comment admitting it. This package
// replaces every stub with a real implementation, keyed the way spec.md
// §4.6 requires — (chunk-id, start, end) rather than a bare function
// pointer, since a function's own identity isn't enough once Tier-2
// inlining starts rewriting the region it lives in.
package jit

import (
	"sync"

	"hangeulscript/internal/bytecode"
)

// DefaultHotThreshold is spec.md §4.6's HOT_THRESHOLD: the invocation count
// at which a region becomes tier-1 eligible. Tier-2 eligibility additionally
// requires §4.8's predicate, not a separate higher counter — the teacher's
// two-threshold (100/1000) scheme is deliberately collapsed to one.
// internal/config overrides this per-process via .hgsrc.yaml's
// "jit.hot_threshold" key, so the threshold in effect is HotPathDetector's
// own field, seeded from this constant rather than read from it at call time.
const DefaultHotThreshold = 100

type regionKey struct {
	chunkID uintptr
	start   int
	end     int
}

// HotPathDetector is the counter table of spec.md §4.6: "a mapping
// chunk-key -> {invocation_count, last_compile_tier}".
type HotPathDetector struct {
	mu        sync.Mutex
	counts    map[regionKey]int
	compiled  map[regionKey]int // last_compile_tier: 0 none, 1, 2
	threshold int
}

func NewHotPathDetector() *HotPathDetector {
	return &HotPathDetector{
		counts:    map[regionKey]int{},
		compiled:  map[regionKey]int{},
		threshold: DefaultHotThreshold,
	}
}

// SetThreshold overrides the invocation count a region needs to become
// tier-1 eligible — internal/config's entry point for ".hgsrc.yaml"'s
// "jit.hot_threshold".
func (h *HotPathDetector) SetThreshold(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.threshold = n
}

func (h *HotPathDetector) Threshold() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.threshold
}

// record increments the region's invocation counter and returns the new
// count.
func (h *HotPathDetector) record(k regionKey) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[k]++
	return h.counts[k]
}

func (h *HotPathDetector) tier(k regionKey) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.compiled[k]
}

func (h *HotPathDetector) setTier(k regionKey, tier int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if tier > h.compiled[k] {
		h.compiled[k] = tier
	}
}

// regionEnd finds the end offset (exclusive) of the function body starting
// at start: the offset just past its terminating RETURN. A plain
// byte-by-byte walk would stop early at a RETURN belonging to a nested
// FunctionLiteral embedded inline in the body (internal/compiler's
// skip-JUMP-then-inline-body lowering places a nested function's own
// RETURN physically before its BUILD_FUNCTION instruction). JUMP is also
// used for ordinary if/while control flow, so a JUMP alone doesn't mean
// "nested function" — but a JUMP whose forward target lands exactly on a
// BUILD_FUNCTION opcode can only be that skip, so the scan jumps straight
// past it (and the nested body's RETURN) to just after the BUILD_FUNCTION
// instruction instead of decoding through it.
func regionEnd(chunk *bytecode.Chunk, start int) int {
	ip := start
	code := chunk.Code
	for ip < len(code) {
		op := bytecode.OpCode(code[ip])
		def, err := bytecode.Get(op)
		if err != nil {
			return ip
		}
		size := 1
		for _, w := range def.OperandWidths {
			size += w
		}

		if op == bytecode.OpJump && len(def.OperandWidths) == 1 && def.OperandWidths[0] == 1 {
			operand := int(code[ip+1])
			target := ip + size + operand
			if target < len(code) && bytecode.OpCode(code[target]) == bytecode.OpBuildFunction {
				bfDef, _ := bytecode.Get(bytecode.OpBuildFunction)
				bfSize := 1
				for _, w := range bfDef.OperandWidths {
					bfSize += w
				}
				ip = target + bfSize
				continue
			}
		}

		if op == bytecode.OpReturn {
			return ip + size
		}
		ip += size
	}
	return ip
}
