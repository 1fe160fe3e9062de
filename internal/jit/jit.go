// Runtime is the facade internal/vm.SetJIT installs: it implements
// vm.JIT's narrow OnCall/TryNative contract while this file and its
// siblings do the real hot-path detection, tier-1 template compilation,
// and tier-2 analysis/inlining spec.md §4.6-§4.8 describe. Grounded on the
// teacher's internal/jit/jit.go Profiler+Compiler pairing (a profiler
// feeding a compiler by call count) but with every stub replaced.
package jit

import (
	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/vm"
)

// Runtime owns the hot-path counters and both tier caches. One Runtime is
// shared by every chunk a process runs (the REPL's line-at-a-time loop
// reuses it across many small chunks), so caches are keyed by chunk
// identity rather than assumed singular.
type Runtime struct {
	detector *HotPathDetector
	tier1    *tierCache
	chunks   map[uintptr]*bytecode.Chunk
	regions  map[regionKey]int // function start -> region end, memoized
}

// NewRuntime constructs an idle Runtime — call Track once per chunk before
// running it so OnCall/TryNative can resolve chunkID back to bytecode.
func NewRuntime() *Runtime {
	return &Runtime{
		detector: NewHotPathDetector(),
		tier1:    newTierCache(),
		chunks:   map[uintptr]*bytecode.Chunk{},
		regions:  map[regionKey]int{},
	}
}

// Track records chunk's identity so later OnCall/TryNative calls keyed by
// that identity can decode its bytecode. The VM itself never calls this —
// internal/vm has no import on internal/jit — so whatever drives vm.Run
// (cmd/hgs, internal/repl) calls it once per chunk alongside v.SetJIT.
func (r *Runtime) Track(chunk *bytecode.Chunk) {
	r.chunks[vm.ChunkIdentity(chunk)] = chunk
}

func (r *Runtime) regionEndFor(chunk *bytecode.Chunk, start int) int {
	k := regionKey{chunkID: vm.ChunkIdentity(chunk), start: start}
	if end, ok := r.regions[k]; ok {
		return end
	}
	end := regionEnd(chunk, start)
	r.regions[k] = end
	return end
}

// OnCall implements vm.JIT: bumps the region's invocation counter and, at
// the detector's threshold, compiles a tier-1 template; past the threshold,
// runs the tier-2 eligibility check and, for an eligible region, attempts a
// constant fold at each call site with constant arguments, then marks the
// region tier-2 whether or not any fold applied, per spec.md §4.6.
func (r *Runtime) OnCall(chunkID uintptr, fn *vm.Function) {
	chunk, ok := r.chunks[chunkID]
	if !ok {
		return
	}
	end := r.regionEndFor(chunk, fn.Addr)
	k := regionKey{chunkID: chunkID, start: fn.Addr, end: end}
	count := r.detector.record(k)
	threshold := r.detector.Threshold()

	if count == threshold && r.detector.tier(k) < 1 {
		if handle, ok := compileTier1(chunk, fn.Addr, end); ok {
			handle.ExecutionCount = count
			r.tier1.put(k, handle)
			r.detector.setTier(k, 1)
		}
	}

	if count > threshold {
		r.tryPromoteTier2(chunk, fn, k, count)
	}
}

// SetHotThreshold overrides the invocation count at which a region becomes
// tier-1 eligible — internal/config applies ".hgsrc.yaml"'s
// "jit.hot_threshold" override here.
func (r *Runtime) SetHotThreshold(n int) {
	r.detector.SetThreshold(n)
}

func (r *Runtime) tryPromoteTier2(chunk *bytecode.Chunk, fn *vm.Function, k regionKey, count int) {
	meta := analyzeFunction(chunk, fn, k.start, k.end, count)
	if !meta.Eligible() {
		return
	}
	if meta.ClassifyPriority() == PriorityIneligible {
		return
	}
	for _, site := range meta.CallSites {
		// Only the self-contained constant-fold shape is promoted
		// automatically here; general inlining of arbitrary callees
		// requires rewriting the *caller's* bytecode at the call site,
		// which this Runtime does not have located without a second
		// pass over every chunk region — left for a future call-graph
		// walk (see DESIGN.md's Open Question note for this package).
		if site.HasConstantArgs {
			tryConstantFold(chunk, k.start, k.end, site)
		}
	}
	r.detector.setTier(k, 2)
}

// TryNative implements vm.JIT: a cache hit replays the tier-1 template
// against an empty int64 stack (the supported opcode subset takes no
// LOAD_VAR, so no argument marshalling is needed — see tier1.go) and
// returns its int64 result as a Value; anything else falls back to the
// interpreter.
func (r *Runtime) TryNative(chunkID uintptr, fn *vm.Function, args []vm.Value) (vm.Value, bool) {
	chunk, ok := r.chunks[chunkID]
	if !ok {
		return vm.Null, false
	}
	end := r.regionEndFor(chunk, fn.Addr)
	k := regionKey{chunkID: chunkID, start: fn.Addr, end: end}
	handle, ok := r.tier1.get(k)
	if !ok {
		return vm.Null, false
	}
	handle.ExecutionCount++
	return vm.Int(handle.Code(nil)), true
}

// Dump returns the LLVM IR text for every region that has reached tier-1
// for chunk, keyed by its region name — `hgs jit-dump FILE` prints this.
func (r *Runtime) Dump(chunk *bytecode.Chunk) map[string]string {
	out := map[string]string{}
	id := vm.ChunkIdentity(chunk)
	for k, h := range r.tier1.handles {
		if k.chunkID != id || h.IR == nil {
			continue
		}
		out[h.IR.Funcs[0].Name()] = h.IR.String()
	}
	return out
}
