// Tier-2 transformer: spec.md §4.8's inline/parameter-binding/constant-
// folding/DCE/jump-fixup operations, applied transactionally — a working
// copy of Chunk.Code is mutated and only swapped in on full success, per
// §7's "transactional, no partial edits" requirement. Grounded on
// original_source/include/jit/InliningTransformer.h for the transactional
// shape; the teacher carries no equivalent (its jit.go Compile is a stub).
package jit

import (
	"hangeulscript/internal/bytecode"
)

// foldableOp is the closed opcode set spec.md §4.8's constant-folding rule
// names: "callee's opcodes are exactly LOAD_VAR 0; LOAD_VAR 1;
// {ADD|SUB|MUL|DIV|MOD}; RETURN".
var foldableOp = map[bytecode.OpCode]func(a, b int64) (int64, bool){
	bytecode.OpAdd: func(a, b int64) (int64, bool) { return a + b, true },
	bytecode.OpSub: func(a, b int64) (int64, bool) { return a - b, true },
	bytecode.OpMul: func(a, b int64) (int64, bool) { return a * b, true },
	bytecode.OpDiv: func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	},
	bytecode.OpMod: func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a % b, true
	},
}

// tryConstantFold implements spec.md §4.8's constant-folding transform: if
// callee is exactly LOAD_VAR 0; LOAD_VAR 1; {ADD|SUB|MUL|DIV|MOD}; RETURN
// and the call site's two arguments are both integer constants, the call
// at site.CallOffset (covering the preceding two LOAD_CONST instructions
// through CALL) is replaced by a single LOAD_CONST of the folded result.
// Division/modulo by zero aborts the fold, leaving the original call
// untouched, matching the spec's explicit carve-out.
func tryConstantFold(chunk *bytecode.Chunk, calleeStart, calleeEnd int, site CallSite) bool {
	body := decode(chunk, calleeStart, calleeEnd)
	if len(body) != 4 {
		return false
	}
	if body[0].Op != bytecode.OpLoadVar || body[0].Operands[0] != 0 {
		return false
	}
	if body[1].Op != bytecode.OpLoadVar || body[1].Operands[0] != 1 {
		return false
	}
	fold, isFoldable := foldableOp[body[2].Op]
	if !isFoldable {
		return false
	}
	if body[3].Op != bytecode.OpReturn {
		return false
	}
	if !site.HasConstantArgs || len(site.ConstantArgs) != 2 {
		return false
	}
	a, aok := site.ConstantArgs[0].(int64)
	b, bok := site.ConstantArgs[1].(int64)
	if !aok || !bok {
		return false
	}
	result, ok := fold(a, b)
	if !ok {
		return false
	}

	// The call site's two constant args are each a LOAD_CONST; the CALL
	// itself sits immediately after them (analyzeFunction's allConstSoFar
	// bookkeeping guarantees this — a non-constant value in between would
	// have cleared pendingConstArgs). Splice [argLoadStart, callEnd) into
	// one LOAD_CONST of the fold result.
	argLoadStart, ok := precedingConstLoadsStart(chunk, site.CallOffset, 2)
	if !ok {
		return false
	}
	callDef, _ := bytecode.Get(bytecode.OpCall)
	callSize := 1
	for _, w := range callDef.OperandWidths {
		callSize += w
	}
	callEnd := site.CallOffset + callSize

	idx := chunk.AddConstant(result)
	newInstr := bytecode.Make(bytecode.OpLoadConst, idx)
	return transactionalSplice(chunk, argLoadStart, callEnd, newInstr)
}

// precedingConstLoadsStart walks backward from callOffset across n
// LOAD_CONST instructions (the arity the call site recorded) and returns
// the offset of the first one.
func precedingConstLoadsStart(chunk *bytecode.Chunk, callOffset, n int) (int, bool) {
	constDef, _ := bytecode.Get(bytecode.OpLoadConst)
	constSize := 1
	for _, w := range constDef.OperandWidths {
		constSize += w
	}
	offset := callOffset
	for i := 0; i < n; i++ {
		offset -= constSize
		if offset < 0 || bytecode.OpCode(chunk.Code[offset]) != bytecode.OpLoadConst {
			return 0, false
		}
	}
	return offset, true
}

// transactionalSplice replaces chunk.Code[start:end) with newBytes on a
// working copy, fixes up every JUMP/LOOP operand whose target crosses the
// edit, and swaps the working copy in only once every fixup succeeds —
// spec.md §7's "transformer must be transactional" requirement.
func transactionalSplice(chunk *bytecode.Chunk, start, end int, newBytes []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	working := make([]byte, 0, len(chunk.Code)-(end-start)+len(newBytes))
	working = append(working, chunk.Code[:start]...)
	working = append(working, newBytes...)
	working = append(working, chunk.Code[end:]...)

	delta := len(newBytes) - (end - start)
	if delta != 0 {
		if !fixupJumps(working, start, delta, len(newBytes)) {
			return false
		}
	}

	chunk.Code = working
	return true
}

// fixupJumps adjusts every JUMP/JUMP_IF_FALSE/JUMP_IF_TRUE/LOOP operand in
// code whose target crosses the edit at [editStart, editStart+editLen) by
// delta — spec.md §4.8's "Jump fixup" rule, applied over the whole chunk
// rather than just the caller's own function since a forward JUMP from an
// earlier sibling function cannot target into a later one (functions never
// share a body) but an enclosing script's JUMPs around an if/while can
// still cross a callee edited in place.
func fixupJumps(code []byte, editStart, delta, editLen int) bool {
	ip := 0
	for ip < len(code) {
		op := bytecode.OpCode(code[ip])
		def, err := bytecode.Get(op)
		if err != nil {
			return false
		}
		size := 1
		for _, w := range def.OperandWidths {
			size += w
		}
		switch op {
		case bytecode.OpJump, bytecode.OpJumpIfFalse, bytecode.OpJumpIfTrue:
			operand := int(code[ip+1])
			target := ip + size + operand
			if crossesEdit(ip, target, editStart, editLen) {
				newTarget := target + delta
				newOperand := newTarget - (ip + size)
				if newOperand < 0 || newOperand > 0xff {
					return false
				}
				code[ip+1] = byte(newOperand)
			}
		case bytecode.OpLoop:
			operand := int(code[ip+1])<<8 | int(code[ip+2])
			target := ip + size - operand
			if crossesEdit(ip, target, editStart, editLen) {
				newTarget := target + delta
				newOperand := (ip + size) - newTarget
				if newOperand < 0 || newOperand > 0xffff {
					return false
				}
				code[ip+1] = byte(newOperand >> 8)
				code[ip+2] = byte(newOperand)
			}
		}
		ip += size
	}
	return true
}

// crossesEdit reports whether a jump from ip to target straddles the
// edited region [editStart, editStart+editLen) — i.e. one endpoint falls
// before it and the other at or after it.
func crossesEdit(ip, target, editStart, editLen int) bool {
	editEnd := editStart + editLen
	before := func(x int) bool { return x < editStart }
	after := func(x int) bool { return x >= editEnd }
	return (before(ip) && after(target)) || (after(ip) && before(target))
}
