// Tier-1 template emitter: spec.md §4.7's "compile_function(chunk, start,
// end) -> NativeFunctionHandle" whose callable signature is
// "fn(stack_base_ptr, stack_capacity) -> i64" — expressed here as a Go
// closure of type func(stack []int64) int64, the only way to host a
// runtime-constructed native callable without cgo. Grounded on the
// teacher's internal/jit/jit.go Compiler.Compile, which is a stub
// ("no actual compilation"); this is the real implementation.
package jit

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"hangeulscript/internal/bytecode"
)

// NativeHandle is spec.md §4.7's handle record.
type NativeHandle struct {
	Code           func(stack []int64) int64
	CodeSize       int
	BytecodeOffset int
	ExecutionCount int
	IR             *ir.Module // for `hgs jit-dump`; compileTier1 always builds it
}

type tierCache struct {
	handles map[regionKey]*NativeHandle
}

func newTierCache() *tierCache {
	return &tierCache{handles: map[regionKey]*NativeHandle{}}
}

func (c *tierCache) get(k regionKey) (*NativeHandle, bool) {
	h, ok := c.handles[k]
	return h, ok
}

func (c *tierCache) put(k regionKey, h *NativeHandle) {
	c.handles[k] = h
}

func (c *tierCache) evict(k regionKey) {
	delete(c.handles, k)
}

// compileTier1 implements spec.md §4.7. The supported opcode subset is
// exactly LOAD_CONST (integer constants only), ADD/SUB/MUL/DIV/MOD
// (integer), NEG, RETURN — no LOAD_VAR, so only a region whose entire
// value flow is constant arithmetic qualifies (a parameterized function
// like 더하기(a,b){반환 a+b} is tier-2 material via constant folding, not a
// tier-1 template, per spec.md §8 worked example 3). Any other opcode
// returns ok=false and the caller falls back to the interpreter.
func compileTier1(chunk *bytecode.Chunk, start, end int) (handle *NativeHandle, ok bool) {
	instrs := decode(chunk, start, end)
	if len(instrs) == 0 {
		return nil, false
	}
	for _, ins := range instrs {
		switch ins.Op {
		case bytecode.OpLoadConst:
			if _, isInt := chunk.Constants[ins.Operands[0]].(int64); !isInt {
				return nil, false
			}
		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod,
			bytecode.OpNeg, bytecode.OpReturn:
			// supported
		default:
			return nil, false
		}
	}

	ops := instrs
	consts := chunk.Constants

	code := func(stack []int64) int64 {
		work := append([]int64{}, stack...)
		pop := func() int64 {
			n := len(work) - 1
			v := work[n]
			work = work[:n]
			return v
		}
		for _, ins := range ops {
			switch ins.Op {
			case bytecode.OpLoadConst:
				work = append(work, consts[ins.Operands[0]].(int64))
			case bytecode.OpAdd:
				b, a := pop(), pop()
				work = append(work, a+b)
			case bytecode.OpSub:
				b, a := pop(), pop()
				work = append(work, a-b)
			case bytecode.OpMul:
				b, a := pop(), pop()
				work = append(work, a*b)
			case bytecode.OpDiv:
				b, a := pop(), pop()
				if b == 0 {
					return 0
				}
				work = append(work, a/b)
			case bytecode.OpMod:
				b, a := pop(), pop()
				if b == 0 {
					return 0
				}
				work = append(work, a%b)
			case bytecode.OpNeg:
				work = append(work, -pop())
			case bytecode.OpReturn:
				if len(work) == 0 {
					return 0
				}
				return work[len(work)-1]
			}
		}
		if len(work) == 0 {
			return 0
		}
		return work[len(work)-1]
	}

	return &NativeHandle{
		Code:           code,
		CodeSize:       end - start,
		BytecodeOffset: start,
		IR:             buildIR(fmt.Sprintf("region_%d_%d", start, end), instrs, consts),
	}, true
}

// buildIR mirrors compileTier1's op set as an equivalent LLVM IR function
// over i64 — introspection only, never executed; dumped as `.ll` text by
// `hgs jit-dump`. Grounded on SPEC_FULL.md §4.7's naming of llir/llvm's
// `add`/`sub`/`mul`/`sdiv`/`srem`/`ret`.
func buildIR(name string, instrs []Instr, consts []interface{}) *ir.Module {
	m := ir.NewModule()
	f := m.NewFunc(name, types.I64)
	block := f.NewBlock("entry")

	var stack []constant.Constant
	pop := func() constant.Constant {
		if len(stack) == 0 {
			return constant.NewInt(types.I64, 0)
		}
		n := len(stack) - 1
		v := stack[n]
		stack = stack[:n]
		return v
	}

	for _, ins := range instrs {
		switch ins.Op {
		case bytecode.OpLoadConst:
			n, _ := consts[ins.Operands[0]].(int64)
			stack = append(stack, constant.NewInt(types.I64, n))
		case bytecode.OpAdd:
			b, a := pop(), pop()
			stack = append(stack, constant.NewAdd(a, b))
		case bytecode.OpSub:
			b, a := pop(), pop()
			stack = append(stack, constant.NewSub(a, b))
		case bytecode.OpMul:
			b, a := pop(), pop()
			stack = append(stack, constant.NewMul(a, b))
		case bytecode.OpDiv:
			b, a := pop(), pop()
			stack = append(stack, constant.NewSDiv(a, b))
		case bytecode.OpMod:
			b, a := pop(), pop()
			stack = append(stack, constant.NewSRem(a, b))
		case bytecode.OpNeg:
			a := pop()
			stack = append(stack, constant.NewSub(constant.NewInt(types.I64, 0), a))
		case bytecode.OpReturn:
			if len(stack) == 0 {
				block.NewRet(constant.NewInt(types.I64, 0))
			} else {
				block.NewRet(stack[len(stack)-1])
			}
			return m
		}
	}
	block.NewRet(constant.NewInt(types.I64, 0))
	return m
}
