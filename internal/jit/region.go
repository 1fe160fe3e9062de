package jit

import "hangeulscript/internal/bytecode"

// Instr is one decoded instruction within a region: its opcode, decoded
// operands (already widened from big-endian bytes), and its own offset.
type Instr struct {
	Offset   int
	Op       bytecode.OpCode
	Operands []int
	Size     int
}

// decode walks chunk.Code across [start, end), skipping past nested
// function-literal bodies the same way regionEnd does (a function-skip
// JUMP landing on a BUILD_FUNCTION opcode is not decoded into — the
// instructions inside it belong to a different region).
func decode(chunk *bytecode.Chunk, start, end int) []Instr {
	var out []Instr
	code := chunk.Code
	ip := start
	for ip < end && ip < len(code) {
		op := bytecode.OpCode(code[ip])
		def, err := bytecode.Get(op)
		if err != nil {
			break
		}
		size := 1
		operands := make([]int, len(def.OperandWidths))
		offset := ip + 1
		for i, w := range def.OperandWidths {
			switch w {
			case 1:
				operands[i] = int(code[offset])
			case 2:
				operands[i] = int(code[offset])<<8 | int(code[offset+1])
			}
			offset += w
			size += w
		}

		if op == bytecode.OpJump && len(def.OperandWidths) == 1 {
			target := ip + size + operands[0]
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

		out = append(out, Instr{Offset: ip, Op: op, Operands: operands, Size: size})
		if op == bytecode.OpReturn {
			break
		}
		ip += size
	}
	return out
}
