// Package bytecode defines the Chunk the compiler emits and the VM
// executes: a flat byte stream of opcodes and operands, a constants pool,
// a names pool (for LOAD_GLOBAL/STORE_GLOBAL/POSTPOSITION_CALL, which index
// by name rather than by value), and a per-instruction debug table.
//
// The opcode→operand-arity mapping is grounded on informatter-nilan's
// compiler/code.go: a data-driven OpCodeDefinition table plus Get/Make
// helpers, rather than the teacher's bare OpCode iota with arity implied
// ad hoc at each call site. spec.md §4.3's opcode set is normative; this
// file transcribes it verbatim.
package bytecode

import (
	"encoding/binary"
	"fmt"
)

type OpCode byte

const (
	OpLoadConst OpCode = iota
	OpLoadTrue
	OpLoadFalse
	OpLoadNull
	OpLoadVar
	OpStoreVar
	OpLoadGlobal
	OpStoreGlobal
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpNot
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpLoop
	OpCall
	OpReturn
	OpBuildFunction
	OpBuildArray
	OpIndexGet
	OpIndexSet
	OpArrayAppend
	OpPostpositionCall
	OpPop
	OpDup
	OpSwap
	OpPrint
	OpHalt
)

// OpCodeDefinition names an opcode and the byte width of each of its
// operands, in declaration order — the nilan Get/Make idiom.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

// definitions is the normative table from spec.md §4.3. Every multi-byte
// operand is big-endian; a width-2 operand is a names/constants pool index
// or a jump displacement, both capped at 65535 by construction.
var definitions = map[OpCode]*OpCodeDefinition{
	OpLoadConst:        {"LOAD_CONST", []int{2}},
	OpLoadTrue:         {"LOAD_TRUE", nil},
	OpLoadFalse:        {"LOAD_FALSE", nil},
	OpLoadNull:         {"LOAD_NULL", nil},
	OpLoadVar:          {"LOAD_VAR", []int{2}},
	OpStoreVar:         {"STORE_VAR", []int{2}},
	OpLoadGlobal:       {"LOAD_GLOBAL", []int{2}},
	OpStoreGlobal:      {"STORE_GLOBAL", []int{2}},
	OpAdd:              {"ADD", nil},
	OpSub:              {"SUB", nil},
	OpMul:              {"MUL", nil},
	OpDiv:              {"DIV", nil},
	OpMod:              {"MOD", nil},
	OpNeg:              {"NEG", nil},
	OpEq:               {"EQ", nil},
	OpNe:               {"NE", nil},
	OpLt:               {"LT", nil},
	OpGt:               {"GT", nil},
	OpLe:               {"LE", nil},
	OpGe:               {"GE", nil},
	OpAnd:              {"AND", nil},
	OpOr:               {"OR", nil},
	OpNot:              {"NOT", nil},
	OpJump:             {"JUMP", []int{1}},
	OpJumpIfFalse:      {"JUMP_IF_FALSE", []int{1}},
	OpJumpIfTrue:       {"JUMP_IF_TRUE", []int{1}},
	OpLoop:             {"LOOP", []int{2}},
	OpCall:             {"CALL", []int{1}},
	OpReturn:           {"RETURN", nil},
	OpBuildFunction:    {"BUILD_FUNCTION", []int{1, 2}},
	OpBuildArray:       {"BUILD_ARRAY", []int{2}},
	OpIndexGet:         {"INDEX_GET", nil},
	OpIndexSet:         {"INDEX_SET", nil},
	OpArrayAppend:      {"ARRAY_APPEND", nil},
	OpPostpositionCall: {"POSTPOSITION_CALL", []int{2, 2}},
	OpPop:              {"POP", nil},
	OpDup:              {"DUP", nil},
	OpSwap:             {"SWAP", nil},
	OpPrint:            {"PRINT", nil},
	OpHalt:             {"HALT", nil},
}

// Get looks up op's definition, erroring on an unrecognized byte — this is
// how the disassembler and the VM's decode loop both learn an opcode's
// operand shape without a hand-written switch duplicated in three places.
func Get(op OpCode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("bytecode: opcode %d undefined", op)
	}
	return def, nil
}

// Make encodes one instruction: op's byte followed by each operand,
// big-endian, at the width Get(op) declares. A JUMP-family operand width
// of 1 is validated by the compiler's backpatcher (errors.JumpTooFar),
// not here — Make trusts its caller already confirmed the operand fits.
func Make(op OpCode, operands ...int) []byte {
	def, err := Get(op)
	if err != nil {
		return nil
	}
	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instr := make([]byte, length)
	instr[0] = byte(op)
	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 1:
			instr[offset] = byte(operand)
		case 2:
			binary.BigEndian.PutUint16(instr[offset:], uint16(operand))
		}
		offset += width
	}
	return instr
}

func (op OpCode) String() string {
	if def, ok := definitions[op]; ok {
		return def.Name
	}
	return fmt.Sprintf("OpCode(%d)", op)
}
