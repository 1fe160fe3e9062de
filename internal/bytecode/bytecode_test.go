package bytecode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeEncodesOperandsBigEndian(t *testing.T) {
	instr := Make(OpLoadConst, 300)
	require.Len(t, instr, 3)
	assert.Equal(t, byte(OpLoadConst), instr[0])
	assert.Equal(t, byte(1), instr[1]) // 300 = 0x012C
	assert.Equal(t, byte(0x2c), instr[2])
}

func TestMakeZeroOperandOpcode(t *testing.T) {
	instr := Make(OpAdd)
	assert.Equal(t, []byte{byte(OpAdd)}, instr)
}

func TestGetUnknownOpcodeErrors(t *testing.T) {
	_, err := Get(OpCode(250))
	assert.Error(t, err)
}

func TestChunkEmitAndPatchJump(t *testing.T) {
	c := NewChunk()
	c.Emit(OpLoadTrue, DebugInfo{Line: 1})
	jumpPos := c.Emit(OpJumpIfFalse, DebugInfo{Line: 1}, 0)
	c.Emit(OpPrint, DebugInfo{Line: 2})
	target := len(c.Code)
	require.NoError(t, c.PatchJump(jumpPos, target-jumpPos-2))
	assert.Equal(t, byte(target-jumpPos-2), c.Code[jumpPos+1])
}

func TestPatchJumpRejectsOverflow(t *testing.T) {
	c := NewChunk()
	pos := c.Emit(OpJump, DebugInfo{Line: 1}, 0)
	assert.Error(t, c.PatchJump(pos, 9999))
}

func TestAddNameDeduplicates(t *testing.T) {
	c := NewChunk()
	a := c.AddName("결과")
	b := c.AddName("결과")
	assert.Equal(t, a, b)
	assert.Len(t, c.Names, 1)
}

func TestSerializeRoundTrip(t *testing.T) {
	c := NewChunk()
	idx := c.AddConstant(int64(42))
	c.Emit(OpLoadConst, DebugInfo{Line: 1}, idx)
	nameIdx := c.AddName("결과")
	c.Emit(OpStoreGlobal, DebugInfo{Line: 1}, nameIdx)
	c.Emit(OpHalt, DebugInfo{Line: 2})

	var buf bytes.Buffer
	require.NoError(t, Serialize(c, &buf))

	restored, err := Deserialize(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Code, restored.Code)
	assert.Equal(t, c.Constants, restored.Constants)
	assert.Equal(t, c.Names, restored.Names)
	require.Len(t, restored.Debug, len(c.Code))
	assert.Equal(t, 1, restored.Debug[0].Line)
}

func TestSerializeRoundTripsClasses(t *testing.T) {
	c := NewChunk()
	c.Emit(OpHalt, DebugInfo{Line: 1})
	c.AddClass(ClassInfo{
		Name:       "사람",
		Superclass: "",
		Fields:     []string{"이름", "나이"},
		Methods:    map[string]string{"인사한다": "사람.인사한다"},
		Ctor:       "사람.new",
	})

	var buf bytes.Buffer
	require.NoError(t, Serialize(c, &buf))

	restored, err := Deserialize(&buf)
	require.NoError(t, err)
	require.Len(t, restored.Classes, 1)
	assert.Equal(t, c.Classes[0], restored.Classes[0])
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	_, err := Deserialize(bytes.NewReader([]byte("nope")))
	assert.Error(t, err)
}
