package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangeulscript/internal/bytecode"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
)

func compileSource(t *testing.T, src string) (*bytecode.Chunk, []error) {
	t.Helper()
	dict := dictionary.Default()
	sc := lexer.New("<test>", src, dict)
	p := parser.NewWithSource(sc.All(), src, "<test>")
	stmts := p.Parse()
	require.Empty(t, p.Errors, "source must parse cleanly before compilation")
	c := New("<test>")
	return c.Compile(&parser.Program{Stmts: stmts})
}

// ops decodes chunk's Code into its opcode sequence only, discarding
// operands — enough to assert lowering shape without hand-computing every
// jump offset in the test itself.
func ops(t *testing.T, chunk *bytecode.Chunk) []bytecode.OpCode {
	t.Helper()
	var out []bytecode.OpCode
	ip := 0
	for ip < len(chunk.Code) {
		op := bytecode.OpCode(chunk.Code[ip])
		def, err := bytecode.Get(op)
		require.NoError(t, err)
		out = append(out, op)
		ip++
		for _, w := range def.OperandWidths {
			ip += w
		}
	}
	return out
}

func TestVarDeclAndPrintCompilesToPrintIntrinsic(t *testing.T) {
	chunk, errs := compileSource(t, `정수 나이 = 5
출력(나이)`)
	require.Empty(t, errs)
	assert.Equal(t, []bytecode.OpCode{
		bytecode.OpLoadConst, bytecode.OpStoreGlobal, bytecode.OpPop,
		bytecode.OpLoadGlobal, bytecode.OpPrint, bytecode.OpLoadNull, bytecode.OpPop,
		bytecode.OpHalt,
	}, ops(t, chunk))
	require.Len(t, chunk.Constants, 1)
	assert.EqualValues(t, 5, chunk.Constants[0])
	assert.Contains(t, chunk.Names, "나이")
}

func TestPrintWithWrongArityIsReported(t *testing.T) {
	_, errs := compileSource(t, `출력(1, 2)`)
	require.Len(t, errs, 1)
}

func TestIfElseFollowsSpecJumpRecipe(t *testing.T) {
	chunk, errs := compileSource(t, `정수 x = 1
만약 x == 1 {
출력(1)
} 아니면 {
출력(0)
}`)
	require.Empty(t, errs)
	got := ops(t, chunk)
	// compileIf: cond, JUMP_IF_FALSE, POP, <then>, JUMP, POP, <else>
	require.Contains(t, got, bytecode.OpJumpIfFalse)
	require.Contains(t, got, bytecode.OpJump)
	// exactly two POPs bracket the branches' jump targets (plus the ones
	// each ExprStmt/VarDecl already emits) — assert the branch shape by
	// checking both literal prints survive lowering.
	one := false
	zero := false
	for _, c := range chunk.Constants {
		if c == int64(1) {
			one = true
		}
		if c == int64(0) {
			zero = true
		}
	}
	assert.True(t, one)
	assert.True(t, zero)
}

func TestWhileLoopEmitsBackwardLoop(t *testing.T) {
	chunk, errs := compileSource(t, `정수 n = 0
동안 n < 10 {
n = n + 1
}`)
	require.Empty(t, errs)
	got := ops(t, chunk)
	assert.Contains(t, got, bytecode.OpLoop)
	assert.Contains(t, got, bytecode.OpJumpIfFalse)
}

func TestRangeForUsesLocalSlotsInsideFunction(t *testing.T) {
	chunk, errs := compileSource(t, `함수 합계() {
정수 합 = 0
i가 1부터 10까지 반복 {
합 = 합 + i
}
반환 합
}`)
	require.Empty(t, errs)
	got := ops(t, chunk)
	assert.Contains(t, got, bytecode.OpLoadVar)
	assert.Contains(t, got, bytecode.OpStoreVar)
	assert.Contains(t, got, bytecode.OpLoop)
}

func TestRangeForAtTopLevelUsesGlobals(t *testing.T) {
	chunk, errs := compileSource(t, `i가 1부터 3까지 반복 {
출력(i)
}`)
	require.Empty(t, errs)
	assert.Contains(t, chunk.Names, "i")
}

func TestMutuallyRecursiveFunctionsAreHoisted(t *testing.T) {
	chunk, errs := compileSource(t, `함수 홀수인가(n) {
만약 n == 0 {
반환 거짓
}
반환 짝수인가(n - 1)
}
함수 짝수인가(n) {
만약 n == 0 {
반환 참
}
반환 홀수인가(n - 1)
}
출력(짝수인가(4))`)
	require.Empty(t, errs)
	assert.Contains(t, chunk.Names, "홀수인가")
	assert.Contains(t, chunk.Names, "짝수인가")
	// both hoisted bodies (each behind a skip JUMP) compile before the
	// trailing print call — BUILD_FUNCTION appears twice ahead of it.
	got := ops(t, chunk)
	count := 0
	for _, op := range got {
		if op == bytecode.OpBuildFunction {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestDictLiteralDesugarsToArrayAndBuiltin(t *testing.T) {
	chunk, errs := compileSource(t, `d = {"a": 1, "b": 2}`)
	require.Empty(t, errs)
	got := ops(t, chunk)
	assert.Contains(t, got, bytecode.OpBuildArray)
	assert.Contains(t, chunk.Names, "사전_생성")
	assert.NotContains(t, got, bytecode.OpIndexSet) // no BUILD_DICT-shaped opcode exists
}

func TestClassWithConstructorAndMethodRegistersClassInfo(t *testing.T) {
	chunk, errs := compileSource(t, `클래스 사람 {
이름
함수 생성자(이름) {
이것.이름 = 이름
}
함수 인사한다() {
출력(이것.이름)
}
}
철수 = 새로운 사람("철수")
철수.인사한다()`)
	require.Empty(t, errs)
	require.Len(t, chunk.Classes, 1)
	info := chunk.Classes[0]
	assert.Equal(t, "사람", info.Name)
	assert.Equal(t, []string{"이름"}, info.Fields)
	assert.Equal(t, "사람.new", info.Ctor)
	assert.Equal(t, "사람.인사한다", info.Methods["인사한다"])
	assert.Contains(t, chunk.Names, "__new__")
}

func TestClassInheritsSuperclassFieldsAndMethods(t *testing.T) {
	chunk, errs := compileSource(t, `클래스 동물 {
이름
함수 운다() {
출력("...")
}
}
클래스 개 : 동물 {
함수 운다() {
출력("멍멍")
}
}`)
	require.Empty(t, errs)
	require.Len(t, chunk.Classes, 2)
	var dog bytecode.ClassInfo
	for _, ci := range chunk.Classes {
		if ci.Name == "개" {
			dog = ci
		}
	}
	assert.Equal(t, "동물", dog.Superclass)
	assert.Equal(t, []string{"이름"}, dog.Fields)
	assert.Equal(t, "개.운다", dog.Methods["운다"])
}

func TestTryCatchLowersThroughHiddenBuiltins(t *testing.T) {
	chunk, errs := compileSource(t, `시도 {
던지기 "문제 발생"
} 잡기 e {
출력(e)
}`)
	require.Empty(t, errs)
	assert.Contains(t, chunk.Names, "__try__")
	assert.Contains(t, chunk.Names, "__throw__")
	got := ops(t, chunk)
	buildFns := 0
	for _, op := range got {
		if op == bytecode.OpBuildFunction {
			buildFns++
		}
	}
	assert.Equal(t, 2, buildFns) // try-thunk and catch-thunk
}

func TestMatchExpressionDefaultCaseFallsThrough(t *testing.T) {
	chunk, errs := compileSource(t, `정수 x = 2
출력(맞추기 x { 1 -> "하나", _ -> "기타" })`)
	require.Empty(t, errs)
	got := ops(t, chunk)
	assert.Contains(t, got, bytecode.OpDup)
	assert.Contains(t, got, bytecode.OpEq)
}

func TestImportLowersThroughHiddenImportBuiltin(t *testing.T) {
	chunk, errs := compileSource(t, `가져오기 "수학" m`)
	require.Empty(t, errs)
	assert.Contains(t, chunk.Names, "__import__")
	assert.Contains(t, chunk.Names, "m")
}

func TestArrayPostpositionCallEmitsPostpositionCallOpcode(t *testing.T) {
	chunk, errs := compileSource(t, `배열 목록 = [3, 1, 2]
목록을 정렬한다()`)
	require.Empty(t, errs)
	got := ops(t, chunk)
	assert.Contains(t, got, bytecode.OpPostpositionCall)
	assert.Contains(t, chunk.Names, "정렬한다")
}
