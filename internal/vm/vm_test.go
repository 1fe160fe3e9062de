package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangeulscript/internal/compiler"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
)

// runSource compiles and executes src through the full pipeline, returning
// everything PRINT wrote plus any runtime error — the same shape every
// worked example in spec.md §8 is checked against.
func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	dict := dictionary.Default()
	sc := lexer.New("<test>", src, dict)
	p := parser.NewWithSource(sc.All(), src, "<test>")
	stmts := p.Parse()
	require.Empty(t, p.Errors, "source must parse cleanly")

	c := compiler.New("<test>")
	chunk, errs := c.Compile(&parser.Program{Stmts: stmts})
	require.Empty(t, errs, "source must compile cleanly")

	var buf bytes.Buffer
	v := New()
	v.Out = &buf
	_, err := v.Run(chunk)
	return buf.String(), err
}

func TestRangeForSumMatchesWorkedExample(t *testing.T) {
	out, err := runSource(t, `정수 합 = 0
i가 1부터 10까지 반복 {
합 = 합 + i
}
출력(합)`)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestNounProtectionKeepsDeclaredNameIntact(t *testing.T) {
	out, err := runSource(t, `정수 나이 = 30
출력(나이)`)
	require.NoError(t, err)
	assert.Equal(t, "30\n", out)
}

func TestDivisionByZeroTerminatesWithNoOutput(t *testing.T) {
	out, err := runSource(t, `출력(10 / 0)`)
	require.Error(t, err)
	var langErr *errors.LangError
	require.ErrorAs(t, err, &langErr)
	assert.Equal(t, errors.ZeroDivision, langErr.Kind)
	assert.Equal(t, "", out)
}

func TestStringAddConcatenatesBothSides(t *testing.T) {
	out, err := runSource(t, `출력("나이: " + 30)`)
	require.NoError(t, err)
	assert.Equal(t, "나이: 30\n", out)
}

func TestBooleanPrintsUsesKoreanLiterals(t *testing.T) {
	out, err := runSource(t, `출력(1 < 2)`)
	require.NoError(t, err)
	assert.Equal(t, "참\n", out)
}

func TestArrayIndexOutOfBoundsRaisesError(t *testing.T) {
	_, err := runSource(t, `배열 목록 = [1, 2, 3]
출력(목록[10])`)
	require.Error(t, err)
	var langErr *errors.LangError
	require.ErrorAs(t, err, &langErr)
	assert.Equal(t, errors.IndexOutOfBounds, langErr.Kind)
}

func TestMutualRecursionExecutesAcrossHoistedFunctions(t *testing.T) {
	out, err := runSource(t, `함수 홀수인가(n) {
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
	require.NoError(t, err)
	assert.Equal(t, "참\n", out)
}

func TestClassConstructorAndMethodDispatch(t *testing.T) {
	out, err := runSource(t, `클래스 사람 {
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
	require.NoError(t, err)
	assert.Equal(t, "철수\n", out)
}

func TestArrayPostpositionSortAndAppendMutateInPlace(t *testing.T) {
	out, err := runSource(t, `배열 목록 = [3, 1, 2]
목록을 정렬한다()
목록을 추가한다(9)
출력(목록)`)
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3, 9]\n", out)
}

func TestTryCatchRoutesThrownValueToHandler(t *testing.T) {
	out, err := runSource(t, `시도 {
던지기 "문제 발생"
} 잡기 e {
출력(e)
}`)
	require.NoError(t, err)
	assert.Equal(t, "문제 발생\n", out)
}

func TestRuntimeLimitExceededStopsAnInfiniteLoop(t *testing.T) {
	dict := dictionary.Default()
	src := `동안 참 {
}`
	sc := lexer.New("<test>", src, dict)
	p := parser.NewWithSource(sc.All(), src, "<test>")
	stmts := p.Parse()
	require.Empty(t, p.Errors)
	c := compiler.New("<test>")
	chunk, errs := c.Compile(&parser.Program{Stmts: stmts})
	require.Empty(t, errs)

	v := New()
	v.SetLimits(Limits{MaxInstructions: 1000, MaxExecutionTime: DefaultLimits().MaxExecutionTime, MaxStackDepth: DefaultLimits().MaxStackDepth})
	var buf bytes.Buffer
	v.Out = &buf
	_, err := v.Run(chunk)
	require.Error(t, err)
	var langErr *errors.LangError
	require.ErrorAs(t, err, &langErr)
	assert.Equal(t, errors.RuntimeLimitExceeded, langErr.Kind)
}
