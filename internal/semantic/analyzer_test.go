package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
)

func analyze(t *testing.T, src string) []error {
	t.Helper()
	dict := dictionary.Default()
	sc := lexer.New("<test>", src, dict)
	p := parser.NewWithSource(sc.All(), src, "<test>")
	stmts := p.Parse()
	require.Empty(t, p.Errors, "source must parse cleanly before semantic analysis")
	a := NewAnalyzer(dict)
	return a.Analyze(&parser.Program{Stmts: stmts})
}

func TestWellFormedProgramHasNoErrors(t *testing.T) {
	errs := analyze(t, `정수 나이 = 5
출력(나이)`)
	assert.Empty(t, errs)
}

func TestUndefinedNameIsReported(t *testing.T) {
	errs := analyze(t, `출력(없는변수)`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "UndefinedName")
}

func TestRedeclarationInSameBlockIsReported(t *testing.T) {
	errs := analyze(t, `함수 테스트() {
정수 x = 1
정수 x = 2
}`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Redefinition")
}

func TestShadowingInNestedBlockIsAllowed(t *testing.T) {
	errs := analyze(t, `함수 테스트(x) {
만약 참 {
정수 x = 2
출력(x)
}
출력(x)
}`)
	assert.Empty(t, errs)
}

func TestTypeAnnotationMismatchIsReported(t *testing.T) {
	errs := analyze(t, `정수 이름 = "철수"`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "TypeAnnotationMismatch")
}

func TestMutualRecursionResolvesViaHoisting(t *testing.T) {
	errs := analyze(t, `함수 짝수인가(n) {
반환 홀수인가(n)
}
함수 홀수인가(n) {
반환 짝수인가(n)
}`)
	assert.Empty(t, errs)
}

func TestUnknownSuperclassIsReported(t *testing.T) {
	errs := analyze(t, `클래스 학생 : 사람 {
이름
}`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "UnresolvedReference")
}

func TestRangeForLoopVariableIsScopedToBody(t *testing.T) {
	errs := analyze(t, `i가 1부터 10까지 반복 {
출력(i)
}
출력(i)`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "UndefinedName")
}

func TestFunctionParamsAreVisibleInBody(t *testing.T) {
	errs := analyze(t, `함수 더하기(a, b) {
반환 a + b
}`)
	assert.Empty(t, errs)
}

func TestBuiltinCallIsNeverUndefined(t *testing.T) {
	errs := analyze(t, `출력(읽기쉬운크기(1024))`)
	assert.Empty(t, errs)
}
