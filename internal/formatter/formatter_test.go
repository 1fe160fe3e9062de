package formatter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
)

// parseSource lexes and parses src, failing the test on any parse error.
func parseSource(t *testing.T, src string) []parser.Stmt {
	t.Helper()
	dict := dictionary.Default()
	sc := lexer.New("<test>", src, dict)
	p := parser.NewWithSource(sc.All(), src, "<test>")
	stmts := p.Parse()
	require.Empty(t, p.Errors, "source must parse cleanly")
	return stmts
}

// reparse formats stmts and parses the result straight back, so a test can
// assert on the shape of what comes out of a full round trip without
// hand-computing an expected string byte for byte.
func reparse(t *testing.T, stmts []parser.Stmt) []parser.Stmt {
	t.Helper()
	out := New().Format(stmts)
	return parseSource(t, out)
}

func TestFormatIsIdempotent(t *testing.T) {
	src := `정수 합 = 0
i가 1부터 10까지 반복 {
    합 = 합 + i
}
출력(합)
`
	stmts := parseSource(t, src)
	first := New().Format(stmts)
	second := New().Format(reparse(t, stmts))
	require.Equal(t, first, second, "formatting a formatted program must be a fixed point")
}

func TestFormatRoundTripsIfElse(t *testing.T) {
	src := `만약 나이 >= 18 {
    출력("성인")
} 아니면 {
    출력("미성년자")
}
`
	stmts := parseSource(t, src)
	out := New().Format(stmts)
	require.NotContains(t, out, "이면", "if-condition must not grow a fabricated 이면 token")
	reparsed := reparse(t, stmts)
	require.Len(t, reparsed, 1)
	_, ok := reparsed[0].(*parser.IfStmt)
	require.True(t, ok)
}

func TestFormatRoundTripsClassWithSuperclassAndConstructor(t *testing.T) {
	src := `클래스 동물 {
    함수 생성자(이름) {
        이것.이름 = 이름
    }
}

클래스 개: 동물 {
    함수 짖다() {
        출력(이것.이름)
    }
}
`
	stmts := parseSource(t, src)
	out := New().Format(stmts)
	require.Contains(t, out, "클래스 개: 동물", "superclass must render with a colon, not a fabricated extends keyword")
	require.NotContains(t, out, "확장")

	reparsed := reparse(t, stmts)
	require.Len(t, reparsed, 2)
	child, ok := reparsed[1].(*parser.ClassDecl)
	require.True(t, ok)
	require.Equal(t, "동물", child.Superclass)
}

func TestFormatRoundTripsNewExpr(t *testing.T) {
	src := `클래스 동물 {
    함수 생성자() {
    }
}
정수 반려동물 = 0
반려동물 = 새로운 동물()
`
	stmts := parseSource(t, src)
	out := New().Format(stmts)
	require.Contains(t, out, "새로운 동물()")

	reparsed := reparse(t, stmts)
	assign, ok := reparsed[2].(*parser.AssignStmt)
	require.True(t, ok)
	_, ok = assign.Value.(*parser.NewExpr)
	require.True(t, ok)
}

func TestFormatRoundTripsRepeatForAndEach(t *testing.T) {
	src := `3번 반복한다 {
    출력("안녕")
}
배열 목록 = [1, 2, 3]
각각 항목 목록 {
    출력(항목)
}
`
	stmts := parseSource(t, src)
	reparsed := reparse(t, stmts)
	require.Len(t, reparsed, 3)
	_, ok := reparsed[0].(*parser.RepeatForStmt)
	require.True(t, ok)
	_, ok = reparsed[2].(*parser.EachStmt)
	require.True(t, ok)
}
