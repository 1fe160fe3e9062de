package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/lexer"
)

func parseSource(src string) ([]Stmt, []error) {
	dict := dictionary.Default()
	sc := lexer.New("<test>", src, dict)
	toks := sc.All()
	p := NewWithSource(toks, src, "<test>")
	stmts := p.Parse()
	return stmts, p.Errors
}

func TestVarDeclAndPrintCall(t *testing.T) {
	stmts, errs := parseSource(`정수 나이 = 5
출력(나이)`)
	require.Empty(t, errs)
	require.Len(t, stmts, 2)

	decl, ok := stmts[0].(*VarDecl)
	require.True(t, ok)
	assert.Equal(t, "나이", decl.Name)
	assert.Equal(t, "정수", decl.TypeAnn)
	lit, ok := decl.Value.(*IntLiteral)
	require.True(t, ok)
	assert.EqualValues(t, 5, lit.Value)

	exprStmt, ok := stmts[1].(*ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.Expr.(*CallExpr)
	require.True(t, ok)
	callee, ok := call.Callee.(*Identifier)
	require.True(t, ok)
	assert.Equal(t, "출력", callee.Name)
}

func TestRangeForLoop(t *testing.T) {
	stmts, errs := parseSource(`i가 1부터 10까지 반복 {
출력(i)
}`)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)
	rf, ok := stmts[0].(*RangeForStmt)
	require.True(t, ok)
	assert.Equal(t, "i", rf.Variable)
	assert.Equal(t, "이하", rf.Range.Bound)
	require.Len(t, rf.Body, 1)
}

func TestRangeForLoopExclusiveBound(t *testing.T) {
	stmts, errs := parseSource(`i가 0부터 10미만 반복 {
출력(i)
}`)
	require.Empty(t, errs)
	rf := stmts[0].(*RangeForStmt)
	assert.Equal(t, "미만", rf.Range.Bound)
}

func TestRepeatForLoop(t *testing.T) {
	stmts, errs := parseSource(`3번 반복한다 {
출력(1)
}`)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)
	rf, ok := stmts[0].(*RepeatForStmt)
	require.True(t, ok)
	lit, ok := rf.Count.(*IntLiteral)
	require.True(t, ok)
	assert.EqualValues(t, 3, lit.Value)
	require.Len(t, rf.Body, 1)
}

func TestFunctionDeclAndCall(t *testing.T) {
	stmts, errs := parseSource(`함수 더하기(a, b) {
반환 a + b
}
출력(더하기(1, 2))`)
	require.Empty(t, errs)
	require.Len(t, stmts, 2)
	fd, ok := stmts[0].(*FunctionDecl)
	require.True(t, ok)
	assert.Equal(t, "더하기", fd.Fn.Name)
	assert.Equal(t, []string{"a", "b"}, fd.Fn.Params)
	require.Len(t, fd.Fn.Body, 1)
	ret, ok := fd.Fn.Body[0].(*ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestWhileLoopAndDivision(t *testing.T) {
	stmts, errs := parseSource(`동안 참 {
출력(10 / 0)
}`)
	require.Empty(t, errs)
	ws, ok := stmts[0].(*WhileStmt)
	require.True(t, ok)
	_, ok = ws.Cond.(*BoolLiteral)
	require.True(t, ok)
}

func TestIfElse(t *testing.T) {
	stmts, errs := parseSource(`만약 1 < 2 {
출력("yes")
} 아니면 {
출력("no")
}`)
	require.Empty(t, errs)
	ifs, ok := stmts[0].(*IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.Then, 1)
	require.Len(t, ifs.Else, 1)
}

func TestArrayLiteralAndIndex(t *testing.T) {
	stmts, errs := parseSource(`배열 목록 = [1, 2, 3]
출력(목록[0])`)
	require.Empty(t, errs)
	decl := stmts[0].(*VarDecl)
	arr, ok := decl.Value.(*ArrayLiteral)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 3)
}

func TestPostpositionCallOnArray(t *testing.T) {
	stmts, errs := parseSource(`목록을 정렬한다()`)
	require.Empty(t, errs)
	es, ok := stmts[0].(*ExprStmt)
	require.True(t, ok)
	pc, ok := es.Expr.(*PostpositionCallExpr)
	require.True(t, ok)
	assert.Equal(t, "정렬한다", pc.Method)
	target, ok := pc.Target.(*Identifier)
	require.True(t, ok)
	assert.Equal(t, "목록", target.Name)
}

func TestDictLiteral(t *testing.T) {
	stmts, errs := parseSource(`출력({"a": 1, "b": 2})`)
	require.Empty(t, errs)
	es := stmts[0].(*ExprStmt)
	call := es.Expr.(*CallExpr)
	dict, ok := call.Args[0].(*DictLiteral)
	require.True(t, ok)
	assert.Len(t, dict.Entries, 2)
}

func TestTryCatchThrow(t *testing.T) {
	stmts, errs := parseSource(`시도 {
던지기 "문제 발생"
} 잡기 e {
출력(e)
}`)
	require.Empty(t, errs)
	ts, ok := stmts[0].(*TryStmt)
	require.True(t, ok)
	assert.Equal(t, "e", ts.CatchVar)
	require.Len(t, ts.Try, 1)
	_, ok = ts.Try[0].(*ThrowStmt)
	require.True(t, ok)
}

func TestMatchExpression(t *testing.T) {
	stmts, errs := parseSource(`출력(맞추기 x { 1 -> "하나", _ -> "기타" })`)
	require.Empty(t, errs)
	es := stmts[0].(*ExprStmt)
	call := es.Expr.(*CallExpr)
	m, ok := call.Args[0].(*MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Cases, 2)
	assert.Nil(t, m.Cases[1].Pattern)
}

func TestClassDeclWithConstructorAndMethod(t *testing.T) {
	stmts, errs := parseSource(`클래스 사람 {
이름
함수 생성자(이름) {
이것.이름 = 이름
}
함수 인사한다() {
출력(이것.이름)
}
}`)
	require.Empty(t, errs)
	cd, ok := stmts[0].(*ClassDecl)
	require.True(t, ok)
	assert.Equal(t, "사람", cd.Name)
	require.NotNil(t, cd.Constructor)
	require.Len(t, cd.Methods, 1)
	require.Len(t, cd.Fields, 1)
}

func TestAssignToIndexAndMember(t *testing.T) {
	stmts, errs := parseSource(`목록[0] = 9
이것.이름 = "철수"`)
	require.Empty(t, errs)
	as1, ok := stmts[0].(*AssignStmt)
	require.True(t, ok)
	_, ok = as1.Target.(*IndexExpr)
	require.True(t, ok)

	as2, ok := stmts[1].(*AssignStmt)
	require.True(t, ok)
	_, ok = as2.Target.(*MemberExpr)
	require.True(t, ok)
}

func TestImportStatement(t *testing.T) {
	stmts, errs := parseSource(`가져오기 "수학"`)
	require.Empty(t, errs)
	is, ok := stmts[0].(*ImportStmt)
	require.True(t, ok)
	assert.Equal(t, "수학", is.Path)
}

func TestSyntaxErrorRecoveryContinuesParsing(t *testing.T) {
	stmts, errs := parseSource(`정수 x =
정수 y = 5`)
	assert.NotEmpty(t, errs)
	found := false
	for _, s := range stmts {
		if vd, ok := s.(*VarDecl); ok && vd.Name == "y" {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and keep parsing after a syntax error")
}

func TestEachLoop(t *testing.T) {
	stmts, errs := parseSource(`각각 항목 이 목록 {
출력(항목)
}`)
	require.Empty(t, errs)
	es, ok := stmts[0].(*EachStmt)
	require.True(t, ok)
	assert.Equal(t, "항목", es.Variable)
}

func BenchmarkParseFunctionAndLoop(b *testing.B) {
	src := `함수 합계(n) {
결과 가 0부터 n까지 반복 {
}
반환 n
}`
	for i := 0; i < b.N; i++ {
		parseSource(src)
	}
}
