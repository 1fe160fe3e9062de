package evaluator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/stdlib"
	"hangeulscript/internal/vm"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *bytes.Buffer) {
	t.Helper()
	v := vm.New()
	var buf bytes.Buffer
	v.Out = &buf
	stdlib.Register(v)
	return New(v), &buf
}

func parseLine(t *testing.T, src string) []parser.Stmt {
	t.Helper()
	dict := dictionary.Default()
	sc := lexer.New("<repl>", src, dict)
	p := parser.NewWithSource(sc.All(), src, "<repl>")
	stmts := p.Parse()
	require.Empty(t, p.Errors)
	return stmts
}

func TestEvalProgramPrintsAndReturnsLastValue(t *testing.T) {
	ev, buf := newTestEvaluator(t)
	res, err := ev.EvalProgram(parseLine(t, `출력("안녕")`))
	require.NoError(t, err)
	require.Equal(t, SignalNormal, res.Signal)
	require.Equal(t, "안녕\n", buf.String())
}

func TestVariablesPersistAcrossSeparateEvalProgramCalls(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	_, err := ev.EvalProgram(parseLine(t, `정수 합 = 0`))
	require.NoError(t, err)
	_, err = ev.EvalProgram(parseLine(t, `합 = 합 + 5`))
	require.NoError(t, err)
	res, err := ev.EvalProgram(parseLine(t, `합`))
	require.NoError(t, err)
	require.Equal(t, vm.KindInteger, res.Value.Kind)
	require.EqualValues(t, 5, res.Value.Int)
}

func TestRangeForSumMatchesWorkedExample(t *testing.T) {
	ev, buf := newTestEvaluator(t)
	src := `정수 합 = 0
i가 1부터 10까지 반복 {
    합 = 합 + i
}
출력(합)
`
	_, err := ev.EvalProgram(parseLine(t, src))
	require.NoError(t, err)
	require.Equal(t, "55\n", buf.String())
}

func TestRepeatForRunsBodyExactCount(t *testing.T) {
	ev, buf := newTestEvaluator(t)
	src := `3번 반복한다 {
    출력("x")
}
`
	_, err := ev.EvalProgram(parseLine(t, src))
	require.NoError(t, err)
	require.Equal(t, "x\nx\nx\n", buf.String())
}

func TestEachIteratesArrayElements(t *testing.T) {
	ev, buf := newTestEvaluator(t)
	src := `배열 목록 = [1, 2, 3]
각각 항목 목록 {
    출력(항목)
}
`
	_, err := ev.EvalProgram(parseLine(t, src))
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", buf.String())
}

func TestIfStmtTakesElseBranchWhenFalsy(t *testing.T) {
	ev, buf := newTestEvaluator(t)
	src := `만약 거짓 {
    출력("참")
} 아니면 {
    출력("거짓")
}
`
	_, err := ev.EvalProgram(parseLine(t, src))
	require.NoError(t, err)
	require.Equal(t, "거짓\n", buf.String())
}

func TestUndefinedIdentifierIsAnError(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	_, err := ev.EvalProgram(parseLine(t, `정의안됨`))
	require.Error(t, err)
}

func TestArithmeticDelegatesToVM(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	res, err := ev.EvalProgram(parseLine(t, `10 / 0`))
	require.Error(t, err)
	require.Equal(t, vm.Value{}, res.Value)
}
