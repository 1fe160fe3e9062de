package stdlib

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangeulscript/internal/compiler"
	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/vm"
)

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
	v := vm.New()
	v.Out = &buf
	Register(v)
	_, err := v.Run(chunk)
	return buf.String(), err
}

func TestSplitFindReplaceCaseFunctions(t *testing.T) {
	out, err := runSource(t, `출력(분리("가,나,다", ","))`)
	require.NoError(t, err)
	assert.Equal(t, `["가", "나", "다"]`+"\n", out)

	out, err = runSource(t, `출력(찾기("hello world", "world"))`)
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)

	out, err = runSource(t, `출력(바꾸기("a-b-c", "-", "_"))`)
	require.NoError(t, err)
	assert.Equal(t, "a_b_c\n", out)

	out, err = runSource(t, `출력(대문자("abc"))`)
	require.NoError(t, err)
	assert.Equal(t, "ABC\n", out)

	out, err = runSource(t, `출력(소문자("ABC"))`)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", out)
}

func TestMathFunctions(t *testing.T) {
	out, err := runSource(t, `출력(절대값(0 - 5))`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	out, err = runSource(t, `출력(제곱(2, 10))`)
	require.NoError(t, err)
	assert.Equal(t, "1024\n", out)

	out, err = runSource(t, `출력(반올림(3.6))`)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)
}

func TestTypeOfNamesEveryValueKind(t *testing.T) {
	out, err := runSource(t, `출력(타입(1))`)
	require.NoError(t, err)
	assert.Equal(t, "정수\n", out)

	out, err = runSource(t, `출력(타입("문자열"))`)
	require.NoError(t, err)
	assert.Equal(t, "문자열\n", out)

	out, err = runSource(t, `출력(타입([1, 2]))`)
	require.NoError(t, err)
	assert.Equal(t, "배열\n", out)
}

func TestReadWriteFileRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	src := `파일_쓰기("` + path + `", "안녕하세요")
출력(파일_읽기("` + path + `"))`
	out, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요\n", out)
}

func TestUUIDLooksLikeAUUID(t *testing.T) {
	out, err := runSource(t, `출력(고유아이디())`)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}\n$`), out)
}
