package diagnostics

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	langerrors "hangeulscript/internal/errors"
)

func TestAddNilIsNoop(t *testing.T) {
	r := New(false)
	r.Add(nil)
	require.False(t, r.HasErrors())
	require.Empty(t, r.Errors())
}

func TestAddAllSkipsNils(t *testing.T) {
	r := New(false)
	r.AddAll([]error{nil, errors.New("boom"), nil})
	require.True(t, r.HasErrors())
	require.Len(t, r.Errors(), 1)
}

func TestRenderDefaultModeOneLinePerError(t *testing.T) {
	r := New(false)
	le := langerrors.New(langerrors.UndefinedName, "정의되지 않음", "a.ksj", 3, 5)
	r.Add(le)
	r.Add(errors.New("plain error"))

	var buf bytes.Buffer
	r.Render(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, le.Error(), lines[0])
	require.Equal(t, "plain error", lines[1])
}

func TestRenderVerboseModeUsesStructDumpForLangError(t *testing.T) {
	r := New(true)
	le := langerrors.New(langerrors.UndefinedName, "정의되지 않음", "a.ksj", 3, 5)
	r.Add(le)

	var buf bytes.Buffer
	r.Render(&buf)
	out := buf.String()
	require.Contains(t, out, "UndefinedName")
	require.NotEqual(t, le.Error()+"\n", out, "verbose mode must differ from the one-line form")
}

func TestRenderVerboseModeFallsBackForPlainError(t *testing.T) {
	r := New(true)
	r.Add(errors.New("plain error"))

	var buf bytes.Buffer
	r.Render(&buf)
	require.Contains(t, buf.String(), "plain error")
}
