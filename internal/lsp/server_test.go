package lsp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return NewServer(strings.NewReader(""), &out), &out
}

func TestDiagnoseCleanSourceReportsNothing(t *testing.T) {
	s, _ := newTestServer(t)
	diags := s.diagnose("정수 합 = 0\n출력(합)\n")
	require.Empty(t, diags)
}

func TestDiagnoseParseErrorReportsOneIndexedZeroBased(t *testing.T) {
	s, _ := newTestServer(t)
	// missing closing brace, a MissingToken parse error.
	diags := s.diagnose("만약 참 {\n출력(1)\n")
	require.NotEmpty(t, diags)
	require.GreaterOrEqual(t, diags[0].Range.Start.Line, 0)
	require.GreaterOrEqual(t, diags[0].Range.Start.Character, 0)
	require.Equal(t, "hgs", diags[0].Source)
}

func TestDiagnoseSemanticErrorForUndefinedName(t *testing.T) {
	s, _ := newTestServer(t)
	diags := s.diagnose("출력(정의되지않음)\n")
	require.NotEmpty(t, diags)
}

// writeFramed encodes msg into the Content-Length-prefixed wire format
// handleMessage expects, matching writeMessage's own framing exactly.
func writeFramed(t *testing.T, buf *bytes.Buffer, msg map[string]interface{}) {
	t.Helper()
	content, err := json.Marshal(msg)
	require.NoError(t, err)
	fmt.Fprintf(buf, "Content-Length: %d\r\n\r\n", len(content))
	buf.Write(content)
}

func TestHandleMessageInitializeRespondsWithCapabilities(t *testing.T) {
	var in bytes.Buffer
	id := json.RawMessage(`1`)
	writeFramed(t, &in, map[string]interface{}{
		"jsonrpc": "2.0", "id": &id, "method": "initialize", "params": map[string]interface{}{},
	})
	var out bytes.Buffer
	s := NewServer(&in, &out)

	require.NoError(t, s.handleMessage())
	require.Contains(t, out.String(), "capabilities")
	require.Contains(t, out.String(), "\"id\":1")
}

func TestHandleMessageDidOpenPublishesDiagnostics(t *testing.T) {
	var in bytes.Buffer
	writeFramed(t, &in, map[string]interface{}{
		"jsonrpc": "2.0", "method": "textDocument/didOpen",
		"params": map[string]interface{}{
			"textDocument": map[string]interface{}{
				"uri": "file:///a.ksj", "version": 1, "text": "출력(정의되지않음)\n",
			},
		},
	})
	var out bytes.Buffer
	s := NewServer(&in, &out)

	require.NoError(t, s.handleMessage())
	require.Contains(t, out.String(), "publishDiagnostics")
	require.Contains(t, out.String(), "file:///a.ksj")
}

func TestHandleMessageUnknownMethodWithIDSendsMethodNotFound(t *testing.T) {
	var in bytes.Buffer
	id := json.RawMessage(`2`)
	writeFramed(t, &in, map[string]interface{}{
		"jsonrpc": "2.0", "id": &id, "method": "textDocument/hover", "params": map[string]interface{}{},
	})
	var out bytes.Buffer
	s := NewServer(&in, &out)

	require.NoError(t, s.handleMessage())
	require.Contains(t, out.String(), "-32601")
}

func TestExitStopsTheRunLoop(t *testing.T) {
	var in bytes.Buffer
	writeFramed(t, &in, map[string]interface{}{"jsonrpc": "2.0", "method": "exit"})
	var out bytes.Buffer
	s := NewServer(&in, &out)
	s.running = true
	require.NoError(t, s.handleMessage())
	require.False(t, s.running)
}
