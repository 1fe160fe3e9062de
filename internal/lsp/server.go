// Package lsp implements a minimal Language Server Protocol front end for
// `hgs lsp`, speaking JSON-RPC over stdio with the standard
// Content-Length-prefixed framing. Grounded on the teacher's
// internal/lsp/server.go — same header-then-JSON read loop, same
// dispatch/sendResponse/sendNotification/writeMessage shape — retargeted
// at the student pipeline's own lexer.New/parser.NewWithSource/
// semantic.Analyzer for diagnostics instead of the teacher's scanner/
// parser pair.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"hangeulscript/internal/dictionary"
	"hangeulscript/internal/errors"
	"hangeulscript/internal/lexer"
	"hangeulscript/internal/parser"
	"hangeulscript/internal/semantic"
)

const lspVersion = "2.0"

// Server is the LSP server implementation for 한글스크립트.
type Server struct {
	in      *bufio.Reader
	out     io.Writer
	mu      sync.Mutex
	docs    map[string]*document
	dict    *dictionary.Dictionary
	running bool
}

type document struct {
	URI     string
	Content string
	Version int
}

func NewServer(in io.Reader, out io.Writer) *Server {
	return &Server{
		in:   bufio.NewReader(in),
		out:  out,
		docs: map[string]*document{},
		dict: dictionary.Default(),
	}
}

// Start runs the server's main loop until "exit", ctx cancellation, or EOF.
func (s *Server) Start(ctx context.Context) error {
	s.running = true
	for s.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.handleMessage(); err != nil {
				if err == io.EOF {
					return nil
				}
				fmt.Fprintf(os.Stderr, "lsp: %v\n", err)
			}
		}
	}
	return nil
}

func (s *Server) handleMessage() error {
	contentLength := 0
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
			if err != nil {
				return fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = n
		}
	}
	if contentLength == 0 {
		return nil
	}

	content := make([]byte, contentLength)
	if _, err := io.ReadFull(s.in, content); err != nil {
		return err
	}

	var msg message
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("lsp: malformed message: %w", err)
	}
	return s.dispatch(&msg)
}

type message struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

func (s *Server) dispatch(msg *message) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.sendResponse(msg.ID, nil)
	case "exit":
		s.running = false
		return nil
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	default:
		if msg.ID != nil {
			return s.sendError(msg.ID, -32601, "Method not found: "+msg.Method)
		}
		return nil
	}
}

func (s *Server) sendResponse(id *json.RawMessage, result interface{}) error {
	return s.writeMessage(map[string]interface{}{"jsonrpc": lspVersion, "id": id, "result": result})
}

func (s *Server) sendError(id *json.RawMessage, code int, msg string) error {
	return s.writeMessage(map[string]interface{}{
		"jsonrpc": lspVersion, "id": id,
		"error": map[string]interface{}{"code": code, "message": msg},
	})
}

func (s *Server) sendNotification(method string, params interface{}) error {
	return s.writeMessage(map[string]interface{}{"jsonrpc": lspVersion, "method": method, "params": params})
}

func (s *Server) writeMessage(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(content)); err != nil {
		return err
	}
	_, err = s.out.Write(content)
	return err
}

type serverCapabilities struct {
	TextDocumentSync   int  `json:"textDocumentSync"`
	HoverProvider      bool `json:"hoverProvider"`
	DefinitionProvider bool `json:"definitionProvider"`
}

func (s *Server) handleInitialize(msg *message) error {
	return s.sendResponse(msg.ID, map[string]interface{}{
		"capabilities": serverCapabilities{TextDocumentSync: 1},
	})
}

type textDocumentItem struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
	Text    string `json:"text"`
}

func (s *Server) handleDidOpen(msg *message) error {
	var params struct {
		TextDocument textDocumentItem `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[params.TextDocument.URI] = &document{
		URI: params.TextDocument.URI, Content: params.TextDocument.Text, Version: params.TextDocument.Version,
	}
	s.mu.Unlock()
	return s.publishDiagnostics(params.TextDocument.URI)
}

func (s *Server) handleDidChange(msg *message) error {
	var params struct {
		TextDocument   struct{ URI string }             `json:"textDocument"`
		ContentChanges []struct{ Text string }           `json:"contentChanges"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.mu.Lock()
	if doc, ok := s.docs[params.TextDocument.URI]; ok && len(params.ContentChanges) > 0 {
		doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
	}
	s.mu.Unlock()
	return s.publishDiagnostics(params.TextDocument.URI)
}

func (s *Server) handleDidClose(msg *message) error {
	var params struct {
		TextDocument struct{ URI string } `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
	return s.sendNotification("textDocument/publishDiagnostics", map[string]interface{}{
		"uri": params.TextDocument.URI, "diagnostics": []interface{}{},
	})
}

type lspRange struct {
	Start, End lspPosition
}
type lspPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}
type lspDiagnostic struct {
	Range    lspRange `json:"range"`
	Severity int      `json:"severity"`
	Message  string   `json:"message"`
	Source   string   `json:"source"`
}

func (s *Server) publishDiagnostics(uri string) error {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.sendNotification("textDocument/publishDiagnostics", map[string]interface{}{
		"uri":         uri,
		"diagnostics": s.diagnose(doc.Content),
	})
}

// diagnose runs lex+parse+semantic analysis (stopping short of compiling,
// since the LSP only needs static diagnostics) and maps every
// *errors.LangError onto the protocol's Diagnostic shape.
func (s *Server) diagnose(content string) []lspDiagnostic {
	out := []lspDiagnostic{}
	sc := lexer.New("<lsp>", content, s.dict)
	tokens := sc.All()
	p := parser.NewWithSource(tokens, content, "<lsp>")
	stmts := p.Parse()
	for _, e := range p.Errors {
		out = append(out, toDiagnostic(e))
	}
	if len(p.Errors) > 0 {
		return out
	}

	analyzer := semantic.NewAnalyzer(s.dict)
	for _, e := range analyzer.Analyze(&parser.Program{Stmts: stmts}) {
		out = append(out, toDiagnostic(e))
	}
	return out
}

func toDiagnostic(err error) lspDiagnostic {
	le, ok := err.(*errors.LangError)
	if !ok {
		return lspDiagnostic{Severity: 1, Message: err.Error(), Source: "hgs"}
	}
	line := le.Location.Line - 1
	if line < 0 {
		line = 0
	}
	col := le.Location.Column - 1
	if col < 0 {
		col = 0
	}
	return lspDiagnostic{
		Range: lspRange{
			Start: lspPosition{Line: line, Character: col},
			End:   lspPosition{Line: line, Character: col + 1},
		},
		Severity: 1,
		Message:  fmt.Sprintf("%s: %s", le.Kind, le.Message),
		Source:   "hgs",
	}
}
