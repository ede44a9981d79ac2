package langserver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// StdioServer speaks Content-Length-framed JSON-RPC over a pair of
// streams, grounded on the teacher's internal/lsp.Server.handleMessage
// framing loop, narrowed to the subset of methods a diagnostics-only
// server needs: initialize, textDocument/didOpen, textDocument/
// didChange, textDocument/didClose, shutdown.
type StdioServer struct {
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex
	doc map[string]string
}

// NewStdioServer wraps in/out for editor integration (the transport
// `ringc lsp` uses by default).
func NewStdioServer(in io.Reader, out io.Writer) *StdioServer {
	return &StdioServer{in: bufio.NewReader(in), out: out, doc: map[string]string{}}
}

// Serve reads one framed message at a time until in is exhausted or a
// `shutdown` request arrives.
func (s *StdioServer) Serve() error {
	for {
		msg, err := s.readMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.dispatch(msg); err != nil {
			return err
		}
		if msg.Method == "shutdown" {
			return nil
		}
	}
}

type rpcMessage struct {
	ID     *json.RawMessage `json:"id,omitempty"`
	Method string           `json:"method"`
	Params json.RawMessage  `json:"params"`
}

func (s *StdioServer) readMessage() (*rpcMessage, error) {
	length := -1
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			length = n
		}
	}
	if length < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(s.in, body); err != nil {
		return nil, err
	}
	var msg rpcMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *StdioServer) dispatch(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.respond(msg.ID, map[string]interface{}{
			"capabilities": map[string]interface{}{"textDocumentSync": 1},
		})
	case "textDocument/didOpen":
		var p struct {
			TextDocument struct {
				URI  string `json:"uri"`
				Text string `json:"text"`
			} `json:"textDocument"`
		}
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		s.mu.Lock()
		s.doc[p.TextDocument.URI] = p.TextDocument.Text
		s.mu.Unlock()
		return s.publish(p.TextDocument.URI)
	case "textDocument/didChange":
		var p struct {
			TextDocument struct {
				URI string `json:"uri"`
			} `json:"textDocument"`
			ContentChanges []struct {
				Text string `json:"text"`
			} `json:"contentChanges"`
		}
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		if len(p.ContentChanges) == 0 {
			return nil
		}
		s.mu.Lock()
		s.doc[p.TextDocument.URI] = p.ContentChanges[len(p.ContentChanges)-1].Text
		s.mu.Unlock()
		return s.publish(p.TextDocument.URI)
	case "textDocument/didClose":
		var p struct {
			TextDocument struct {
				URI string `json:"uri"`
			} `json:"textDocument"`
		}
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		s.mu.Lock()
		delete(s.doc, p.TextDocument.URI)
		s.mu.Unlock()
		return nil
	case "shutdown":
		return s.respond(msg.ID, nil)
	default:
		return nil
	}
}

func (s *StdioServer) publish(uri string) error {
	s.mu.Lock()
	content := s.doc[uri]
	s.mu.Unlock()
	return s.notify("textDocument/publishDiagnostics", map[string]interface{}{
		"uri":         uri,
		"diagnostics": Diagnose(uri, content),
	})
}

func (s *StdioServer) respond(id *json.RawMessage, result interface{}) error {
	return s.write(map[string]interface{}{"jsonrpc": "2.0", "id": id, "result": result})
}

func (s *StdioServer) notify(method string, params interface{}) error {
	return s.write(map[string]interface{}{"jsonrpc": "2.0", "method": method, "params": params})
}

func (s *StdioServer) write(v interface{}) error {
	content, err := json.Marshal(v)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(content))
	if _, err := io.WriteString(s.out, header); err != nil {
		return err
	}
	_, err = s.out.Write(content)
	return err
}
