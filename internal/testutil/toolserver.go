package testutil

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/veridex-io/mailguard/internal/mcp"
)

// ToolServer hosts a scripted set of tools over the real WebSocket protocol
// for integration-style tests.
type ToolServer struct {
	server *httptest.Server
	tools  *mcp.ToolSet

	mu    sync.Mutex
	calls []string
}

// NewToolServer starts a tool server with the given canned outcomes:
// qualified tool name → the value its calls return. Register failures with
// FailTool. Caller must call Close (or register t.Cleanup(ts.Close)).
func NewToolServer(outcomes map[string]interface{}) *ToolServer {
	ts := &ToolServer{tools: mcp.NewToolSet()}
	for name, outcome := range outcomes {
		ts.stub(name, outcome, nil)
	}
	ts.server = httptest.NewServer(mcp.NewServer(ts.tools))
	return ts
}

// FailTool makes the named tool return the given error message.
func (ts *ToolServer) FailTool(name, message string) {
	ts.stub(name, nil, errors.New(message))
}

// StubTool sets or replaces the canned outcome for the named tool.
func (ts *ToolServer) StubTool(name string, outcome interface{}) {
	ts.stub(name, outcome, nil)
}

func (ts *ToolServer) stub(name string, outcome interface{}, err error) {
	ts.tools.Register(mcp.ToolFunc{
		ToolName: name,
		Fn: func(context.Context, map[string]interface{}) (interface{}, error) {
			ts.mu.Lock()
			ts.calls = append(ts.calls, name)
			ts.mu.Unlock()
			if err != nil {
				return nil, err
			}
			return outcome, nil
		},
	})
}

// URL returns the ws:// endpoint of the server.
func (ts *ToolServer) URL() string {
	return "ws" + strings.TrimPrefix(ts.server.URL, "http")
}

// Calls returns the qualified tool names invoked so far, in order.
func (ts *ToolServer) Calls() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.calls...)
}

// CallCount returns how many invocations the server has handled.
func (ts *ToolServer) CallCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.calls)
}

// Close shuts the server down.
func (ts *ToolServer) Close() {
	ts.server.Close()
}

// Client returns an mcp.Client whose every server resolves to this test
// server.
func (ts *ToolServer) Client() *mcp.Client {
	return mcp.NewClient(mcp.NewRegistry(ts.URL(), 0, nil))
}
