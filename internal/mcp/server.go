package mcp

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gorilla/websocket"
)

// Tool is a Go tool hosted behind the WebSocket protocol. Names are
// qualified ("server.tool") so one endpoint can serve every logical server.
type Tool interface {
	Name() string
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// ToolFunc adapts a function to the Tool interface.
type ToolFunc struct {
	ToolName string
	Fn       func(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

func (t ToolFunc) Name() string { return t.ToolName }

func (t ToolFunc) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return t.Fn(ctx, args)
}

// ToolSet is a thread-safe collection of hosted tools.
type ToolSet struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolSet creates an empty tool set.
func NewToolSet() *ToolSet {
	return &ToolSet{tools: make(map[string]Tool)}
}

// Register adds a tool, replacing any previous tool with the same name.
func (s *ToolSet) Register(tool Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[tool.Name()] = tool
}

// Get returns a tool by qualified name.
func (s *ToolSet) Get(name string) (Tool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tools[name]
	return t, ok
}

// Names returns all registered tool names, sorted.
func (s *ToolSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tools))
	for n := range s.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Server serves a ToolSet over the WebSocket protocol. One connection may
// carry many sequential requests; each request gets exactly one reply.
type Server struct {
	tools    *ToolSet
	upgrader websocket.Upgrader
}

// NewServer creates a tool server for the given tool set.
func NewServer(tools *ToolSet) *Server {
	return &Server{tools: tools}
}

// ServeHTTP upgrades the connection and answers requests until the peer
// disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("tool_server_upgrade_failed")
		return
	}
	defer conn.Close()

	for {
		var req request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if err := conn.WriteJSON(s.handle(r.Context(), &req)); err != nil {
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req *request) interface{} {
	switch req.Type {
	case TypeListTools:
		return map[string]interface{}{"type": TypeTools, "tools": s.tools.Names()}

	case TypeCallTool:
		tool, ok := s.tools.Get(req.Name)
		if !ok {
			return map[string]interface{}{"type": TypeToolResult, "ok": false, "error": "unknown tool: " + req.Name}
		}
		data, err := tool.Execute(ctx, req.Arguments)
		if err != nil {
			log.Debug().Str("tool", req.Name).Err(err).Msg("tool_execution_failed")
			return map[string]interface{}{"type": TypeToolResult, "ok": false, "error": "tool execution failed: " + err.Error()}
		}
		return map[string]interface{}{"type": TypeToolResult, "ok": true, "data": data}

	default:
		return map[string]interface{}{"type": TypeError, "message": "unknown request type: " + req.Type}
	}
}
