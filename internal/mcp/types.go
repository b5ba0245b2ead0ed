// Package mcp implements the tool RPC layer: a text-framed WebSocket
// protocol with one request per message and one reply per request.
//
// Request:  {"type":"call_tool","name":"<tool>","arguments":{...}}
// Success:  {"type":"tool_result","ok":true,"data":<any>}
// Failure:  {"type":"tool_result","ok":false,"error":"<message>"}
// Discovery: {"type":"list_tools"} → {"type":"tools","tools":[...]}
// Anything else: {"type":"error","message":"<description>"}
//
// The Client dials a tool server per call and normalizes every failure mode
// (dial error, bad frame, explicit failure, timeout) into an ordinary error.
// The Server hosts Go tools behind the same protocol.
package mcp

import (
	"encoding/json"
	"errors"
)

// Message types on the wire.
const (
	TypeCallTool   = "call_tool"
	TypeToolResult = "tool_result"
	TypeListTools  = "list_tools"
	TypeTools      = "tools"
	TypeError      = "error"
)

// Domain errors for the mcp package.
var (
	ErrUnknownServer = errors.New("unknown tool server")
	ErrBadReply      = errors.New("unexpected reply shape")
)

// ToolCall describes one remote invocation. Never mutated after creation.
type ToolCall struct {
	Server string                 `json:"server"`
	Tool   string                 `json:"tool"`
	Args   map[string]interface{} `json:"args,omitempty"`
}

// Name returns the qualified "server.tool" name used in evidence and logs.
func (c ToolCall) Name() string {
	return c.Server + "." + c.Tool
}

// request is the wire frame sent to a tool server.
type request struct {
	Type      string                 `json:"type"`
	Name      string                 `json:"name,omitempty"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// reply is the wire frame received from a tool server. Fields for all reply
// types are merged; Type discriminates.
type reply struct {
	Type    string          `json:"type"`
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Tools   []string        `json:"tools,omitempty"`
	Message string          `json:"message,omitempty"`
}
