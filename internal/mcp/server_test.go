package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUnknownRequestType(t *testing.T) {
	s := NewServer(NewToolSet())
	out := s.handle(context.Background(), &request{Type: "subscribe"})
	frame, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, TypeError, frame["type"])
	assert.Contains(t, frame["message"], "subscribe")
}

func TestToolSetRegisterReplaces(t *testing.T) {
	ts := NewToolSet()
	ts.Register(ToolFunc{ToolName: "a.b", Fn: func(context.Context, map[string]interface{}) (interface{}, error) {
		return "old", nil
	}})
	ts.Register(ToolFunc{ToolName: "a.b", Fn: func(context.Context, map[string]interface{}) (interface{}, error) {
		return "new", nil
	}})

	tool, ok := ts.Get("a.b")
	require.True(t, ok)
	out, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "new", out)
	assert.Equal(t, []string{"a.b"}, ts.Names())
}
