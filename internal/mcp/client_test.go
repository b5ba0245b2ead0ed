package mcp

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEndpoint hosts the given tools over the real protocol and returns a
// client whose servers all resolve to it.
func newTestEndpoint(t *testing.T, tools *ToolSet) *Client {
	t.Helper()
	srv := httptest.NewServer(NewServer(tools))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return NewClient(NewRegistry(wsURL, 2*time.Second, nil))
}

func TestInvokeRoundTrip(t *testing.T) {
	tools := NewToolSet()
	tools.Register(ToolFunc{
		ToolName: "rag-tools.call_rag",
		Fn: func(_ context.Context, args map[string]interface{}) (interface{}, error) {
			assert.Equal(t, "suspicious text", args["document"])
			return map[string]interface{}{"confidence_level": 0.9}, nil
		},
	})
	client := newTestEndpoint(t, tools)

	out, err := client.Invoke(context.Background(), ToolCall{
		Server: "rag-tools",
		Tool:   "call_rag",
		Args:   map[string]interface{}{"document": "suspicious text"},
	})
	require.NoError(t, err)
	result, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.9, result["confidence_level"])
}

func TestInvokeToolFailure(t *testing.T) {
	tools := NewToolSet()
	tools.Register(ToolFunc{
		ToolName: "extraction-tools.extract_link",
		Fn: func(context.Context, map[string]interface{}) (interface{}, error) {
			return nil, errors.New("regex exploded")
		},
	})
	client := newTestEndpoint(t, tools)

	_, err := client.Invoke(context.Background(), ToolCall{Server: "extraction-tools", Tool: "extract_link"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regex exploded")
	assert.Contains(t, err.Error(), "extraction-tools.extract_link")
}

func TestInvokeUnknownTool(t *testing.T) {
	client := newTestEndpoint(t, NewToolSet())

	_, err := client.Invoke(context.Background(), ToolCall{Server: "rag-tools", Tool: "no_such_tool"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestInvokeUnknownServer(t *testing.T) {
	client := newTestEndpoint(t, NewToolSet())

	_, err := client.Invoke(context.Background(), ToolCall{Server: "mystery", Tool: "anything"})
	require.ErrorIs(t, err, ErrUnknownServer)
}

func TestInvokeUnreachableEndpoint(t *testing.T) {
	client := NewClient(NewRegistry("ws://127.0.0.1:1", 200*time.Millisecond, nil))

	_, err := client.Invoke(context.Background(), ToolCall{Server: "rag-tools", Tool: "call_rag"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialing")
}

func TestListTools(t *testing.T) {
	tools := NewToolSet()
	tools.Register(ToolFunc{ToolName: "b.tool", Fn: func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil }})
	tools.Register(ToolFunc{ToolName: "a.tool", Fn: func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil }})
	client := newTestEndpoint(t, tools)

	names, err := client.ListTools(context.Background(), "rag-tools")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tool", "b.tool"}, names)
}

func TestToolCallName(t *testing.T) {
	call := ToolCall{Server: "gmail-tools", Tool: "mark_as_scam"}
	assert.Equal(t, "gmail-tools.mark_as_scam", call.Name())
}

func TestRegistryOverrides(t *testing.T) {
	r := NewRegistry("ws://default:1", time.Second, map[string]string{
		"rag-tools": "ws://rag:2",
		"custom":    "ws://custom:3",
	})

	ep, err := r.Resolve("rag-tools")
	require.NoError(t, err)
	assert.Equal(t, "ws://rag:2", ep.URL)

	ep, err = r.Resolve("gmail-tools")
	require.NoError(t, err)
	assert.Equal(t, "ws://default:1", ep.URL)

	// Overrides introduce servers beyond the defaults.
	ep, err = r.Resolve("custom")
	require.NoError(t, err)
	assert.Equal(t, "ws://custom:3", ep.URL)

	_, err = r.Resolve("unknown")
	assert.ErrorIs(t, err, ErrUnknownServer)

	assert.Contains(t, r.Servers(), "custom")
	assert.Contains(t, r.Servers(), "data-processor")
}
