package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	mgotel "github.com/veridex-io/mailguard/internal/otel"
)

var tracer = mgotel.Tracer("github.com/veridex-io/mailguard/internal/mcp")

// Client invokes tools over the WebSocket protocol. It is stateless and
// safe for concurrent use: each invocation opens its own connection.
type Client struct {
	registry *Registry
	dialer   *websocket.Dialer
}

// NewClient creates a tool client over the given registry.
func NewClient(registry *Registry) *Client {
	return &Client{
		registry: registry,
		dialer:   websocket.DefaultDialer,
	}
}

// Servers returns the names of the configured tool servers.
func (c *Client) Servers() []string {
	return c.registry.Servers()
}

// Invoke sends one call_tool request and awaits exactly one reply within the
// endpoint's timeout. Connection failures, malformed frames, explicit tool
// failures, and timeouts all surface as ordinary errors; the caller decides
// whether an error is fatal.
func (c *Client) Invoke(ctx context.Context, call ToolCall) (interface{}, error) {
	ctx, span := tracer.Start(ctx, "mcp.invoke",
		trace.WithAttributes(
			mgotel.ToolServer.String(call.Server),
			mgotel.ToolName.String(call.Tool),
		))
	defer span.End()

	ep, err := c.registry.Resolve(call.Server)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rep, err := c.roundTrip(ctx, ep, request{
		Type:      TypeCallTool,
		Name:      call.Name(),
		Arguments: call.Args,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("calling %s: %w", call.Name(), err)
	}

	if rep.Type != TypeToolResult {
		err := fmt.Errorf("%w: got %q, want %q", ErrBadReply, rep.Type, TypeToolResult)
		span.RecordError(err)
		return nil, err
	}
	if !rep.OK {
		msg := rep.Error
		if msg == "" {
			msg = "tool failed"
		}
		span.SetAttributes(attribute.String("tool.error", msg))
		return nil, fmt.Errorf("%s: %s", call.Name(), msg)
	}

	var data interface{}
	if len(rep.Data) > 0 {
		if err := json.Unmarshal(rep.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: decoding data: %v", ErrBadReply, err)
		}
	}
	return data, nil
}

// ListTools sends a discovery request and returns the qualified tool names
// the server exposes.
func (c *Client) ListTools(ctx context.Context, server string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "mcp.list_tools",
		trace.WithAttributes(mgotel.ToolServer.String(server)))
	defer span.End()

	ep, err := c.registry.Resolve(server)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rep, err := c.roundTrip(ctx, ep, request{Type: TypeListTools})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("listing tools on %s: %w", server, err)
	}
	if rep.Type != TypeTools {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrBadReply, rep.Type, TypeTools)
	}
	return rep.Tools, nil
}

// roundTrip opens a connection, writes one frame, and reads one frame within
// the endpoint timeout. The read deadline also bounds a server that accepts
// the request but never answers.
func (c *Client) roundTrip(ctx context.Context, ep Endpoint, req request) (*reply, error) {
	dialCtx, cancel := context.WithTimeout(ctx, ep.Timeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, ep.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", ep.URL, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(ep.Timeout)
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	_ = conn.SetReadDeadline(deadline)
	var rep reply
	if err := conn.ReadJSON(&rep); err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	return &rep, nil
}
