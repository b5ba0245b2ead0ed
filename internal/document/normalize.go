package document

import (
	"github.com/veridex-io/mailguard/internal/mcp"
)

// Extraction tool bindings. Structured records and byte blobs each map to
// one extraction call; plain text needs none.
const (
	extractionServer = "data-processor"
	recordTool       = "process_email"
	bytesTool        = "process_pdf"
)

// Normalize emits the zero-or-one tool calls needed to turn the document
// into plain text. Dispatch follows the resolved Kind in priority order:
// record → email extraction, bytes → binary extraction, text → pass through.
// Unsupported documents return an *UnsupportedError; callers degrade the run
// rather than abort it.
func Normalize(d *Document) ([]mcp.ToolCall, error) {
	switch d.kind {
	case KindRecord:
		return []mcp.ToolCall{{
			Server: extractionServer,
			Tool:   recordTool,
			Args:   map[string]interface{}{"document": d.record},
		}}, nil
	case KindBytes:
		return []mcp.ToolCall{{
			Server: extractionServer,
			Tool:   bytesTool,
			Args:   map[string]interface{}{"document": d.EncodedBytes()},
		}}, nil
	case KindText:
		return nil, nil
	default:
		return nil, &UnsupportedError{Input: d.input}
	}
}
