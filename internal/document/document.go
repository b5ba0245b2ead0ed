// Package document models the inbound document for one workflow run as a
// tagged union over its possible representations. The representation is
// resolved exactly once, at construction; downstream stages branch on Kind
// instead of re-inspecting the raw input.
package document

import (
	"encoding/base64"
	"fmt"
)

// Kind classifies the document representation.
type Kind int

const (
	// KindRecord is a structured key/value record (sender, subject, body, ...).
	KindRecord Kind = iota
	// KindBytes is a raw byte blob (e.g. a PDF attachment).
	KindBytes
	// KindText is plain text ready for analysis.
	KindText
	// KindUnsupported is anything the pipeline cannot normalize.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	default:
		return "unsupported"
	}
}

// UnsupportedError reports an input representation the normalizer cannot
// handle. The pipeline carries it through to a degraded-but-valid result
// instead of aborting the run.
type UnsupportedError struct {
	Input interface{}
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported document type %T", e.Input)
}

// Document is the immutable input to one workflow run.
type Document struct {
	kind   Kind
	record map[string]interface{}
	raw    []byte
	text   string
	input  interface{} // original value, kept for unsupported-error reporting
}

// FromRecord wraps a structured record document.
func FromRecord(record map[string]interface{}) *Document {
	return &Document{kind: KindRecord, record: record}
}

// FromBytes wraps a raw byte blob document.
func FromBytes(raw []byte) *Document {
	return &Document{kind: KindBytes, raw: raw}
}

// FromText wraps a plain-text document.
func FromText(text string) *Document {
	return &Document{kind: KindText, text: text}
}

// New resolves an arbitrary input into a Document. This is the single place
// runtime type inspection happens.
func New(input interface{}) *Document {
	switch v := input.(type) {
	case *Document:
		return v
	case map[string]interface{}:
		return FromRecord(v)
	case []byte:
		return FromBytes(v)
	case string:
		return FromText(v)
	default:
		return &Document{kind: KindUnsupported, input: input}
	}
}

// Kind returns the resolved representation.
func (d *Document) Kind() Kind { return d.kind }

// Text returns the plain text for KindText documents, else "".
func (d *Document) Text() string { return d.text }

// Record returns the structured record for KindRecord documents, else nil.
func (d *Document) Record() map[string]interface{} { return d.record }

// Len returns the approximate content length, used for run metrics.
func (d *Document) Len() int {
	switch d.kind {
	case KindRecord:
		n := 0
		for k, v := range d.record {
			n += len(k) + len(fmt.Sprint(v))
		}
		return n
	case KindBytes:
		return len(d.raw)
	default:
		return len(d.text)
	}
}

// MessageID returns the source message identifier for record documents, so
// outcome side effects (labeling) can reference the original message.
// Returns "" when no identifier is present.
func (d *Document) MessageID() string {
	if d.kind != KindRecord {
		return ""
	}
	for _, key := range []string{"id", "message_id", "messageId"} {
		if v, ok := d.record[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Field returns a string field from a record document, or "".
func (d *Document) Field(key string) string {
	if d.kind != KindRecord {
		return ""
	}
	v, _ := d.record[key].(string)
	return v
}

// EncodedBytes returns the raw blob base64-encoded for transport to the
// extraction tool.
func (d *Document) EncodedBytes() string {
	return base64.StdEncoding.EncodeToString(d.raw)
}
