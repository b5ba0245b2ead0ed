package document

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolvesKinds(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  Kind
	}{
		{"record", map[string]interface{}{"subject": "hi"}, KindRecord},
		{"bytes", []byte{0x25, 0x50, 0x44, 0x46}, KindBytes},
		{"text", "hello", KindText},
		{"int", 42, KindUnsupported},
		{"nil", nil, KindUnsupported},
		{"slice of strings", []string{"a"}, KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.input).Kind())
		})
	}
}

func TestNewPassesThroughDocument(t *testing.T) {
	d := FromText("hi")
	assert.Same(t, d, New(d))
}

func TestMessageID(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]interface{}
		want   string
	}{
		{"id field", map[string]interface{}{"id": "m1"}, "m1"},
		{"message_id field", map[string]interface{}{"message_id": "m2"}, "m2"},
		{"messageId field", map[string]interface{}{"messageId": "m3"}, "m3"},
		{"id wins over message_id", map[string]interface{}{"id": "m1", "message_id": "m2"}, "m1"},
		{"non-string id skipped", map[string]interface{}{"id": 7, "message_id": "m2"}, "m2"},
		{"absent", map[string]interface{}{"subject": "x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromRecord(tt.record).MessageID())
		})
	}

	assert.Empty(t, FromText("hello").MessageID())
}

func TestEncodedBytes(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFF}
	d := FromBytes(raw)
	decoded, err := base64.StdEncoding.DecodeString(d.EncodedBytes())
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestLen(t *testing.T) {
	assert.Equal(t, 5, FromText("hello").Len())
	assert.Equal(t, 3, FromBytes([]byte{1, 2, 3}).Len())
	assert.Greater(t, FromRecord(map[string]interface{}{"subject": "hi"}).Len(), 0)
}

func TestUnsupportedErrorNamesType(t *testing.T) {
	_, err := Normalize(New(3.14))
	require.Error(t, err)
	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Contains(t, err.Error(), "float64")
}
