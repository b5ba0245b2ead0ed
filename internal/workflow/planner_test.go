package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlannedCallsFiltersWhitelist(t *testing.T) {
	reply := map[string]interface{}{
		"calls": []interface{}{
			map[string]interface{}{"name": "extraction-tools.extract_link"},
			map[string]interface{}{"name": "gmail-tools.mark_as_scam"}, // not a probe
			map[string]interface{}{"name": "extraction-tools.extract_number",
				"arguments": map[string]interface{}{"document": "custom"}},
			"not an object",
			map[string]interface{}{"name": "rm -rf"},
		},
	}

	calls := plannedCalls(reply, "the document")
	require.Len(t, calls, 2)
	assert.Equal(t, "extraction-tools.extract_link", calls[0].Name())
	assert.Equal(t, "the document", calls[0].Args["document"])
	assert.Equal(t, "extraction-tools.extract_number", calls[1].Name())
	assert.Equal(t, "custom", calls[1].Args["document"])
}

func TestPlannedCallsEmptyReply(t *testing.T) {
	assert.Empty(t, plannedCalls(map[string]interface{}{}, "doc"))
	assert.Empty(t, plannedCalls(map[string]interface{}{"calls": "nope"}, "doc"))
}

func TestPlannerToolNamesSorted(t *testing.T) {
	names := plannerToolNames()
	require.Len(t, names, 3)
	assert.Equal(t, []string{
		"extraction-tools.extract_link",
		"extraction-tools.extract_number",
		"extraction-tools.extract_organisation",
	}, names)
}
