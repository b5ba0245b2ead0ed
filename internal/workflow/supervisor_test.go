package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverrideDraft(t *testing.T) {
	tests := []struct {
		name        string
		draft       draft
		wantVerdict string
	}{
		{"high probability forces scam", draft{Verdict: VerdictSuspicious, Probability: 85}, VerdictScam},
		{"low probability forces not_scam", draft{Verdict: VerdictScam, Probability: 12}, VerdictNotScam},
		{"mid probability forces suspicious", draft{Verdict: VerdictScam, Probability: 50}, VerdictSuspicious},
		{"boundary 70 stays suspicious", draft{Verdict: VerdictScam, Probability: 70}, VerdictSuspicious},
		{"boundary 30 stays suspicious", draft{Verdict: VerdictNotScam, Probability: 30}, VerdictSuspicious},
		{"consistent scam untouched", draft{Verdict: VerdictScam, Probability: 95}, VerdictScam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overrideDraft(tt.draft, 4, "deep_analysis")
			assert.Equal(t, tt.wantVerdict, got.Verdict)
			// Scores survive the override.
			assert.Equal(t, tt.draft.Probability, got.Probability)
			assert.Equal(t, tt.draft.Confidence, got.Confidence)
		})
	}
}

func TestOverrideDraftExplanationMarksFallback(t *testing.T) {
	d := draft{Verdict: VerdictScam, Probability: 85, Explanation: "analyst prose"}
	got := overrideDraft(d, 3, "full_analysis")

	assert.NotEqual(t, d.Explanation, got.Explanation)
	assert.Contains(t, got.Explanation, "fallback")
	assert.Contains(t, got.Explanation, "3 evidence item(s)")
	assert.Contains(t, got.Explanation, "route full_analysis")
	assert.Contains(t, got.Explanation, VerdictScam)
}

func TestDraftFromReply(t *testing.T) {
	tests := []struct {
		name   string
		reply  map[string]interface{}
		wantOK bool
	}{
		{
			name: "valid reply",
			reply: map[string]interface{}{
				"is_scam":          "scam",
				"confidence_level": 0.9,
				"scam_probability": 88.0,
				"explanation":      "urgent payment demand",
			},
			wantOK: true,
		},
		{
			name: "unknown verdict",
			reply: map[string]interface{}{
				"is_scam":          "maybe",
				"confidence_level": 0.9,
				"scam_probability": 88.0,
			},
			wantOK: false,
		},
		{
			name: "non-numeric score",
			reply: map[string]interface{}{
				"is_scam":          "scam",
				"confidence_level": "high",
				"scam_probability": 88.0,
			},
			wantOK: false,
		},
		{"empty reply", map[string]interface{}{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := draftFromReply(tt.reply)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, "scam", d.Verdict)
				assert.InDelta(t, 0.9, d.Confidence, 0.001)
				assert.InDelta(t, 88.0, d.Probability, 0.001)
			}
		})
	}
}

func TestDraftFromReplyNormalizesFractionalProbability(t *testing.T) {
	d, ok := draftFromReply(map[string]interface{}{
		"is_scam":          "scam",
		"confidence_level": 0.9,
		"scam_probability": 0.88,
	})
	assert.True(t, ok)
	assert.InDelta(t, 88.0, d.Probability, 0.001)
}
