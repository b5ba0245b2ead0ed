package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetrievalScores(t *testing.T) {
	tests := []struct {
		name     string
		out      interface{}
		wantConf float64
		wantProb float64
		wantOK   bool
	}{
		{
			name: "flat object",
			out: map[string]interface{}{
				"confidence_level": 0.8,
				"scam_probability": 70.0,
			},
			wantConf: 0.8, wantProb: 70, wantOK: true,
		},
		{
			name: "results are averaged",
			out: map[string]interface{}{
				"results": []interface{}{
					map[string]interface{}{"confidence_level": 0.9, "scam_probability": 90.0},
					map[string]interface{}{"confidence_level": 0.7, "scam_probability": 50.0},
				},
			},
			wantConf: 0.8, wantProb: 70, wantOK: true,
		},
		{
			name: "malformed results entries are skipped",
			out: map[string]interface{}{
				"results": []interface{}{
					"garbage",
					map[string]interface{}{"confidence_level": 0.6, "scam_probability": 40.0},
					map[string]interface{}{"confidence_level": "high"},
				},
			},
			wantConf: 0.6, wantProb: 40, wantOK: true,
		},
		{
			name:   "empty results",
			out:    map[string]interface{}{"results": []interface{}{}},
			wantOK: false,
		},
		{
			name:   "missing fields",
			out:    map[string]interface{}{"confidence_level": 0.8},
			wantOK: false,
		},
		{
			name:   "not an object",
			out:    "nothing similar found",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, prob, ok := retrievalScores(tt.out)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantConf, conf, 0.001)
				assert.InDelta(t, tt.wantProb, prob, 0.001)
			}
		})
	}
}

func TestNormalizeProbability(t *testing.T) {
	assert.InDelta(t, 85.0, normalizeProbability(0.85), 0.001)
	assert.InDelta(t, 85.0, normalizeProbability(85), 0.001)
	assert.InDelta(t, 100.0, normalizeProbability(250), 0.001)
	assert.InDelta(t, 0.0, normalizeProbability(0), 0.001)
	assert.InDelta(t, 0.0, normalizeProbability(-5), 0.001)
	assert.InDelta(t, 100.0, normalizeProbability(1.0), 0.001)
}
