package ai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		score   float64
		comment string
		wantErr bool
	}{
		{name: "plain", input: `{"score": 2, "comment": "ok"}`, score: 2, comment: "ok"},
		{name: "legacy comment field", input: `{"score": 1.5, "commentaire": "correct"}`, score: 1.5, comment: "correct"},
		{name: "comment wins over commentaire", input: `{"score": 1, "comment": "a", "commentaire": "b"}`, score: 1, comment: "a"},
		{name: "string score", input: `{"score": " 4 "}`, score: 4},
		{name: "code fence", input: "```json\n{\"score\": 3, \"comment\": \"x\"}\n```", score: 3, comment: "x"},
		{name: "surrounding quotes", input: `'{"score": 1}'`, score: 1},
		{name: "not json", input: "I think 3/5", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseVerdict(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.score, v.Score)
			assert.Equal(t, tt.comment, v.Comment)
		})
	}

	t.Run("missing score is NaN", func(t *testing.T) {
		v, err := parseVerdict(`{"comment": "no score"}`)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(v.Score))
	})
}
