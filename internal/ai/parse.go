package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// rawVerdict is a decoded reply before sanitation; Score may be NaN.
type rawVerdict struct {
	Score   float64
	Comment string
}

// parseVerdict decodes a JSON reply carrying a score and a comment. Older replies
// name the comment field "commentaire"; both are read, "comment" first.
func parseVerdict(text string) (rawVerdict, error) {
	cleaned := removeQuotes(stripCodeFences(text))
	if cleaned == "" {
		return rawVerdict{}, ErrEmptyContent
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(cleaned), &body); err != nil {
		return rawVerdict{}, fmt.Errorf("ai: reply is not a JSON object: %w", err)
	}

	v := rawVerdict{Score: toNumber(body["score"])}
	if c, ok := body["comment"].(string); ok {
		v.Comment = c
	} else if c, ok := body["commentaire"].(string); ok {
		v.Comment = c
	}
	return v, nil
}

func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func removeQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
