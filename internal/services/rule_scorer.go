package services

import (
	"strconv"
	"strings"

	"github.com/SAP-F-2025/correction-service/internal/models"
)

type RuleScore struct {
	Score   float64
	Comment string
}

// RuleScorer grades single-answer multiple choice questions without any external call.
type RuleScorer struct{}

func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Score compares the trimmed answer with the only valid option, either by its text or
// by its zero-based index. The comparison is exact and case-sensitive.
// ok is false when the question does not have exactly one valid option.
func (r *RuleScorer) Score(question *models.Question, answer string) (RuleScore, bool) {
	index, ok := question.SingleValidOption()
	if !ok {
		return RuleScore{}, false
	}

	given := strings.TrimSpace(answer)
	expected := strings.TrimSpace(question.Options[index].Text)

	if given == expected || given == strconv.Itoa(index) {
		return RuleScore{Score: question.MaxScore}, true
	}
	return RuleScore{Score: 0}, true
}
