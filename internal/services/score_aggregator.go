package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
)

type Aggregate struct {
	Score            float64
	MaxScore         float64
	ScoresByCategory []models.CategoryScore
}

// ScoreAggregator sums answer scores into a total and per-category subtotals.
type ScoreAggregator struct {
	questions repositories.QuestionRepository
	logger    *slog.Logger
}

func NewScoreAggregator(questions repositories.QuestionRepository, logger *slog.Logger) *ScoreAggregator {
	return &ScoreAggregator{questions: questions, logger: logger}
}

// Aggregate walks every stored answer. Questions already loaded by the caller are taken
// from resolved; the others are looked up. Answers whose question no longer exists are
// left out of every total.
func (a *ScoreAggregator) Aggregate(ctx context.Context, result *models.Result, resolved map[uint]*models.Question) (*Aggregate, error) {
	agg := &Aggregate{}
	buckets := make(map[string]*models.CategoryScore)
	var order []string

	for _, answer := range result.Answers {
		question, ok := resolved[answer.QuestionID]
		if !ok {
			q, err := a.questions.GetByID(ctx, nil, answer.QuestionID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					a.logger.Warn("Question missing during aggregation, skipping answer",
						"result_id", result.ID,
						"question_id", answer.QuestionID)
					continue
				}
				return nil, fmt.Errorf("failed to get question %d: %w", answer.QuestionID, err)
			}
			question = q
		}

		score := finiteOrZero(answer.Score)
		maxScore := finiteOrZero(question.MaxScore)
		agg.Score += score
		agg.MaxScore += maxScore

		key := question.CategoryKey()
		if key == "" {
			continue
		}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &models.CategoryScore{CategoryID: key}
			buckets[key] = bucket
			order = append(order, key)
		}
		bucket.Score += score
		bucket.MaxScore += maxScore
	}

	agg.ScoresByCategory = make([]models.CategoryScore, 0, len(order))
	for _, key := range order {
		agg.ScoresByCategory = append(agg.ScoresByCategory, *buckets[key])
	}
	return agg, nil
}

// Percentage is ceil(score/maxScore*100). Non-finite inputs are read as 0 first, then a
// zero maxScore yields 100 for any positive score and 0 otherwise.
func Percentage(score, maxScore float64) int {
	score = finiteOrZero(score)
	maxScore = finiteOrZero(maxScore)

	var p float64
	switch {
	case maxScore > 0:
		p = math.Ceil(score * 100 / maxScore)
	case score > 0:
		p = 100
	}

	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return int(p)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// clampScore keeps a score within [0, maxScore], mapping non-finite values to 0.
func clampScore(score, maxScore float64) float64 {
	score = finiteOrZero(score)
	maxScore = finiteOrZero(maxScore)
	if score < 0 {
		return 0
	}
	if maxScore >= 0 && score > maxScore {
		return maxScore
	}
	return score
}
