package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestScoreAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()

	result := &models.Result{
		ID: 1,
		Answers: []models.Answer{
			{QuestionID: 1, Score: 2},
			{QuestionID: 2, Score: 1.5},
			{QuestionID: 3, Score: 1},
			{QuestionID: 4, Score: 4},
			{QuestionID: 5, Score: 3},
		},
	}

	t.Run("totals and category buckets", func(t *testing.T) {
		questions := &MockQuestionRepository{}
		questions.On("GetByID", mock.Anything, mock.Anything, uint(3)).
			Return(&models.Question{ID: 3, MaxScore: 1}, nil)
		questions.On("GetByID", mock.Anything, mock.Anything, uint(4)).
			Return(&models.Question{ID: 4, MaxScore: 5, CategoryID: uintPtr(9)}, nil)
		questions.On("GetByID", mock.Anything, mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)

		resolved := map[uint]*models.Question{
			1: {ID: 1, MaxScore: 2, CategoryID: uintPtr(8)},
			2: {ID: 2, MaxScore: 3, CategoryID: uintPtr(9)},
		}

		agg, err := NewScoreAggregator(questions, testLogger()).Aggregate(ctx, result, resolved)

		require.NoError(t, err)
		assert.Equal(t, 8.5, agg.Score)
		assert.Equal(t, 11.0, agg.MaxScore)
		assert.Equal(t, []models.CategoryScore{
			{CategoryID: "8", Score: 2, MaxScore: 2},
			{CategoryID: "9", Score: 5.5, MaxScore: 8},
		}, agg.ScoresByCategory)
		questions.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, uint(1))
	})

	t.Run("lookup error", func(t *testing.T) {
		questions := &MockQuestionRepository{}
		questions.On("GetByID", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		_, err := NewScoreAggregator(questions, testLogger()).Aggregate(ctx, result, nil)

		assert.Error(t, err)
	})

	t.Run("no answers", func(t *testing.T) {
		agg, err := NewScoreAggregator(&MockQuestionRepository{}, testLogger()).Aggregate(ctx, &models.Result{}, nil)

		require.NoError(t, err)
		assert.Zero(t, agg.Score)
		assert.Empty(t, agg.ScoresByCategory)
	})
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		maxScore float64
		expected int
	}{
		{"two thirds rounds up", 2, 3, 67},
		{"exact", 4, 5, 80},
		{"full", 5, 5, 100},
		{"zero score", 0, 5, 0},
		{"nothing to score", 0, 0, 0},
		{"positive score without max", 5, 0, 100},
		{"tiny fraction rounds up", 1, 1000, 1},
		{"NaN score", math.NaN(), 5, 0},
		{"infinite max reads as zero max", 3, math.Inf(1), 100},
		{"infinite max without score", 0, math.Inf(1), 0},
		{"infinite score", math.Inf(1), 5, 0},
		{"negative score", -1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Percentage(tt.score, tt.maxScore))
		})
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		score, maxScore, expected float64
	}{
		{-1, 3, 0},
		{4, 3, 3},
		{2, 3, 2},
		{math.NaN(), 3, 0},
		{math.Inf(1), 3, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, clampScore(tt.score, tt.maxScore))
	}
}
