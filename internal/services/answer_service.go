package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
)

// AnswerService records candidate answers and triggers correction once the last one is in.
type AnswerService interface {
	RecordAnswer(ctx context.Context, resultID, questionID uint, response string) (*models.Result, error)
}

type answerService struct {
	repo   repositories.Repository
	queue  CorrectionQueuer
	logger *slog.Logger
	now    func() time.Time
}

func NewAnswerService(repo repositories.Repository, queue CorrectionQueuer, logger *slog.Logger) AnswerService {
	return &answerService{
		repo:   repo,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

func (s *answerService) RecordAnswer(ctx context.Context, resultID, questionID uint, response string) (*models.Result, error) {
	result, err := s.repo.Result().GetByID(ctx, nil, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrResultNotFound, resultID)
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	if result.State == models.ResultFinish {
		return nil, NewBusinessRuleError("result_open", ErrResultFinished, map[string]interface{}{"result_id": resultID})
	}

	test, err := s.repo.Test().GetByID(ctx, nil, result.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrTestNotFound, result.TestID)
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	questionIDs := make([]uint, 0, len(test.Questions))
	for _, tq := range test.Questions {
		questionIDs = append(questionIDs, tq.QuestionID)
	}
	if !slices.Contains(questionIDs, questionID) {
		return nil, NewBusinessRuleError("question_in_test", ErrQuestionNotInTest, map[string]interface{}{
			"test_id":     test.ID,
			"question_id": questionID,
		})
	}

	wasComplete := answeredAll(result, questionIDs)
	if existing := result.FindAnswer(questionID); existing != nil {
		existing.Response = response
	} else {
		result.Answers = append(result.Answers, models.Answer{QuestionID: questionID, Response: response})
	}
	if result.State == models.ResultPending || result.State == "" {
		result.State = models.ResultInProgress
		now := s.now()
		result.StartTime = &now
	}

	if err := s.repo.Result().SaveAnswers(ctx, nil, result); err != nil {
		if errors.Is(err, repositories.ErrResultClosed) {
			return nil, NewBusinessRuleError("result_open", ErrResultFinished, map[string]interface{}{"result_id": resultID})
		}
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	// Only the answer that completes the set queues a correction. Replacing an answer
	// afterwards is picked up by that pending run or a manual trigger.
	if wasComplete || !answeredAll(result, questionIDs) {
		return result, nil
	}

	s.logger.Info("Last answer recorded, requesting correction", "result_id", result.ID)
	if err := s.queue.Enqueue(ctx, NewCorrectionRequest(result)); err != nil {
		return result, fmt.Errorf("answer saved but correction could not be queued: %w", err)
	}
	return result, nil
}

func answeredAll(result *models.Result, questionIDs []uint) bool {
	for _, id := range questionIDs {
		if result.FindAnswer(id) == nil {
			return false
		}
	}
	return len(questionIDs) > 0
}
