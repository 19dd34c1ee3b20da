package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func twoQuestionTest() *models.Test {
	return &models.Test{
		ID:    7,
		Title: "Go basics",
		Questions: []models.TestQuestion{
			{QuestionID: 1, Order: 1},
			{QuestionID: 2, Order: 2},
		},
	}
}

func TestAnswerService_RecordAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("first answer starts the result", func(t *testing.T) {
		repo := newMockRepository()
		queue := &MockCorrectionQueuer{}
		result := &models.Result{ID: 100, TestID: 7, State: models.ResultPending}
		repo.results.On("GetByID", mock.Anything, mock.Anything, uint(100)).Return(result, nil)
		repo.tests.On("GetByID", mock.Anything, mock.Anything, uint(7)).Return(twoQuestionTest(), nil)
		repo.results.On("SaveAnswers", mock.Anything, mock.Anything, result).Return(nil).Once()

		got, err := NewAnswerService(repo, queue, testLogger()).RecordAnswer(ctx, 100, 1, "Paris")

		require.NoError(t, err)
		assert.Equal(t, models.ResultInProgress, got.State)
		assert.NotNil(t, got.StartTime)
		assert.Equal(t, []models.Answer{{QuestionID: 1, Response: "Paris"}}, []models.Answer(got.Answers))
		queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
		repo.assertExpectations(t)
	})

	t.Run("last answer queues a correction", func(t *testing.T) {
		repo := newMockRepository()
		queue := &MockCorrectionQueuer{}
		result := &models.Result{
			ID: 100, TestID: 7, State: models.ResultInProgress,
			Answers: []models.Answer{{QuestionID: 1, Response: "Paris"}},
		}
		repo.results.On("GetByID", mock.Anything, mock.Anything, uint(100)).Return(result, nil)
		repo.tests.On("GetByID", mock.Anything, mock.Anything, uint(7)).Return(twoQuestionTest(), nil)
		repo.results.On("SaveAnswers", mock.Anything, mock.Anything, result).Return(nil)
		queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(req *models.CorrectionRequest) bool {
			return req.ResultID == 100 && len(req.Answers) == 2
		})).Return(nil).Once()

		_, err := NewAnswerService(repo, queue, testLogger()).RecordAnswer(ctx, 100, 2, "goroutines")

		require.NoError(t, err)
		queue.AssertExpectations(t)
	})

	t.Run("answering again replaces the response", func(t *testing.T) {
		repo := newMockRepository()
		queue := &MockCorrectionQueuer{}
		result := &models.Result{
			ID: 100, TestID: 7, State: models.ResultInProgress,
			Answers: []models.Answer{{QuestionID: 1, Response: "Lyon"}},
		}
		repo.results.On("GetByID", mock.Anything, mock.Anything, uint(100)).Return(result, nil)
		repo.tests.On("GetByID", mock.Anything, mock.Anything, uint(7)).Return(twoQuestionTest(), nil)
		repo.results.On("SaveAnswers", mock.Anything, mock.Anything, result).Return(nil)

		got, err := NewAnswerService(repo, queue, testLogger()).RecordAnswer(ctx, 100, 1, "Paris")

		require.NoError(t, err)
		require.Len(t, got.Answers, 1)
		assert.Equal(t, "Paris", got.Answers[0].Response)
	})

	t.Run("replacing an answer once all are in does not queue again", func(t *testing.T) {
		repo := newMockRepository()
		queue := &MockCorrectionQueuer{}
		result := &models.Result{
			ID: 100, TestID: 7, State: models.ResultInProgress,
			Answers: []models.Answer{{QuestionID: 1, Response: "Lyon"}, {QuestionID: 2, Response: "goroutines"}},
		}
		repo.results.On("GetByID", mock.Anything, mock.Anything, uint(100)).Return(result, nil)
		repo.tests.On("GetByID", mock.Anything, mock.Anything, uint(7)).Return(twoQuestionTest(), nil)
		repo.results.On("SaveAnswers", mock.Anything, mock.Anything, result).Return(nil).Once()

		got, err := NewAnswerService(repo, queue, testLogger()).RecordAnswer(ctx, 100, 1, "Paris")

		require.NoError(t, err)
		assert.Equal(t, "Paris", got.Answers[0].Response)
		queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
		repo.assertExpectations(t)
	})

	t.Run("result finished between read and write", func(t *testing.T) {
		repo := newMockRepository()
		queue := &MockCorrectionQueuer{}
		// Read while still in progress; the correction worker closes it before the write lands.
		result := &models.Result{
			ID: 100, TestID: 7, State: models.ResultInProgress,
			Answers: []models.Answer{{QuestionID: 2, Response: "goroutines"}},
		}
		repo.results.On("GetByID", mock.Anything, mock.Anything, uint(100)).Return(result, nil)
		repo.tests.On("GetByID", mock.Anything, mock.Anything, uint(7)).Return(twoQuestionTest(), nil)
		repo.results.On("SaveAnswers", mock.Anything, mock.Anything, result).Return(repositories.ErrResultClosed).Once()

		got, err := NewAnswerService(repo, queue, testLogger()).RecordAnswer(ctx, 100, 1, "Paris")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrResultFinished)
		assert.True(t, IsBusinessRule(err))
		queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("queue failure is reported after saving", func(t *testing.T) {
		repo := newMockRepository()
		queue := &MockCorrectionQueuer{}
		result := &models.Result{
			ID: 100, TestID: 7, State: models.ResultInProgress,
			Answers: []models.Answer{{QuestionID: 2, Response: "x"}},
		}
		repo.results.On("GetByID", mock.Anything, mock.Anything, uint(100)).Return(result, nil)
		repo.tests.On("GetByID", mock.Anything, mock.Anything, uint(7)).Return(twoQuestionTest(), nil)
		repo.results.On("SaveAnswers", mock.Anything, mock.Anything, result).Return(nil).Once()
		queue.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("broker down"))

		got, err := NewAnswerService(repo, queue, testLogger()).RecordAnswer(ctx, 100, 1, "Paris")

		assert.Error(t, err)
		assert.NotNil(t, got)
		repo.results.AssertExpectations(t)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name       string
			result     *models.Result
			resultErr  error
			questionID uint
			check      func(t *testing.T, err error)
		}{
			{
				name:       "unknown result",
				resultErr:  gorm.ErrRecordNotFound,
				questionID: 1,
				check:      func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrResultNotFound) },
			},
			{
				name:       "finished result",
				result:     &models.Result{ID: 100, TestID: 7, State: models.ResultFinish},
				questionID: 1,
				check: func(t *testing.T, err error) {
					assert.ErrorIs(t, err, ErrResultFinished)
					assert.True(t, IsBusinessRule(err))
				},
			},
			{
				name:       "question outside the test",
				result:     &models.Result{ID: 100, TestID: 7, State: models.ResultInProgress},
				questionID: 99,
				check: func(t *testing.T, err error) {
					assert.ErrorIs(t, err, ErrQuestionNotInTest)
					assert.True(t, IsBusinessRule(err))
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := newMockRepository()
				queue := &MockCorrectionQueuer{}
				repo.results.On("GetByID", mock.Anything, mock.Anything, uint(100)).Return(tt.result, tt.resultErr)
				repo.tests.On("GetByID", mock.Anything, mock.Anything, uint(7)).Return(twoQuestionTest(), nil).Maybe()

				_, err := NewAnswerService(repo, queue, testLogger()).RecordAnswer(ctx, 100, tt.questionID, "x")

				tt.check(t, err)
				repo.results.AssertNotCalled(t, "SaveAnswers", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})
}
