package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/correction-service/internal/ai"
	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/notifier"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockResultRepository struct{ mock.Mock }

func (m *MockResultRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	args := m.Called(ctx, tx, id)
	if r, ok := args.Get(0).(*models.Result); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResultRepository) SaveAnswers(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	return m.Called(ctx, tx, result).Error(0)
}

func (m *MockResultRepository) SaveCorrection(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	return m.Called(ctx, tx, result).Error(0)
}

type MockTestRepository struct{ mock.Mock }

func (m *MockTestRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	args := m.Called(ctx, tx, id)
	if t, ok := args.Get(0).(*models.Test); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockQuestionRepository struct{ mock.Mock }

func (m *MockQuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	args := m.Called(ctx, tx, id)
	if q, ok := args.Get(0).(*models.Question); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCandidateRepository struct{ mock.Mock }

func (m *MockCandidateRepository) GetContact(ctx context.Context, tx *gorm.DB, candidateID uint) (*models.Contact, error) {
	args := m.Called(ctx, tx, candidateID)
	if c, ok := args.Get(0).(*models.Contact); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepository bundles the per-store mocks behind repositories.Repository.
type MockRepository struct {
	results    *MockResultRepository
	tests      *MockTestRepository
	questions  *MockQuestionRepository
	candidates *MockCandidateRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		results:    &MockResultRepository{},
		tests:      &MockTestRepository{},
		questions:  &MockQuestionRepository{},
		candidates: &MockCandidateRepository{},
	}
}

func (m *MockRepository) Result() repositories.ResultRepository       { return m.results }
func (m *MockRepository) Test() repositories.TestRepository           { return m.tests }
func (m *MockRepository) Question() repositories.QuestionRepository   { return m.questions }
func (m *MockRepository) Candidate() repositories.CandidateRepository { return m.candidates }

func (m *MockRepository) assertExpectations(t mock.TestingT) {
	m.results.AssertExpectations(t)
	m.tests.AssertExpectations(t)
	m.questions.AssertExpectations(t)
	m.candidates.AssertExpectations(t)
}

type MockQuestionCache struct{ mock.Mock }

func (m *MockQuestionCache) Invalidate(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockAnswerScorer struct{ mock.Mock }

func (m *MockAnswerScorer) Score(ctx context.Context, question *models.Question, answer string) (ai.Verdict, error) {
	args := m.Called(ctx, question, answer)
	return args.Get(0).(ai.Verdict), args.Error(1)
}

type MockCorrectionQueuer struct{ mock.Mock }

func (m *MockCorrectionQueuer) Enqueue(ctx context.Context, req *models.CorrectionRequest) error {
	return m.Called(ctx, req).Error(0)
}

type MockCorrectionService struct{ mock.Mock }

func (m *MockCorrectionService) Correct(ctx context.Context, req *models.CorrectionRequest) (*models.CorrectionOutcome, error) {
	args := m.Called(ctx, req)
	if o, ok := args.Get(0).(*models.CorrectionOutcome); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCorrectionService) RequestCorrection(ctx context.Context, resultID uint) error {
	return m.Called(ctx, resultID).Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) SendCorrectionSummary(ctx context.Context, s notifier.Summary) error {
	return m.Called(ctx, s).Error(0)
}
