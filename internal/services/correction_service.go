package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/correction-service/internal/ai"
	"github.com/SAP-F-2025/correction-service/internal/metrics"
	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/notifier"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"github.com/SAP-F-2025/correction-service/internal/validator"
)

// ScoringFailedComment is stored on an answer whose scorer failed outright.
const ScoringFailedComment = "scoring failed"

type CorrectionService interface {
	// Correct runs one full correction pass for the result named by req.
	Correct(ctx context.Context, req *models.CorrectionRequest) (*models.CorrectionOutcome, error)
	// RequestCorrection queues a correction of every stored answer of a result.
	RequestCorrection(ctx context.Context, resultID uint) error
}

// AnswerScorer grades answers that the rule scorer cannot handle.
type AnswerScorer interface {
	Score(ctx context.Context, question *models.Question, answer string) (ai.Verdict, error)
}

type CorrectionQueuer interface {
	Enqueue(ctx context.Context, req *models.CorrectionRequest) error
}

// CorrectionObserver receives correction metrics. *metrics.Metrics implements it.
type CorrectionObserver interface {
	ObserveCorrection(outcome string, d time.Duration)
	ObserveAnswer(scorer, outcome string)
}

type noopObserver struct{}

func (noopObserver) ObserveCorrection(string, time.Duration) {}
func (noopObserver) ObserveAnswer(string, string)            {}

// QuestionCache is a read cache of questions kept outside the correction path.
type QuestionCache interface {
	Invalidate(ctx context.Context, id uint) error
}

type CorrectionDeps struct {
	Repo          repositories.Repository
	QuestionCache QuestionCache
	Validator     *validator.Validator
	AIScorer      AnswerScorer
	Notifications NotificationEventService
	Queue         CorrectionQueuer
	Observer      CorrectionObserver
	Logger        *slog.Logger

	// AnswerTimeout bounds the scoring of a single answer. Zero disables it.
	AnswerTimeout time.Duration
}

type correctionService struct {
	repo          repositories.Repository
	questionCache QuestionCache
	validator     *validator.Validator
	rules         *RuleScorer
	aiScorer      AnswerScorer
	aggregator    *ScoreAggregator
	notifications NotificationEventService
	queue         CorrectionQueuer
	observer      CorrectionObserver
	answerTimeout time.Duration
	logger        *slog.Logger
	opLogger      *ServiceLogger
	now           func() time.Time
}

func NewCorrectionService(deps CorrectionDeps) CorrectionService {
	observer := deps.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	return &correctionService{
		repo:          deps.Repo,
		questionCache: deps.QuestionCache,
		validator:     deps.Validator,
		rules:         NewRuleScorer(),
		aiScorer:      deps.AIScorer,
		aggregator:    NewScoreAggregator(deps.Repo.Question(), deps.Logger),
		notifications: deps.Notifications,
		queue:         deps.Queue,
		observer:      observer,
		answerTimeout: deps.AnswerTimeout,
		logger:        deps.Logger,
		opLogger:      NewServiceLogger(deps.Logger, LogConfig{Service: "correction-service", Component: "correction"}),
		now:           time.Now,
	}
}

func (s *correctionService) Correct(ctx context.Context, req *models.CorrectionRequest) (*models.CorrectionOutcome, error) {
	start := time.Now()
	var resultID uint
	if req != nil {
		resultID = req.ResultID
	}

	outcome, err := s.correct(ctx, req)

	elapsed := time.Since(start)
	s.opLogger.LogOperation(ctx, "correct_result", resultID, "result", elapsed, err)
	switch {
	case err == nil:
		s.observer.ObserveCorrection(metrics.OutcomeSuccess, elapsed)
	case IsPrecondition(err):
		s.observer.ObserveCorrection(metrics.OutcomeRejected, elapsed)
	default:
		s.observer.ObserveCorrection(metrics.OutcomeFailed, elapsed)
	}
	return outcome, err
}

// evictQuestion drops a question the store no longer has so cached readers stop showing it.
func (s *correctionService) evictQuestion(ctx context.Context, questionID uint) {
	if s.questionCache == nil {
		return
	}
	if err := s.questionCache.Invalidate(ctx, questionID); err != nil {
		s.logger.Warn("Failed to evict deleted question from cache", "question_id", questionID, "error", err)
	}
}

func (s *correctionService) correct(ctx context.Context, req *models.CorrectionRequest) (*models.CorrectionOutcome, error) {
	if req == nil {
		return nil, ErrInvalidCorrectionRequest
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCorrectionRequest, err)
	}

	result, err := s.repo.Result().GetByID(ctx, nil, req.ResultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrResultNotFound, req.ResultID)
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	if result.TestID != req.TestID {
		return nil, fmt.Errorf("%w: request test %d, result test %d", ErrTestMismatch, req.TestID, result.TestID)
	}

	test, err := s.repo.Test().GetByID(ctx, nil, result.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrTestNotFound, result.TestID)
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	outcome := &models.CorrectionOutcome{ResultID: result.ID}
	resolved := make(map[uint]*models.Question)
	var finalScore, maxScore float64

	// Answers are scored one at a time, in stored order.
	for i := range result.Answers {
		answer := &result.Answers[i]
		if req.Find(answer.QuestionID) == nil {
			continue
		}

		question, err := s.repo.Question().GetByID(ctx, nil, answer.QuestionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				s.logger.Warn("Question not found, skipping answer",
					"result_id", result.ID,
					"question_id", answer.QuestionID)
				s.observer.ObserveAnswer("none", metrics.AnswerSkipped)
				s.evictQuestion(ctx, answer.QuestionID)
				outcome.Answers = append(outcome.Answers, models.AnswerCorrection{QuestionID: answer.QuestionID, Skipped: true})
				continue
			}
			return nil, fmt.Errorf("failed to get question %d: %w", answer.QuestionID, err)
		}
		resolved[question.ID] = question

		questionMax := finiteOrZero(question.MaxScore)
		maxScore += questionMax

		scored := s.scoreAnswer(ctx, result.ID, question, answer.Response)
		score := clampScore(scored.score, questionMax)
		if score != scored.score {
			s.logger.Warn("Score out of range, clamped",
				"result_id", result.ID,
				"question_id", question.ID,
				"score", fmt.Sprint(scored.score),
				"max_score", questionMax,
				"clamped", score)
		}

		answer.Score = score
		answer.Comment = scored.comment
		finalScore += score

		outcome.Answers = append(outcome.Answers, models.AnswerCorrection{
			QuestionID: question.ID,
			Scorer:     scored.scorer,
			Score:      score,
			MaxScore:   questionMax,
			Degraded:   scored.degraded,
		})
	}

	finalScore = finiteOrZero(finalScore)
	maxScore = finiteOrZero(maxScore)

	agg, err := s.aggregator.Aggregate(ctx, result, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scores: %w", err)
	}
	percentage := Percentage(finalScore, maxScore)

	result.Score = finiteOrZero(agg.Score)
	result.ScoresByCategory = agg.ScoresByCategory
	result.State = models.ResultFinish
	if result.EndTime == nil {
		now := s.now()
		result.EndTime = &now
	}

	if err := s.repo.Result().SaveCorrection(ctx, nil, result); err != nil {
		return nil, fmt.Errorf("failed to save correction: %w", err)
	}

	outcome.Score = finalScore
	outcome.MaxScore = maxScore
	outcome.Percentage = percentage
	outcome.ScoresByCategory = agg.ScoresByCategory

	outcome.Notified = s.notifications.NotifyTestResult(ctx, result, test, percentage)
	s.notifications.SendCorrectionSummary(ctx, s.summarize(ctx, result, test, outcome))

	return outcome, nil
}

type answerScore struct {
	score    float64
	comment  string
	scorer   models.ScorerKind
	degraded bool
}

// scoreAnswer never fails: scorer errors and panics become a zero score.
func (s *correctionService) scoreAnswer(ctx context.Context, resultID uint, question *models.Question, text string) (out answerScore) {
	if s.answerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.answerTimeout)
		defer cancel()
	}

	out.scorer = models.ScorerAI
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scorer panicked",
				"result_id", resultID,
				"question_id", question.ID,
				"panic", fmt.Sprint(r))
			s.observer.ObserveAnswer(string(out.scorer), metrics.AnswerFailed)
			out = answerScore{comment: ScoringFailedComment, scorer: out.scorer}
		}
	}()

	if question.Type == models.MultipleChoice {
		if rs, ok := s.rules.Score(question, text); ok {
			out.scorer = models.ScorerRule
			s.observer.ObserveAnswer(string(models.ScorerRule), metrics.AnswerScored)
			return answerScore{score: rs.Score, comment: rs.Comment, scorer: models.ScorerRule}
		}
	}

	verdict, err := s.aiScorer.Score(ctx, question, text)
	if err != nil {
		s.logger.Error("AI scorer failed",
			"result_id", resultID,
			"question_id", question.ID,
			"error", err)
		s.observer.ObserveAnswer(string(models.ScorerAI), metrics.AnswerFailed)
		return answerScore{comment: ScoringFailedComment, scorer: models.ScorerAI}
	}

	if verdict.Degraded {
		s.observer.ObserveAnswer(string(models.ScorerAI), metrics.AnswerDegraded)
	} else {
		s.observer.ObserveAnswer(string(models.ScorerAI), metrics.AnswerScored)
	}
	return answerScore{
		score:    verdict.Score,
		comment:  verdict.Comment,
		scorer:   models.ScorerAI,
		degraded: verdict.Degraded,
	}
}

func (s *correctionService) summarize(ctx context.Context, result *models.Result, test *models.Test, outcome *models.CorrectionOutcome) notifier.Summary {
	summary := notifier.Summary{
		ResultID:   result.ID,
		TestName:   test.Title,
		Score:      outcome.Score,
		MaxScore:   outcome.MaxScore,
		Percentage: outcome.Percentage,
	}
	for _, a := range outcome.Answers {
		if a.Skipped {
			summary.Skipped++
		}
		if a.Degraded {
			summary.Degraded++
		}
	}
	if contact, err := s.repo.Candidate().GetContact(ctx, nil, result.CandidateID); err == nil {
		summary.CandidateName = contact.FullName()
	}
	return summary
}

func (s *correctionService) RequestCorrection(ctx context.Context, resultID uint) error {
	result, err := s.repo.Result().GetByID(ctx, nil, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: %d", ErrResultNotFound, resultID)
		}
		return fmt.Errorf("failed to get result: %w", err)
	}
	if len(result.Answers) == 0 {
		return NewBusinessRuleError("non_empty_answers", ErrNothingToCorrect, map[string]interface{}{"result_id": resultID})
	}

	if err := s.queue.Enqueue(ctx, NewCorrectionRequest(result)); err != nil {
		return fmt.Errorf("failed to request correction: %w", err)
	}
	return nil
}

// NewCorrectionRequest selects every stored answer of result for correction.
func NewCorrectionRequest(result *models.Result) *models.CorrectionRequest {
	state := result.State
	if state == "" {
		state = models.ResultPending
	}
	req := &models.CorrectionRequest{
		ResultID: result.ID,
		TestID:   result.TestID,
		State:    state,
		Answers:  make([]models.CorrectionAnswer, 0, len(result.Answers)),
	}
	for _, a := range result.Answers {
		req.Answers = append(req.Answers, models.CorrectionAnswer{QuestionID: a.QuestionID, Text: a.Response})
	}
	return req
}
