package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/SAP-F-2025/correction-service/internal/models"
)

// UnavailableMessage is the comment stored on an answer when every attempt failed.
const UnavailableMessage = "Automatic correction is unavailable right now; this answer was not scored."

const DefaultMaxAttempts = 3

// Verdict is the scorer's decision for one answer. Degraded is set when retries
// were exhausted; Score is then 0 and Comment is UnavailableMessage.
type Verdict struct {
	Score    float64
	Comment  string
	Degraded bool
	Reason   string
	Attempts int
}

// AttemptObserver is notified of every call made to the generator.
type AttemptObserver interface {
	ObserveAIAttempt(provider string, ok bool)
}

type Option func(*Scorer)

func WithMaxAttempts(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithObserver(o AttemptObserver) Option {
	return func(s *Scorer) { s.observer = o }
}

// Scorer grades open answers through a TextGenerator.
type Scorer struct {
	generator   TextGenerator
	logger      *slog.Logger
	maxAttempts int
	observer    AttemptObserver
}

func NewScorer(generator TextGenerator, logger *slog.Logger, opts ...Option) *Scorer {
	s := &Scorer{
		generator:   generator,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score renders the grading prompt and asks the generator for a verdict. Transport
// errors, empty replies and unparsable replies are retried; after the last attempt a
// degraded Verdict is returned instead of an error. The error return is reserved for
// failures that retrying cannot fix.
func (s *Scorer) Score(ctx context.Context, question *models.Question, answer string) (Verdict, error) {
	prompt, err := RenderGradingPrompt(question, answer)
	if err != nil {
		return Verdict{}, err
	}
	req := Request{Instructions: prompt, RequireJSON: true}

	out := Retry(ctx, s.maxAttempts, func(ctx context.Context, attempt int) (rawVerdict, error) {
		text, err := s.generator.Generate(ctx, req)
		if err == nil {
			var v rawVerdict
			v, err = parseVerdict(text)
			if err == nil {
				s.observe(true)
				return v, nil
			}
		}
		s.observe(false)
		s.logger.Warn("AI scoring attempt failed",
			"provider", s.generator.Name(),
			"question_id", question.ID,
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"error", err)
		return rawVerdict{}, err
	})

	if !out.OK {
		s.logger.Error("AI scoring exhausted retries",
			"provider", s.generator.Name(),
			"question_id", question.ID,
			"attempts", out.Attempts,
			"reason", out.Reason)
		return Verdict{
			Comment:  UnavailableMessage,
			Degraded: true,
			Reason:   out.Reason,
			Attempts: out.Attempts,
		}, nil
	}

	score := out.Value.Score
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		s.logger.Warn("AI returned an unusable score, using 0",
			"question_id", question.ID,
			"score", fmt.Sprint(score))
		score = 0
	}

	return Verdict{
		Score:    score,
		Comment:  out.Value.Comment,
		Attempts: out.Attempts,
	}, nil
}

func (s *Scorer) observe(ok bool) {
	if s.observer != nil {
		s.observer.ObserveAIAttempt(s.generator.Name(), ok)
	}
}
