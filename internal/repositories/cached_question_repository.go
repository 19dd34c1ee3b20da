package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/correction-service/internal/cache"
	"github.com/SAP-F-2025/correction-service/internal/models"
	"gorm.io/gorm"
)

const questionCachePrefix = "correction:question:"

// CachedQuestionRepository is a read-through cache in front of a QuestionRepository.
// Cache failures are logged and the underlying store is used instead. Entries live until
// their TTL or Invalidate, so it only serves readers that tolerate stale questions.
type CachedQuestionRepository struct {
	next   QuestionRepository
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedQuestionRepository(next QuestionRepository, c cache.CacheService, ttl time.Duration, logger *slog.Logger) *CachedQuestionRepository {
	return &CachedQuestionRepository{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedQuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	key := fmt.Sprintf("%s%d", questionCachePrefix, id)

	var cached models.Question
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Question cache read failed", "question_id", id, "error", err)
	}

	question, err := r.next.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, question, r.ttl); err != nil {
		r.logger.Warn("Question cache write failed", "question_id", id, "error", err)
	}
	return question, nil
}

// Invalidate drops one cached question, or all of them when id is zero.
func (r *CachedQuestionRepository) Invalidate(ctx context.Context, id uint) error {
	if id == 0 {
		return r.cache.DeletePattern(ctx, questionCachePrefix+"*")
	}
	return r.cache.Delete(ctx, fmt.Sprintf("%s%d", questionCachePrefix, id))
}
