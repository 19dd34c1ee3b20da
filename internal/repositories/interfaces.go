package repositories

import (
	"context"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"gorm.io/gorm"
)

// ResultRepository is the result store. SaveCorrection is the single atomic write of a correction pass.
type ResultRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error)
	SaveAnswers(ctx context.Context, tx *gorm.DB, result *models.Result) error
	SaveCorrection(ctx context.Context, tx *gorm.DB, result *models.Result) error
}

type TestRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
}

type QuestionRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
}

type CandidateRepository interface {
	GetContact(ctx context.Context, tx *gorm.DB, candidateID uint) (*models.Contact, error)
}

// Repository groups the stores used by the correction pipeline.
type Repository interface {
	Result() ResultRepository
	Test() TestRepository
	Question() QuestionRepository
	Candidate() CandidateRepository
}
