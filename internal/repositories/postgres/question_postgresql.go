package postgres

import (
	"context"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// GetByID excludes soft-deleted questions, so a deleted question reads as not found.
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.db
	if tx != nil {
		db = tx
	}

	var question models.Question
	if err := db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}
