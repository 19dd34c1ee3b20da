package postgres

import (
	"context"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"gorm.io/gorm"
)

type CandidatePostgreSQL struct {
	db *gorm.DB
}

func NewCandidatePostgreSQL(db *gorm.DB) repositories.CandidateRepository {
	return &CandidatePostgreSQL{db: db}
}

func (c *CandidatePostgreSQL) GetContact(ctx context.Context, tx *gorm.DB, candidateID uint) (*models.Contact, error) {
	db := c.db
	if tx != nil {
		db = tx
	}

	var candidate models.Candidate
	if err := db.WithContext(ctx).
		Preload("Contact").
		First(&candidate, candidateID).Error; err != nil {
		return nil, err
	}
	if candidate.Contact == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return candidate.Contact, nil
}
