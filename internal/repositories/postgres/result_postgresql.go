package postgres

import (
	"context"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"gorm.io/gorm"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) getDB(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.getDB(ctx, tx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveAnswers stores the answer list and state while a candidate is still answering.
// The row is left untouched once finished, so a late answer cannot reopen a corrected result.
func (r *ResultPostgreSQL) SaveAnswers(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	db := r.getDB(ctx, tx)
	res := db.Model(&models.Result{}).
		Where("id = ? AND state <> ?", result.ID, models.ResultFinish).
		Updates(map[string]interface{}{
			"answers":    result.Answers,
			"state":      result.State,
			"start_time": result.StartTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.Result{}).Where("id = ?", result.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return repositories.ErrResultClosed
}

// SaveCorrection writes every corrected field in one UPDATE statement.
func (r *ResultPostgreSQL) SaveCorrection(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	res := r.getDB(ctx, tx).Model(&models.Result{}).
		Where("id = ?", result.ID).
		Updates(map[string]interface{}{
			"answers":            result.Answers,
			"score":              result.Score,
			"scores_by_category": result.ScoresByCategory,
			"state":              result.State,
			"end_time":           result.EndTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
