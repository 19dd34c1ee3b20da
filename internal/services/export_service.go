package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	answersSheet    = "Answers"
	categoriesSheet = "Categories"
)

// ExportService renders a corrected result as a spreadsheet.
type ExportService interface {
	ExportResult(ctx context.Context, resultID uint) ([]byte, error)
}

type exportService struct {
	repo      repositories.Repository
	questions repositories.QuestionRepository
	logger    *slog.Logger
}

// NewExportService reads question details through questions, which may be cached since an
// export only labels rows. A nil questions falls back to repo.Question().
func NewExportService(repo repositories.Repository, questions repositories.QuestionRepository, logger *slog.Logger) ExportService {
	if questions == nil {
		questions = repo.Question()
	}
	return &exportService{repo: repo, questions: questions, logger: logger}
}

func (s *exportService) ExportResult(ctx context.Context, resultID uint) ([]byte, error) {
	result, err := s.repo.Result().GetByID(ctx, nil, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrResultNotFound, resultID)
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	test, err := s.repo.Test().GetByID(ctx, nil, result.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrTestNotFound, result.TestID)
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	var maxScore float64
	answerRows := make([][]interface{}, 0, len(result.Answers))
	for _, answer := range result.Answers {
		question, err := s.questions.GetByID(ctx, nil, answer.QuestionID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get question %d: %w", answer.QuestionID, err)
		}

		qType, instruction, qMax := "", "(question deleted)", 0.0
		if question != nil {
			qType = string(question.Type)
			instruction = question.Instruction
			qMax = question.MaxScore
			maxScore += qMax
		}
		answerRows = append(answerRows, []interface{}{
			answer.QuestionID, qType, instruction, answer.Response, answer.Score, qMax, answer.Comment,
		})
	}

	summaryRows := [][]interface{}{
		{"Test", test.Title},
		{"Result", result.ID},
		{"State", string(result.State)},
		{"Score", result.Score},
		{"Max Score", maxScore},
		{"Percentage", Percentage(result.Score, maxScore)},
	}
	if err := writeSheet(f, summarySheet, []string{"Field", "Value"}, summaryRows); err != nil {
		return nil, err
	}
	if err := writeSheet(f, answersSheet, []string{
		"Question ID", "Type", "Instruction", "Response", "Score", "Max Score", "Comment",
	}, answerRows); err != nil {
		return nil, err
	}

	categoryRows := make([][]interface{}, 0, len(result.ScoresByCategory))
	for _, c := range result.ScoresByCategory {
		categoryRows = append(categoryRows, []interface{}{c.CategoryID, c.Score, c.MaxScore, Percentage(c.Score, c.MaxScore)})
	}
	if err := writeSheet(f, categoriesSheet, []string{"Category ID", "Score", "Max Score", "Percentage"}, categoryRows); err != nil {
		return nil, err
	}

	index, err := f.GetSheetIndex(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to select summary sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Result exported", "result_id", result.ID, "answers", len(answerRows))
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create Excel sheet %s: %w", name, err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, header); err != nil {
			return err
		}
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, name, err)
		}
	}
	return nil
}
