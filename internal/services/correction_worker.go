package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/SAP-F-2025/correction-service/internal/cache"
	"github.com/SAP-F-2025/correction-service/internal/models"
)

// CorrectionWorker consumes queued correction requests, one result at a time.
type CorrectionWorker struct {
	service CorrectionService
	locker  cache.Locker
	logger  *slog.Logger
}

func NewCorrectionWorker(service CorrectionService, locker cache.Locker, logger *slog.Logger) *CorrectionWorker {
	return &CorrectionWorker{
		service: service,
		locker:  locker,
		logger:  logger,
	}
}

// Handle corrects one request while holding the result's lock, so two requests for the
// same result never interleave. Requests that can never succeed are dropped; any other
// failure is returned so the message is delivered again.
func (w *CorrectionWorker) Handle(ctx context.Context, req *models.CorrectionRequest) error {
	unlock, err := w.locker.Lock(ctx, strconv.FormatUint(uint64(req.ResultID), 10))
	if err != nil {
		return fmt.Errorf("failed to lock result %d: %w", req.ResultID, err)
	}
	defer unlock()

	outcome, err := w.service.Correct(ctx, req)
	if err != nil {
		if IsPrecondition(err) {
			w.logger.Error("Dropping correction request",
				"result_id", req.ResultID,
				"error", err)
			return nil
		}
		return err
	}

	w.logger.Info("Result corrected",
		"result_id", outcome.ResultID,
		"score", outcome.Score,
		"max_score", outcome.MaxScore,
		"percentage", outcome.Percentage)
	return nil
}
