package handlers

import (
	"fmt"
	"net/http"

	apperrors "github.com/SAP-F-2025/correction-service/internal/errors"
	"github.com/SAP-F-2025/correction-service/internal/services"
	"github.com/SAP-F-2025/correction-service/internal/utils"
	"github.com/SAP-F-2025/correction-service/internal/validator"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CorrectionHandler struct {
	BaseHandler
	correctionService services.CorrectionService
	answerService     services.AnswerService
	exportService     services.ExportService
	validator         *validator.Validator
}

type RecordAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Response   string `json:"response"`
}

func NewCorrectionHandler(
	correctionService services.CorrectionService,
	answerService services.AnswerService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *CorrectionHandler {
	return &CorrectionHandler{
		BaseHandler:       NewBaseHandler(logger),
		correctionService: correctionService,
		answerService:     answerService,
		exportService:     exportService,
		validator:         validator,
	}
}

// RequestCorrection queues a correction of every stored answer of a result.
// @Summary Request correction
// @Tags corrections
// @Produce json
// @Param id path uint true "Result ID"
// @Success 202 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /results/{id}/correct [post]
func (h *CorrectionHandler) RequestCorrection(c *gin.Context) {
	resultID := h.parseIDParam(c, "id")
	if resultID == 0 {
		return
	}

	h.LogRequest(c, "Requesting correction", "result_id", resultID)

	ctx := services.WithRequestID(c.Request.Context(), c.GetHeader(utils.RequestIDHeader))
	if err := h.correctionService.RequestCorrection(ctx, resultID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusAccepted, "Correction queued", gin.H{"result_id": resultID})
}

// RecordAnswer stores one candidate answer; the last answer of a test triggers correction.
// @Summary Record answer
// @Tags corrections
// @Accept json
// @Produce json
// @Param id path uint true "Result ID"
// @Param answer body RecordAnswerRequest true "Answer"
// @Success 200 {object} SuccessResponse{data=models.Result}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /results/{id}/answers [post]
func (h *CorrectionHandler) RecordAnswer(c *gin.Context) {
	resultID := h.parseIDParam(c, "id")
	if resultID == 0 {
		return
	}

	var req RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: apperrors.ValidationErrors{*apperrors.NewValidationError("body", err.Error(), nil)},
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Recording answer", "result_id", resultID, "question_id", req.QuestionID)

	ctx := services.WithRequestID(c.Request.Context(), c.GetHeader(utils.RequestIDHeader))
	result, err := h.answerService.RecordAnswer(ctx, resultID, req.QuestionID, req.Response)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answer recorded", result)
}

// ExportResult downloads a corrected result as an Excel workbook.
// @Summary Export result
// @Tags corrections
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Result ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /results/{id}/export [get]
func (h *CorrectionHandler) ExportResult(c *gin.Context) {
	resultID := h.parseIDParam(c, "id")
	if resultID == 0 {
		return
	}

	data, err := h.exportService.ExportResult(c.Request.Context(), resultID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="result-%d.xlsx"`, resultID))
	c.Data(http.StatusOK, xlsxContentType, data)
}
