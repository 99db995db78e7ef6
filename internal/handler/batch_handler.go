package handler

import (
	"omr-eval/internal/domain"
	"omr-eval/internal/dto"
	"omr-eval/internal/middleware"
	"omr-eval/internal/service"

	"github.com/gofiber/fiber/v2"
)

// BatchHandler serves batches and their answer keys.
type BatchHandler struct {
	batches    service.BatchService
	answerKeys service.AnswerKeyService
}

func NewBatchHandler(batches service.BatchService, answerKeys service.AnswerKeyService) *BatchHandler {
	return &BatchHandler{batches: batches, answerKeys: answerKeys}
}

// ListBatches godoc
// @Summary List batches
// @Description Returns the authenticated college's batches, newest first.
// @Tags batches
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.BatchListResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /batches [get]
func (h *BatchHandler) ListBatches(c *fiber.Ctx) error {
	batches, err := h.batches.ListBatches(c.Context(), middleware.CollegeID(c))
	if err != nil {
		return err
	}
	resp := dto.BatchListResponse{Batches: make([]dto.BatchResponse, 0, len(batches))}
	for _, b := range batches {
		resp.Batches = append(resp.Batches, dto.NewBatchResponse(b))
	}
	return c.JSON(resp)
}

// CreateBatch godoc
// @Summary Create a batch
// @Tags batches
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreateBatchRequest true "Batch"
// @Success 201 {object} dto.BatchResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /batches [post]
func (h *BatchHandler) CreateBatch(c *fiber.Ctx) error {
	var req dto.CreateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	batch, err := h.batches.CreateBatch(c.Context(), middleware.CollegeID(c), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewBatchResponse(batch))
}

// GetBatch godoc
// @Summary Get a batch
// @Tags batches
// @Produce json
// @Security ApiKeyAuth
// @Param batchID path string true "Batch ID"
// @Success 200 {object} dto.BatchResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /batches/{batchID} [get]
func (h *BatchHandler) GetBatch(c *fiber.Ctx) error {
	batch, err := h.batches.GetBatch(c.Context(), middleware.CollegeID(c), middleware.BatchID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBatchResponse(batch))
}

// UploadAnswerKey godoc
// @Summary Upload the official answer key
// @Description Accepts .json, .xlsx or .csv. Replaces the batch's current key.
// @Tags answer-keys
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param batchID path string true "Batch ID"
// @Param file formData file true "Answer key file"
// @Success 200 {object} dto.AnswerKeyResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /batches/{batchID}/answer-key [put]
func (h *BatchHandler) UploadAnswerKey(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	content, err := readFormFile(fh)
	if err != nil {
		return err
	}

	stored, err := h.answerKeys.UploadAnswerKey(c.Context(), middleware.CollegeID(c), middleware.BatchID(c), fh.Filename, content)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAnswerKeyResponse(stored))
}

// GetAnswerKey godoc
// @Summary Get the current answer key
// @Tags answer-keys
// @Produce json
// @Security ApiKeyAuth
// @Param batchID path string true "Batch ID"
// @Success 200 {object} dto.AnswerKeyResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /batches/{batchID}/answer-key [get]
func (h *BatchHandler) GetAnswerKey(c *fiber.Ctx) error {
	batchID := middleware.BatchID(c)
	if _, err := h.batches.GetBatch(c.Context(), middleware.CollegeID(c), batchID); err != nil {
		return err
	}
	stored, err := h.answerKeys.GetAnswerKey(c.Context(), batchID)
	if err != nil {
		return err
	}
	if stored == nil {
		return domain.NewMissingAnswerKeyError(batchID)
	}
	return c.JSON(dto.NewAnswerKeyResponse(stored))
}
