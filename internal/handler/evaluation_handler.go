package handler

import (
	"errors"
	"fmt"

	"omr-eval/internal/domain"
	"omr-eval/internal/dto"
	"omr-eval/internal/middleware"
	"omr-eval/internal/service"

	"github.com/gofiber/fiber/v2"
)

// EvaluationHandler scores uploaded OMR sheets and serves the results.
type EvaluationHandler struct {
	evaluations service.EvaluationService
}

func NewEvaluationHandler(evaluations service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// EvaluateStudent godoc
// @Summary Evaluate one OMR sheet
// @Tags evaluations
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param batchID path string true "Batch ID"
// @Param sheet formData file true "Scanned OMR sheet"
// @Param student_id formData string true "Student ID"
// @Param name formData string false "Student name"
// @Success 201 {object} dto.EvaluationResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse "Answer key missing or sheet unreadable"
// @Router /batches/{batchID}/evaluations [post]
func (h *EvaluationHandler) EvaluateStudent(c *fiber.Ctx) error {
	fh, err := c.FormFile("sheet")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("sheet")}
	}
	content, err := readFormFile(fh)
	if err != nil {
		return err
	}

	meta := domain.StudentMeta{StudentID: c.FormValue("student_id"), Name: c.FormValue("name")}
	sheet := service.SheetUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}
	result, err := h.evaluations.EvaluateStudent(c.Context(), middleware.CollegeID(c), middleware.BatchID(c), meta, sheet)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewEvaluationResponse(result))
}

// EvaluateBulk godoc
// @Summary Evaluate many OMR sheets
// @Description Each file's name without extension is used as the student ID. Failures are reported per sheet.
// @Tags evaluations
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param batchID path string true "Batch ID"
// @Param sheets formData file true "Scanned OMR sheets"
// @Success 200 {object} dto.BulkEvaluationResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 422 {object} middleware.ErrorResponse "Answer key missing"
// @Router /batches/{batchID}/evaluations/bulk [post]
func (h *EvaluationHandler) EvaluateBulk(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["sheets"]) == 0 {
		return domain.ValidationErrors{domain.NewMissingFieldError("sheets")}
	}

	uploads := make([]service.SheetUpload, 0, len(form.File["sheets"]))
	for _, fh := range form.File["sheets"] {
		content, err := readFormFile(fh)
		if err != nil {
			return err
		}
		uploads = append(uploads, service.SheetUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Content:     content,
		})
	}

	outcomes, err := h.evaluations.EvaluateSheets(c.Context(), middleware.CollegeID(c), middleware.BatchID(c), uploads)
	if err != nil {
		return err
	}

	resp := dto.BulkEvaluationResponse{Sheets: make([]dto.SheetOutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		item := dto.SheetOutcomeResponse{Filename: o.Filename, StudentID: o.StudentID}
		if o.Err != nil {
			resp.Failed++
			item.Error = errorDetail(o.Err)
		} else {
			resp.Succeeded++
			r := dto.NewEvaluationResponse(o.Result)
			item.Result = &r
		}
		resp.Sheets = append(resp.Sheets, item)
	}
	return c.JSON(resp)
}

// ListResults godoc
// @Summary List evaluation results
// @Description Results are returned in the order they were recorded.
// @Tags results
// @Produce json
// @Security ApiKeyAuth
// @Param batchID path string true "Batch ID"
// @Success 200 {object} dto.ResultListResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /batches/{batchID}/results [get]
func (h *EvaluationHandler) ListResults(c *fiber.Ctx) error {
	batchID := middleware.BatchID(c)
	results, err := h.evaluations.ListResults(c.Context(), middleware.CollegeID(c), batchID)
	if err != nil {
		return err
	}
	resp := dto.ResultListResponse{BatchID: batchID, Results: make([]dto.EvaluationResponse, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, dto.NewEvaluationResponse(r))
	}
	return c.JSON(resp)
}

// ExportResults godoc
// @Summary Download results
// @Tags results
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param batchID path string true "Batch ID"
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /batches/{batchID}/results/export [get]
func (h *EvaluationHandler) ExportResults(c *fiber.Ctx) error {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		return err
	}
	file, err := h.evaluations.ExportResults(c.Context(), middleware.CollegeID(c), middleware.BatchID(c), format)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Send(file.Content)
}

func errorDetail(err error) *dto.ErrorDetail {
	var validationErrs domain.ValidationErrors
	if errors.As(err, &validationErrs) {
		return &dto.ErrorDetail{Code: string(domain.CodeValidation), Message: validationErrs.Error()}
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return &dto.ErrorDetail{Code: string(domainErr.Code), Message: domainErr.Message}
	}
	return &dto.ErrorDetail{Code: string(domain.CodeInternal), Message: "Internal server error"}
}
