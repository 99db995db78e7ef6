package handler_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"omr-eval/internal/domain"
	"omr-eval/internal/dto"
	"omr-eval/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(studentID string) *domain.EvaluationResult {
	key := domain.NewAnswerKey(map[int]string{1: "a", 2: "b"})
	return &domain.EvaluationResult{
		ID:        "01HZX3J6M2Q8R5T7V9W0Y1Z2R0",
		BatchID:   testBatchID,
		StudentID: studentID,
		Outcome:   domain.Score(key, map[int]string{1: "a"}),
	}
}

func TestEvaluationHandler_EvaluateStudent(t *testing.T) {
	app, svcs := newTestApp()
	svcs.evaluations.EvaluateStudentFunc = func(ctx context.Context, collegeID, batchID string, meta domain.StudentMeta, sheet service.SheetUpload) (*domain.EvaluationResult, error) {
		assert.Equal(t, testCollegeID, collegeID)
		assert.Equal(t, "S-001", meta.StudentID)
		assert.Equal(t, "Asha", meta.Name)
		assert.Equal(t, "scan.png", sheet.Filename)
		assert.Equal(t, []byte("png-bytes"), sheet.Content)
		return sampleResult(meta.StudentID), nil
	}

	req := multipartRequest(t, "POST", "/api/batches/"+testBatchID+"/evaluations",
		map[string]string{"student_id": "S-001", "name": "Asha"},
		formFile{field: "sheet", name: "scan.png", content: []byte("png-bytes")})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.EvaluationResponse
	decode(t, resp, &body)
	assert.Equal(t, 1, body.Score)
	assert.Equal(t, 100, body.Total)
	assert.Equal(t, 1, body.PerSubjectScores["sub_1"])
	require.Len(t, body.Answers, domain.TotalQuestions)
	assert.Equal(t, domain.NotAttempted, body.Answers[1].StudentAnswer)
}

func TestEvaluationHandler_EvaluateStudentErrors(t *testing.T) {
	app, svcs := newTestApp()
	svcs.evaluations.EvaluateStudentFunc = func(ctx context.Context, collegeID, batchID string, meta domain.StudentMeta, sheet service.SheetUpload) (*domain.EvaluationResult, error) {
		return nil, domain.NewMissingAnswerKeyError(batchID)
	}

	req := multipartRequest(t, "POST", "/api/batches/"+testBatchID+"/evaluations",
		map[string]string{"student_id": "S-001"},
		formFile{field: "sheet", name: "scan.png", content: []byte("png")})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	req = multipartRequest(t, "POST", "/api/batches/"+testBatchID+"/evaluations",
		map[string]string{"student_id": "S-001"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEvaluationHandler_EvaluateBulk(t *testing.T) {
	app, svcs := newTestApp()
	svcs.evaluations.EvaluateSheetsFunc = func(ctx context.Context, collegeID, batchID string, sheets []service.SheetUpload) ([]service.SheetOutcome, error) {
		require.Len(t, sheets, 2)
		return []service.SheetOutcome{
			{Filename: sheets[0].Filename, StudentID: "S-001", Result: sampleResult("S-001")},
			{Filename: sheets[1].Filename, StudentID: "S-002", Err: domain.NewExtractionFailedError(errors.New("blur"))},
		}, nil
	}

	req := multipartRequest(t, "POST", "/api/batches/"+testBatchID+"/evaluations/bulk", nil,
		formFile{field: "sheets", name: "S-001.png", content: []byte("a")},
		formFile{field: "sheets", name: "S-002.png", content: []byte("b")})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.BulkEvaluationResponse
	decode(t, resp, &body)
	assert.Equal(t, 1, body.Succeeded)
	assert.Equal(t, 1, body.Failed)
	require.Len(t, body.Sheets, 2)
	require.NotNil(t, body.Sheets[0].Result)
	assert.Nil(t, body.Sheets[0].Error)
	require.NotNil(t, body.Sheets[1].Error)
	assert.Equal(t, "EXTRACTION_FAILED", body.Sheets[1].Error.Code)
}

func TestEvaluationHandler_EvaluateBulkWithoutSheets(t *testing.T) {
	app, _ := newTestApp()

	req := multipartRequest(t, "POST", "/api/batches/"+testBatchID+"/evaluations/bulk", map[string]string{"x": "y"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEvaluationHandler_ListResults(t *testing.T) {
	app, svcs := newTestApp()
	svcs.evaluations.ListResultsFunc = func(ctx context.Context, collegeID, batchID string) ([]*domain.EvaluationResult, error) {
		return []*domain.EvaluationResult{sampleResult("S-001"), sampleResult("S-002")}, nil
	}

	resp, err := app.Test(jsonRequest(t, "GET", "/api/batches/"+testBatchID+"/results", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.ResultListResponse
	decode(t, resp, &body)
	assert.Equal(t, testBatchID, body.BatchID)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "S-002", body.Results[1].StudentID)
}

func TestEvaluationHandler_ExportResults(t *testing.T) {
	app, svcs := newTestApp()
	svcs.evaluations.ExportResultsFunc = func(ctx context.Context, collegeID, batchID string, format service.ExportFormat) (*service.ExportFile, error) {
		assert.Equal(t, service.ExportXLSX, format)
		return &service.ExportFile{
			Filename:    "batch_" + batchID + "_results.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     []byte("xlsx-bytes"),
		}, nil
	}

	resp, err := app.Test(jsonRequest(t, "GET", "/api/batches/"+testBatchID+"/results/export?format=xlsx", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "batch_"+testBatchID+"_results.xlsx")
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(content))

	resp, err = app.Test(jsonRequest(t, "GET", "/api/batches/"+testBatchID+"/results/export?format=pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
