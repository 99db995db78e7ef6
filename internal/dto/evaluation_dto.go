package dto

import (
	"time"

	"omr-eval/internal/domain"
)

// EvaluationResponse is one evaluated sheet.
type EvaluationResponse struct {
	ID               string                  `json:"id"`
	BatchID          string                  `json:"batch_id"`
	StudentID        string                  `json:"student_id"`
	Name             string                  `json:"name,omitempty"`
	Score            int                     `json:"score"`
	Total            int                     `json:"total"`
	PerSubjectScores map[string]int          `json:"per_subject_scores"`
	Answers          []domain.QuestionResult `json:"answers"`
	CreatedAt        time.Time               `json:"created_at"`
}

// SheetOutcomeResponse reports one sheet of a bulk evaluation.
type SheetOutcomeResponse struct {
	Filename  string              `json:"filename"`
	StudentID string              `json:"student_id"`
	Result    *EvaluationResponse `json:"result,omitempty"`
	Error     *ErrorDetail        `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BulkEvaluationResponse struct {
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Sheets    []SheetOutcomeResponse `json:"sheets"`
}

type ResultListResponse struct {
	BatchID string               `json:"batch_id"`
	Results []EvaluationResponse `json:"results"`
}

func NewEvaluationResponse(r *domain.EvaluationResult) EvaluationResponse {
	return EvaluationResponse{
		ID:               r.ID,
		BatchID:          r.BatchID,
		StudentID:        r.StudentID,
		Name:             r.Name,
		Score:            r.Outcome.Score,
		Total:            r.Outcome.Total,
		PerSubjectScores: r.Outcome.Sections,
		Answers:          r.Outcome.Answers,
		CreatedAt:        r.CreatedAt,
	}
}
