package dto

import (
	"time"

	"omr-eval/internal/domain"
)

// CreateBatchRequest is the body of POST /api/batches.
type CreateBatchRequest struct {
	Name string `json:"name" example:"2024 Morning Batch"`
}

type BatchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type BatchListResponse struct {
	Batches []BatchResponse `json:"batches"`
}

// AnswerKeyResponse carries all 100 questions; unset ones are "".
type AnswerKeyResponse struct {
	BatchID   string           `json:"batch_id"`
	Format    string           `json:"format"`
	Answers   domain.AnswerKey `json:"answers" swaggertype:"object,string"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewBatchResponse(b *domain.Batch) BatchResponse {
	return BatchResponse{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt}
}

func NewAnswerKeyResponse(k *domain.StoredAnswerKey) AnswerKeyResponse {
	return AnswerKeyResponse{BatchID: k.BatchID, Format: k.Format, Answers: k.Key, UpdatedAt: k.UpdatedAt}
}
