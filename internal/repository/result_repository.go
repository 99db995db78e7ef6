package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"omr-eval/internal/domain"
	"omr-eval/internal/repository/models"
	"omr-eval/internal/util"
)

type EvaluationResultDatabaseAdapter struct {
	db DBTX
}

func NewEvaluationResultDatabaseAdapter(db DBTX) domain.EvaluationResultRepository {
	return &EvaluationResultDatabaseAdapter{db: db}
}

// AppendResult inserts a new result. Earlier results for the same student are kept.
func (r *EvaluationResultDatabaseAdapter) AppendResult(ctx context.Context, result *domain.EvaluationResult) error {
	payload, err := json.Marshal(result.Outcome)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation result: %w", err)
	}
	if result.ID == "" {
		result.ID = util.NewULID()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO evaluation_results (id, college_id, batch_id, student_id, name, score, total, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = exec.ExecContext(ctx, query,
		result.ID, result.CollegeID, result.BatchID, result.StudentID, util.StringToNullString(result.Name),
		result.Outcome.Score, result.Outcome.Total, string(payload), result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation result: %w", err)
	}
	return nil
}

// ListResultsByBatch returns every result of the batch in insertion order.
func (r *EvaluationResultDatabaseAdapter) ListResultsByBatch(ctx context.Context, batchID string) ([]*domain.EvaluationResult, error) {
	var rows []models.EvaluationResult
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT id, college_id, batch_id, student_id, name, score, total, payload, created_at
		FROM evaluation_results WHERE batch_id = ? ORDER BY created_at, id`)
	if err := exec.SelectContext(ctx, &rows, query, batchID); err != nil {
		return nil, fmt.Errorf("failed to list evaluation results: %w", err)
	}

	results := make([]*domain.EvaluationResult, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		result := &domain.EvaluationResult{
			ID:        row.ID,
			CollegeID: row.CollegeID,
			BatchID:   row.BatchID,
			StudentID: row.StudentID,
			Name:      row.Name.String,
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal([]byte(row.Payload), &result.Outcome); err != nil {
			return nil, fmt.Errorf("failed to decode evaluation result %s: %w", row.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}
