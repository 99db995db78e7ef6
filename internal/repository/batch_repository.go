package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"omr-eval/internal/domain"
	"omr-eval/internal/repository/models"
	"omr-eval/internal/util"
)

const batchColumns = "id, college_id, name, created_at, updated_at"

type BatchDatabaseAdapter struct {
	db DBTX
}

func NewBatchDatabaseAdapter(db DBTX) domain.BatchRepository {
	return &BatchDatabaseAdapter{db: db}
}

func (r *BatchDatabaseAdapter) CreateBatch(ctx context.Context, batch *domain.Batch) error {
	now := time.Now().UTC()
	if batch.ID == "" {
		batch.ID = util.NewULID()
	}
	batch.CreatedAt = now
	batch.UpdatedAt = now

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO batches (` + batchColumns + `) VALUES (?, ?, ?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, query, batch.ID, batch.CollegeID, batch.Name, batch.CreatedAt, batch.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// GetBatchByID returns nil, nil when the batch does not exist.
func (r *BatchDatabaseAdapter) GetBatchByID(ctx context.Context, id string) (*domain.Batch, error) {
	var row models.Batch
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + batchColumns + ` FROM batches WHERE id = ?`)
	if err := exec.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return toDomainBatch(&row), nil
}

// ListBatchesByCollege returns the college's batches, newest first.
func (r *BatchDatabaseAdapter) ListBatchesByCollege(ctx context.Context, collegeID string) ([]*domain.Batch, error) {
	var rows []models.Batch
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + batchColumns + ` FROM batches WHERE college_id = ? ORDER BY created_at DESC, id DESC`)
	if err := exec.SelectContext(ctx, &rows, query, collegeID); err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}

	batches := make([]*domain.Batch, len(rows))
	for i := range rows {
		batches[i] = toDomainBatch(&rows[i])
	}
	return batches, nil
}

func toDomainBatch(row *models.Batch) *domain.Batch {
	return &domain.Batch{
		ID:        row.ID,
		CollegeID: row.CollegeID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
