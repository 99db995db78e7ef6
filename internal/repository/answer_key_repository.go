package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"omr-eval/internal/domain"
	"omr-eval/internal/repository/models"
	"omr-eval/internal/util"
)

type AnswerKeyDatabaseAdapter struct {
	db DBTX
}

func NewAnswerKeyDatabaseAdapter(db DBTX) domain.AnswerKeyRepository {
	return &AnswerKeyDatabaseAdapter{db: db}
}

// SaveAnswerKey replaces the batch's key in place, inserting the row the
// first time a key is uploaded for the batch.
func (r *AnswerKeyDatabaseAdapter) SaveAnswerKey(ctx context.Context, key *domain.StoredAnswerKey) error {
	answers, err := json.Marshal(key.Key)
	if err != nil {
		return fmt.Errorf("failed to encode answer key: %w", err)
	}

	now := time.Now().UTC()
	exec := GetExecutor(ctx, r.db)

	updated, err := r.update(ctx, exec, key, string(answers), now)
	if err != nil || updated {
		return err
	}

	if key.ID == "" {
		key.ID = util.NewULID()
	}
	insert := exec.Rebind(`INSERT INTO answer_keys (id, batch_id, college_id, format, answers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	err = execInSavepoint(ctx, exec, "answer_key_insert", insert, key.ID, key.BatchID, key.CollegeID, key.Format, string(answers), now, now)
	if err != nil {
		// Lost an insert race for the same batch; the row exists now.
		if isUniqueViolation(err) {
			if _, retryErr := r.update(ctx, exec, key, string(answers), now); retryErr != nil {
				return retryErr
			}
			return nil
		}
		return fmt.Errorf("failed to insert answer key: %w", err)
	}
	key.CreatedAt = now
	key.UpdatedAt = now
	return nil
}

func (r *AnswerKeyDatabaseAdapter) update(ctx context.Context, exec DBTX, key *domain.StoredAnswerKey, answers string, now time.Time) (bool, error) {
	query := exec.Rebind(`UPDATE answer_keys SET format = ?, answers = ?, updated_at = ? WHERE batch_id = ?`)
	res, err := exec.ExecContext(ctx, query, key.Format, answers, now, key.BatchID)
	if err != nil {
		return false, fmt.Errorf("failed to update answer key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		key.UpdatedAt = now
	}
	return affected > 0, nil
}

// GetAnswerKeyByBatch returns nil, nil when no key has been uploaded.
func (r *AnswerKeyDatabaseAdapter) GetAnswerKeyByBatch(ctx context.Context, batchID string) (*domain.StoredAnswerKey, error) {
	var row models.AnswerKey
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT id, batch_id, college_id, format, answers, created_at, updated_at FROM answer_keys WHERE batch_id = ?`)
	if err := exec.GetContext(ctx, &row, query, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answer key: %w", err)
	}

	stored := &domain.StoredAnswerKey{
		ID:        row.ID,
		BatchID:   row.BatchID,
		CollegeID: row.CollegeID,
		Format:    row.Format,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Answers), &stored.Key); err != nil {
		return nil, fmt.Errorf("failed to decode stored answer key for batch %s: %w", batchID, err)
	}
	return stored, nil
}
