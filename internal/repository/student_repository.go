package repository

import (
	"context"
	"fmt"
	"time"

	"omr-eval/internal/domain"
	"omr-eval/internal/util"
)

type StudentDatabaseAdapter struct {
	db DBTX
}

func NewStudentDatabaseAdapter(db DBTX) domain.StudentRepository {
	return &StudentDatabaseAdapter{db: db}
}

// UpsertStudent keeps one row per (student_id, batch_id). An empty name does
// not overwrite a stored one.
func (r *StudentDatabaseAdapter) UpsertStudent(ctx context.Context, student *domain.Student) error {
	now := time.Now().UTC()
	exec := GetExecutor(ctx, r.db)

	updated, err := r.update(ctx, exec, student, now)
	if err != nil || updated {
		return err
	}

	if student.ID == "" {
		student.ID = util.NewULID()
	}
	insert := exec.Rebind(`INSERT INTO students (id, student_id, college_id, batch_id, name, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	err = execInSavepoint(ctx, exec, "student_insert", insert,
		student.ID, student.StudentID, student.CollegeID, student.BatchID,
		util.StringToNullString(student.Name), student.Source, now, now)
	if err != nil {
		// Another evaluation inserted the same student first.
		if isUniqueViolation(err) {
			student.ID = ""
			if _, retryErr := r.update(ctx, exec, student, now); retryErr != nil {
				return retryErr
			}
			return nil
		}
		return fmt.Errorf("failed to insert student: %w", err)
	}
	student.CreatedAt = now
	student.UpdatedAt = now
	return nil
}

func (r *StudentDatabaseAdapter) update(ctx context.Context, exec DBTX, student *domain.Student, now time.Time) (bool, error) {
	query := exec.Rebind(`UPDATE students SET name = COALESCE(?, name), updated_at = ? WHERE student_id = ? AND batch_id = ?`)
	res, err := exec.ExecContext(ctx, query, util.StringToNullString(student.Name), now, student.StudentID, student.BatchID)
	if err != nil {
		return false, fmt.Errorf("failed to update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		student.UpdatedAt = now
	}
	return affected > 0, nil
}
