// Package models holds the row types scanned by the sqlx repositories.
package models

import (
	"database/sql"
	"time"
)

// College is a row of the colleges table.
type College struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Batch is a row of the batches table.
type Batch struct {
	ID        string    `db:"id"`
	CollegeID string    `db:"college_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Student is a row of the students table.
type Student struct {
	ID        string         `db:"id"`
	StudentID string         `db:"student_id"`
	CollegeID string         `db:"college_id"`
	BatchID   string         `db:"batch_id"`
	Name      sql.NullString `db:"name"`
	Source    string         `db:"source"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// AnswerKey is a row of the answer_keys table. Answers holds the key as a
// JSON object ordered by question number.
type AnswerKey struct {
	ID        string    `db:"id"`
	BatchID   string    `db:"batch_id"`
	CollegeID string    `db:"college_id"`
	Format    string    `db:"format"`
	Answers   string    `db:"answers"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// EvaluationResult is a row of the evaluation_results table. Payload holds the
// full per-question breakdown as JSON.
type EvaluationResult struct {
	ID        string         `db:"id"`
	CollegeID string         `db:"college_id"`
	BatchID   string         `db:"batch_id"`
	StudentID string         `db:"student_id"`
	Name      sql.NullString `db:"name"`
	Score     int            `db:"score"`
	Total     int            `db:"total"`
	Payload   string         `db:"payload"`
	CreatedAt time.Time      `db:"created_at"`
}
