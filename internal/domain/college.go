package domain

import (
	"context"
	"time"
)

// College is a tenant. Every batch, student and result belongs to exactly one college.
type College struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Batch groups the students evaluated against one answer key.
type Batch struct {
	ID        string
	CollegeID string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Student is registered the first time one of their sheets is evaluated.
type Student struct {
	ID        string
	StudentID string
	CollegeID string
	BatchID   string
	Name      string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CollegeRepository defines persistence for colleges.
type CollegeRepository interface {
	CreateCollege(ctx context.Context, college *College) error
	GetCollegeByEmail(ctx context.Context, email string) (*College, error)
	GetCollegeByID(ctx context.Context, id string) (*College, error)
}

// BatchRepository defines persistence for batches.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch *Batch) error
	GetBatchByID(ctx context.Context, id string) (*Batch, error)
	ListBatchesByCollege(ctx context.Context, collegeID string) ([]*Batch, error)
}

// StudentRepository defines persistence for students.
type StudentRepository interface {
	// UpsertStudent creates the student for the batch or refreshes its name.
	UpsertStudent(ctx context.Context, student *Student) error
}

// AnswerKeyRepository stores at most one answer key per batch.
type AnswerKeyRepository interface {
	// SaveAnswerKey replaces the batch's current key.
	SaveAnswerKey(ctx context.Context, key *StoredAnswerKey) error
	// GetAnswerKeyByBatch returns nil, nil when the batch has no key.
	GetAnswerKeyByBatch(ctx context.Context, batchID string) (*StoredAnswerKey, error)
}

// EvaluationResultRepository is an append-only log of results per batch.
type EvaluationResultRepository interface {
	AppendResult(ctx context.Context, result *EvaluationResult) error
	ListResultsByBatch(ctx context.Context, batchID string) ([]*EvaluationResult, error)
}

// TransactionManager runs fn inside a database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SheetArchive keeps the raw uploaded files for auditing.
type SheetArchive interface {
	Store(ctx context.Context, objectName string, content []byte, contentType string) error
}
