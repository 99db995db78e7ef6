package service

import (
	"context"
	"time"

	"omr-eval/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockCollegeRepository ---
type MockCollegeRepository struct {
	mock.Mock
}

func (m *MockCollegeRepository) CreateCollege(ctx context.Context, college *domain.College) error {
	args := m.Called(ctx, college)
	return args.Error(0)
}

func (m *MockCollegeRepository) GetCollegeByEmail(ctx context.Context, email string) (*domain.College, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.College), args.Error(1)
}

func (m *MockCollegeRepository) GetCollegeByID(ctx context.Context, id string) (*domain.College, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.College), args.Error(1)
}

// --- MockBatchRepository ---
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) CreateBatch(ctx context.Context, batch *domain.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) GetBatchByID(ctx context.Context, id string) (*domain.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchRepository) ListBatchesByCollege(ctx context.Context, collegeID string) ([]*domain.Batch, error) {
	args := m.Called(ctx, collegeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Batch), args.Error(1)
}

// --- MockStudentRepository ---
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) UpsertStudent(ctx context.Context, student *domain.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

// --- MockAnswerKeyRepository ---
type MockAnswerKeyRepository struct {
	mock.Mock
}

func (m *MockAnswerKeyRepository) SaveAnswerKey(ctx context.Context, key *domain.StoredAnswerKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAnswerKeyRepository) GetAnswerKeyByBatch(ctx context.Context, batchID string) (*domain.StoredAnswerKey, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredAnswerKey), args.Error(1)
}

// --- MockEvaluationResultRepository ---
type MockEvaluationResultRepository struct {
	mock.Mock
}

func (m *MockEvaluationResultRepository) AppendResult(ctx context.Context, result *domain.EvaluationResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockEvaluationResultRepository) ListResultsByBatch(ctx context.Context, batchID string) ([]*domain.EvaluationResult, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EvaluationResult), args.Error(1)
}

// --- MockTransactionManager runs fn inline ---
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockSheetExtractor ---
type MockSheetExtractor struct {
	mock.Mock
}

func (m *MockSheetExtractor) Extract(ctx context.Context, sheet []byte) (map[int]string, error) {
	args := m.Called(ctx, sheet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]string), args.Error(1)
}

// --- MockSheetArchive ---
type MockSheetArchive struct {
	mock.Mock
}

func (m *MockSheetArchive) Store(ctx context.Context, objectName string, content []byte, contentType string) error {
	args := m.Called(ctx, objectName, content, contentType)
	return args.Error(0)
}
