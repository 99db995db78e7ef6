package handler_test

import (
	"context"
	"time"

	"omr-eval/internal/domain"
	"omr-eval/internal/dto"
	"omr-eval/internal/service"
)

// --- Manual Mocks ---

// MockAuthService
type MockAuthService struct {
	SignupFunc      func(ctx context.Context, name, email, password string) (*domain.College, error)
	LoginFunc       func(ctx context.Context, email, password string) (string, *domain.College, error)
	ValidateJWTFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (*domain.College, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, name, email, password)
	}
	panic("MockAuthService.SignupFunc not implemented")
}
func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *domain.College, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	panic("MockAuthService.LoginFunc not implemented")
}
func (m *MockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	return &dto.AuthClaims{CollegeID: testCollegeID, TokenType: "access"}, nil
}
func (m *MockAuthService) CreateJWT(ctx context.Context, college *domain.College, ttl time.Duration, tokenType string) (string, error) {
	panic("MockAuthService.CreateJWT not implemented")
}
func (m *MockAuthService) AccessTokenTTL() time.Duration {
	return time.Hour
}

// MockBatchService
type MockBatchService struct {
	CreateBatchFunc func(ctx context.Context, collegeID, name string) (*domain.Batch, error)
	ListBatchesFunc func(ctx context.Context, collegeID string) ([]*domain.Batch, error)
	GetBatchFunc    func(ctx context.Context, collegeID, batchID string) (*domain.Batch, error)
}

func (m *MockBatchService) CreateBatch(ctx context.Context, collegeID, name string) (*domain.Batch, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, collegeID, name)
	}
	panic("MockBatchService.CreateBatchFunc not implemented")
}
func (m *MockBatchService) ListBatches(ctx context.Context, collegeID string) ([]*domain.Batch, error) {
	if m.ListBatchesFunc != nil {
		return m.ListBatchesFunc(ctx, collegeID)
	}
	panic("MockBatchService.ListBatchesFunc not implemented")
}
func (m *MockBatchService) GetBatch(ctx context.Context, collegeID, batchID string) (*domain.Batch, error) {
	if m.GetBatchFunc != nil {
		return m.GetBatchFunc(ctx, collegeID, batchID)
	}
	panic("MockBatchService.GetBatchFunc not implemented")
}

// MockAnswerKeyService
type MockAnswerKeyService struct {
	UploadAnswerKeyFunc func(ctx context.Context, collegeID, batchID, filename string, content []byte) (*domain.StoredAnswerKey, error)
	GetAnswerKeyFunc    func(ctx context.Context, batchID string) (*domain.StoredAnswerKey, error)
}

func (m *MockAnswerKeyService) UploadAnswerKey(ctx context.Context, collegeID, batchID, filename string, content []byte) (*domain.StoredAnswerKey, error) {
	if m.UploadAnswerKeyFunc != nil {
		return m.UploadAnswerKeyFunc(ctx, collegeID, batchID, filename, content)
	}
	panic("MockAnswerKeyService.UploadAnswerKeyFunc not implemented")
}
func (m *MockAnswerKeyService) GetAnswerKey(ctx context.Context, batchID string) (*domain.StoredAnswerKey, error) {
	if m.GetAnswerKeyFunc != nil {
		return m.GetAnswerKeyFunc(ctx, batchID)
	}
	panic("MockAnswerKeyService.GetAnswerKeyFunc not implemented")
}

// MockEvaluationService
type MockEvaluationService struct {
	EvaluateStudentFunc func(ctx context.Context, collegeID, batchID string, meta domain.StudentMeta, sheet service.SheetUpload) (*domain.EvaluationResult, error)
	EvaluateSheetsFunc  func(ctx context.Context, collegeID, batchID string, sheets []service.SheetUpload) ([]service.SheetOutcome, error)
	ListResultsFunc     func(ctx context.Context, collegeID, batchID string) ([]*domain.EvaluationResult, error)
	ExportResultsFunc   func(ctx context.Context, collegeID, batchID string, format service.ExportFormat) (*service.ExportFile, error)
}

func (m *MockEvaluationService) EvaluateStudent(ctx context.Context, collegeID, batchID string, meta domain.StudentMeta, sheet service.SheetUpload) (*domain.EvaluationResult, error) {
	if m.EvaluateStudentFunc != nil {
		return m.EvaluateStudentFunc(ctx, collegeID, batchID, meta, sheet)
	}
	panic("MockEvaluationService.EvaluateStudentFunc not implemented")
}
func (m *MockEvaluationService) EvaluateSheets(ctx context.Context, collegeID, batchID string, sheets []service.SheetUpload) ([]service.SheetOutcome, error) {
	if m.EvaluateSheetsFunc != nil {
		return m.EvaluateSheetsFunc(ctx, collegeID, batchID, sheets)
	}
	panic("MockEvaluationService.EvaluateSheetsFunc not implemented")
}
func (m *MockEvaluationService) ListResults(ctx context.Context, collegeID, batchID string) ([]*domain.EvaluationResult, error) {
	if m.ListResultsFunc != nil {
		return m.ListResultsFunc(ctx, collegeID, batchID)
	}
	panic("MockEvaluationService.ListResultsFunc not implemented")
}
func (m *MockEvaluationService) ExportResults(ctx context.Context, collegeID, batchID string, format service.ExportFormat) (*service.ExportFile, error) {
	if m.ExportResultsFunc != nil {
		return m.ExportResultsFunc(ctx, collegeID, batchID, format)
	}
	panic("MockEvaluationService.ExportResultsFunc not implemented")
}
