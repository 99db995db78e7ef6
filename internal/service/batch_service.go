package service

import (
	"context"
	"strings"

	"omr-eval/internal/domain"
	"omr-eval/internal/logger"
	"omr-eval/internal/validation"

	"go.uber.org/zap"
)

// BatchService manages batches. A batch owned by another college is reported
// as not found.
type BatchService interface {
	CreateBatch(ctx context.Context, collegeID, name string) (*domain.Batch, error)
	ListBatches(ctx context.Context, collegeID string) ([]*domain.Batch, error)
	GetBatch(ctx context.Context, collegeID, batchID string) (*domain.Batch, error)
}

type batchServiceImpl struct {
	batchRepo domain.BatchRepository
	validator *validation.Validator
}

func NewBatchService(batchRepo domain.BatchRepository) BatchService {
	return &batchServiceImpl{batchRepo: batchRepo, validator: validation.NewValidator()}
}

func (s *batchServiceImpl) CreateBatch(ctx context.Context, collegeID, name string) (*domain.Batch, error) {
	if errs := s.validator.ValidateBatchName(name); len(errs) > 0 {
		return nil, errs
	}
	batch := &domain.Batch{CollegeID: collegeID, Name: strings.TrimSpace(name)}
	if err := s.batchRepo.CreateBatch(ctx, batch); err != nil {
		return nil, domain.NewInternalError("failed to create batch", err)
	}
	logger.Get().Info("Batch created", zap.String("collegeID", collegeID), zap.String("batchID", batch.ID))
	return batch, nil
}

func (s *batchServiceImpl) ListBatches(ctx context.Context, collegeID string) ([]*domain.Batch, error) {
	batches, err := s.batchRepo.ListBatchesByCollege(ctx, collegeID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list batches", err)
	}
	return batches, nil
}

func (s *batchServiceImpl) GetBatch(ctx context.Context, collegeID, batchID string) (*domain.Batch, error) {
	batch, err := s.batchRepo.GetBatchByID(ctx, batchID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get batch", err)
	}
	if batch == nil || batch.CollegeID != collegeID {
		return nil, domain.NewBatchNotFoundError(batchID)
	}
	return batch, nil
}
