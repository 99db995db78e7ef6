package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"omr-eval/internal/config"
	"omr-eval/internal/domain"
	"omr-eval/internal/logger"
	"omr-eval/internal/metrics"
	"omr-eval/internal/util"
	"omr-eval/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const studentSourceOMR = "omr_upload"

// SheetUpload is one uploaded OMR sheet.
type SheetUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SheetOutcome reports one sheet of a bulk evaluation. Exactly one of Result
// and Err is set.
type SheetOutcome struct {
	Filename  string
	StudentID string
	Result    *domain.EvaluationResult
	Err       error
}

// EvaluationService scores OMR sheets against the batch's answer key and
// keeps the append-only result log.
type EvaluationService interface {
	EvaluateStudent(ctx context.Context, collegeID, batchID string, meta domain.StudentMeta, sheet SheetUpload) (*domain.EvaluationResult, error)
	EvaluateSheets(ctx context.Context, collegeID, batchID string, sheets []SheetUpload) ([]SheetOutcome, error)
	ListResults(ctx context.Context, collegeID, batchID string) ([]*domain.EvaluationResult, error)
	ExportResults(ctx context.Context, collegeID, batchID string, format ExportFormat) (*ExportFile, error)
}

type evaluationServiceImpl struct {
	batches     BatchService
	answerKeys  AnswerKeyService
	extractor   domain.SheetExtractor
	students    domain.StudentRepository
	results     domain.EvaluationResultRepository
	tx          domain.TransactionManager
	archive     domain.SheetArchive
	validator   *validation.Validator
	maxParallel int
}

// NewEvaluationService wires the service. archive may be nil.
func NewEvaluationService(
	batches BatchService,
	answerKeys AnswerKeyService,
	extractor domain.SheetExtractor,
	students domain.StudentRepository,
	results domain.EvaluationResultRepository,
	tx domain.TransactionManager,
	archive domain.SheetArchive,
	cfg *config.Config,
) EvaluationService {
	maxParallel := cfg.Evaluation.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &evaluationServiceImpl{
		batches:     batches,
		answerKeys:  answerKeys,
		extractor:   extractor,
		students:    students,
		results:     results,
		tx:          tx,
		archive:     archive,
		validator:   validation.NewValidator(),
		maxParallel: maxParallel,
	}
}

func (s *evaluationServiceImpl) EvaluateStudent(ctx context.Context, collegeID, batchID string, meta domain.StudentMeta, sheet SheetUpload) (*domain.EvaluationResult, error) {
	meta.StudentID = strings.TrimSpace(meta.StudentID)
	meta.Name = strings.TrimSpace(meta.Name)
	if errs := s.validator.ValidateStudent(meta.StudentID, meta.Name); len(errs) > 0 {
		return nil, errs
	}

	key, err := s.loadKey(ctx, collegeID, batchID)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, collegeID, batchID, key, meta, sheet)
}

func (s *evaluationServiceImpl) EvaluateSheets(ctx context.Context, collegeID, batchID string, sheets []SheetUpload) ([]SheetOutcome, error) {
	if len(sheets) == 0 {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("sheets")}
	}
	key, err := s.loadKey(ctx, collegeID, batchID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]SheetOutcome, len(sheets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i, sheet := range sheets {
		studentID := StudentIDFromFilename(sheet.Filename)
		outcomes[i] = SheetOutcome{Filename: sheet.Filename, StudentID: studentID}

		g.Go(func() error {
			if errs := s.validator.ValidateStudentID(studentID); len(errs) > 0 {
				outcomes[i].Err = errs
				return nil
			}
			result, err := s.evaluate(gctx, collegeID, batchID, key, domain.StudentMeta{StudentID: studentID}, sheet)
			outcomes[i].Result, outcomes[i].Err = result, err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	logger.Get().Info("Bulk evaluation finished",
		zap.String("batchID", batchID),
		zap.Int("sheets", len(sheets)),
		zap.Int("failed", failed),
	)
	return outcomes, nil
}

func (s *evaluationServiceImpl) ListResults(ctx context.Context, collegeID, batchID string) ([]*domain.EvaluationResult, error) {
	if _, err := s.batches.GetBatch(ctx, collegeID, batchID); err != nil {
		return nil, err
	}
	results, err := s.results.ListResultsByBatch(ctx, batchID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list results", err)
	}
	return results, nil
}

// loadKey checks batch ownership and fails with MissingAnswerKey before any
// sheet is read.
func (s *evaluationServiceImpl) loadKey(ctx context.Context, collegeID, batchID string) (domain.AnswerKey, error) {
	if _, err := s.batches.GetBatch(ctx, collegeID, batchID); err != nil {
		return domain.AnswerKey{}, err
	}
	stored, err := s.answerKeys.GetAnswerKey(ctx, batchID)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	if stored == nil {
		return domain.AnswerKey{}, domain.NewMissingAnswerKeyError(batchID)
	}
	return stored.Key, nil
}

func (s *evaluationServiceImpl) evaluate(ctx context.Context, collegeID, batchID string, key domain.AnswerKey, meta domain.StudentMeta, sheet SheetUpload) (*domain.EvaluationResult, error) {
	appLogger := logger.Get().With(zap.String("batchID", batchID), zap.String("studentID", meta.StudentID))

	answers, err := s.extractor.Extract(ctx, sheet.Content)
	if err != nil {
		metrics.Evaluations.WithLabelValues(metrics.OutcomeFailure).Inc()
		appLogger.Warn("Sheet extraction failed", zap.String("filename", sheet.Filename), zap.Error(err))
		return nil, domain.NewExtractionFailedError(err).WithContext("filename", sheet.Filename)
	}

	result := &domain.EvaluationResult{
		ID:        util.NewULID(),
		CollegeID: collegeID,
		BatchID:   batchID,
		StudentID: meta.StudentID,
		Name:      meta.Name,
		Outcome:   domain.Score(key, answers),
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		student := &domain.Student{
			StudentID: meta.StudentID,
			CollegeID: collegeID,
			BatchID:   batchID,
			Name:      meta.Name,
			Source:    studentSourceOMR,
		}
		if err := s.students.UpsertStudent(txCtx, student); err != nil {
			return err
		}
		return s.results.AppendResult(txCtx, result)
	})
	if err != nil {
		metrics.Evaluations.WithLabelValues(metrics.OutcomeFailure).Inc()
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, domain.NewInternalError("failed to store evaluation result", err)
	}

	// Archived only once the result exists, so objects always name a stored result.
	s.archiveSheet(ctx, result, sheet)

	metrics.Evaluations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.Scores.Observe(float64(result.Outcome.Score))
	appLogger.Info("Sheet evaluated", zap.Int("score", result.Outcome.Score), zap.Int("total", result.Outcome.Total))
	return result, nil
}

func (s *evaluationServiceImpl) archiveSheet(ctx context.Context, result *domain.EvaluationResult, sheet SheetUpload) {
	if s.archive == nil {
		return
	}
	contentType := sheet.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	object := fmt.Sprintf("%s/%s/sheets/%s-%s%s",
		result.CollegeID, result.BatchID, result.StudentID, result.ID, strings.ToLower(filepath.Ext(sheet.Filename)))
	if err := s.archive.Store(ctx, object, sheet.Content, contentType); err != nil {
		logger.Get().Warn("Failed to archive sheet", zap.String("object", object), zap.Error(err))
	}
}

// StudentIDFromFilename returns the file name without directory or extension.
func StudentIDFromFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}
