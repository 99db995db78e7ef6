package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"omr-eval/internal/answerkey"
	"omr-eval/internal/cache"
	"omr-eval/internal/config"
	"omr-eval/internal/domain"
	"omr-eval/internal/logger"
	"omr-eval/internal/metrics"
	"omr-eval/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultAnswerKeyTTL = time.Hour

// AnswerKeyService stores the official key of each batch. Reads go through
// the cache when one is configured.
type AnswerKeyService interface {
	UploadAnswerKey(ctx context.Context, collegeID, batchID, filename string, content []byte) (*domain.StoredAnswerKey, error)
	// GetAnswerKey returns nil, nil when the batch has no key yet.
	GetAnswerKey(ctx context.Context, batchID string) (*domain.StoredAnswerKey, error)
}

type cachedAnswerKey struct {
	ID        string           `json:"id"`
	BatchID   string           `json:"batch_id"`
	CollegeID string           `json:"college_id"`
	Format    string           `json:"format"`
	Answers   domain.AnswerKey `json:"answers"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type answerKeyServiceImpl struct {
	repo     domain.AnswerKeyRepository
	batches  BatchService
	cache    domain.Cache
	archive  domain.SheetArchive
	cacheTTL time.Duration
	loads    singleflight.Group

	// generations counts uploads per batch. A cache fill from a read that
	// overlapped an upload is dropped.
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewAnswerKeyService wires the service. cache and archive may be nil.
func NewAnswerKeyService(
	repo domain.AnswerKeyRepository,
	batches BatchService,
	cache domain.Cache,
	archive domain.SheetArchive,
	cfg *config.Config,
) AnswerKeyService {
	return &answerKeyServiceImpl{
		repo:        repo,
		batches:     batches,
		cache:       cache,
		archive:     archive,
		cacheTTL:    cfg.ParseTTLStringOrDefault(cfg.Cache.AnswerKeyTTL, defaultAnswerKeyTTL),
		generations: make(map[string]uint64),
	}
}

func (s *answerKeyServiceImpl) UploadAnswerKey(ctx context.Context, collegeID, batchID, filename string, content []byte) (*domain.StoredAnswerKey, error) {
	appLogger := logger.Get().With(zap.String("collegeID", collegeID), zap.String("batchID", batchID))

	if _, err := s.batches.GetBatch(ctx, collegeID, batchID); err != nil {
		return nil, err
	}

	format, ok := answerkey.FormatFromFilename(filename)
	if !ok {
		metrics.AnswerKeyUploads.WithLabelValues("unknown", metrics.OutcomeFailure).Inc()
		return nil, domain.NewUnsupportedFormatError(filename)
	}

	key, err := answerkey.Normalize(content, format)
	if err != nil {
		metrics.AnswerKeyUploads.WithLabelValues(string(format), metrics.OutcomeFailure).Inc()
		appLogger.Warn("Rejected answer key", zap.String("filename", filename), zap.Error(err))
		return nil, err
	}

	s.archiveUpload(ctx, collegeID, batchID, filename, content)

	stored := &domain.StoredAnswerKey{
		BatchID:   batchID,
		CollegeID: collegeID,
		Key:       key,
		Format:    string(format),
	}
	if err := s.repo.SaveAnswerKey(ctx, stored); err != nil {
		metrics.AnswerKeyUploads.WithLabelValues(string(format), metrics.OutcomeFailure).Inc()
		return nil, domain.NewInternalError("failed to save answer key", err)
	}
	s.loads.Forget(batchID)
	s.genMu.Lock()
	s.generations[batchID]++
	s.putCache(ctx, stored)
	s.genMu.Unlock()

	metrics.AnswerKeyUploads.WithLabelValues(string(format), metrics.OutcomeSuccess).Inc()
	appLogger.Info("Answer key stored", zap.String("format", stored.Format), zap.Int("answered", countAnswered(key)))
	return stored, nil
}

func (s *answerKeyServiceImpl) GetAnswerKey(ctx context.Context, batchID string) (*domain.StoredAnswerKey, error) {
	if cached := s.getCache(ctx, batchID); cached != nil {
		return cached, nil
	}

	v, err, _ := s.loads.Do(batchID, func() (interface{}, error) {
		gen := s.generation(batchID)
		stored, err := s.repo.GetAnswerKeyByBatch(ctx, batchID)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			s.fillCache(ctx, batchID, stored, gen)
		}
		return stored, nil
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to load answer key", err)
	}
	stored, _ := v.(*domain.StoredAnswerKey)
	return stored, nil
}

func (s *answerKeyServiceImpl) getCache(ctx context.Context, batchID string) *domain.StoredAnswerKey {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, cache.AnswerKeyCacheKey(batchID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Answer key cache read failed", zap.String("batchID", batchID), zap.Error(err))
		}
		return nil
	}
	var c cachedAnswerKey
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		logger.Get().Warn("Discarding corrupt cached answer key", zap.String("batchID", batchID), zap.Error(err))
		return nil
	}
	return &domain.StoredAnswerKey{
		ID:        c.ID,
		BatchID:   c.BatchID,
		CollegeID: c.CollegeID,
		Key:       c.Answers,
		Format:    c.Format,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *answerKeyServiceImpl) generation(batchID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[batchID]
}

// fillCache stores a key read from the database unless an upload for the
// batch happened after the read started.
func (s *answerKeyServiceImpl) fillCache(ctx context.Context, batchID string, stored *domain.StoredAnswerKey, readGen uint64) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[batchID] != readGen {
		logger.Get().Debug("Skipped stale answer key cache fill", zap.String("batchID", batchID))
		return
	}
	s.putCache(ctx, stored)
}

func (s *answerKeyServiceImpl) putCache(ctx context.Context, stored *domain.StoredAnswerKey) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedAnswerKey{
		ID:        stored.ID,
		BatchID:   stored.BatchID,
		CollegeID: stored.CollegeID,
		Format:    stored.Format,
		Answers:   stored.Key,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.AnswerKeyCacheKey(stored.BatchID), string(raw), s.cacheTTL); err != nil {
		logger.Get().Warn("Answer key cache write failed", zap.String("batchID", stored.BatchID), zap.Error(err))
	}
}

// archiveUpload keeps the raw upload. Failures are logged, never returned.
func (s *answerKeyServiceImpl) archiveUpload(ctx context.Context, collegeID, batchID, filename string, content []byte) {
	if s.archive == nil {
		return
	}
	object := strings.Join([]string{collegeID, batchID, "answer-keys", util.NewULID() + strings.ToLower(filepath.Ext(filename))}, "/")
	if err := s.archive.Store(ctx, object, content, "application/octet-stream"); err != nil {
		logger.Get().Warn("Failed to archive answer key", zap.String("batchID", batchID), zap.Error(err))
	}
}

func countAnswered(key domain.AnswerKey) int {
	n := 0
	for q := 1; q <= domain.TotalQuestions; q++ {
		if key.Get(q) != "" {
			n++
		}
	}
	return n
}
