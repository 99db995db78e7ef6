package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"omr-eval/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testCacheKey = "omreval:answerkey:batch:" + testBatchID

type answerKeyFixture struct {
	svc       AnswerKeyService
	repo      *MockAnswerKeyRepository
	batchRepo *MockBatchRepository
	cache     *MockCache
	archive   *MockSheetArchive
}

func newAnswerKeyFixture(withCache bool) *answerKeyFixture {
	f := &answerKeyFixture{
		repo:      new(MockAnswerKeyRepository),
		batchRepo: new(MockBatchRepository),
		archive:   new(MockSheetArchive),
	}
	var c domain.Cache
	if withCache {
		f.cache = new(MockCache)
		c = f.cache
	}
	f.batchRepo.On("GetBatchByID", mock.Anything, testBatchID).Return(testBatch(), nil).Maybe()
	f.svc = NewAnswerKeyService(f.repo, NewBatchService(f.batchRepo), c, f.archive, testConfig())
	return f
}

func TestUploadAnswerKey_JSON(t *testing.T) {
	f := newAnswerKeyFixture(true)
	ctx := context.Background()

	f.archive.On("Store", ctx, mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, testCollegeID+"/"+testBatchID+"/answer-keys/") && strings.HasSuffix(name, ".json")
	}), mock.Anything, "application/octet-stream").Return(nil)
	f.repo.On("SaveAnswerKey", ctx, mock.MatchedBy(func(k *domain.StoredAnswerKey) bool {
		return k.BatchID == testBatchID && k.Format == "json" && k.Key.Get(1) == "a" && k.Key.Get(2) == "b,d"
	})).Return(nil)
	f.cache.On("Set", ctx, testCacheKey, mock.Anything, time.Hour).Return(nil)

	stored, err := f.svc.UploadAnswerKey(ctx, testCollegeID, testBatchID, "key.json", []byte(`{"1":"A","2":"b,d"}`))

	require.NoError(t, err)
	assert.Equal(t, "a", stored.Key.Get(1))
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.archive.AssertExpectations(t)
}

func TestUploadAnswerKey_UnsupportedExtension(t *testing.T) {
	f := newAnswerKeyFixture(true)

	_, err := f.svc.UploadAnswerKey(context.Background(), testCollegeID, testBatchID, "key.pdf", []byte("%PDF"))

	requireCode(t, err, domain.CodeUnsupportedFormat)
	f.repo.AssertNotCalled(t, "SaveAnswerKey", mock.Anything, mock.Anything)
	f.archive.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadAnswerKey_MalformedKeepsPreviousKey(t *testing.T) {
	f := newAnswerKeyFixture(true)

	_, err := f.svc.UploadAnswerKey(context.Background(), testCollegeID, testBatchID, "key.json", []byte(`{"1":`))

	assert.ErrorIs(t, err, domain.ErrMalformedAnswerKey)
	f.repo.AssertNotCalled(t, "SaveAnswerKey", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadAnswerKey_ForeignBatch(t *testing.T) {
	f := newAnswerKeyFixture(false)

	_, err := f.svc.UploadAnswerKey(context.Background(), "other-college", testBatchID, "key.json", []byte(`{}`))

	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestUploadAnswerKey_ArchiveFailureIsNotFatal(t *testing.T) {
	f := newAnswerKeyFixture(false)

	f.archive.On("Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))
	f.repo.On("SaveAnswerKey", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.UploadAnswerKey(context.Background(), testCollegeID, testBatchID, "key.csv", []byte("1-a\n"))

	require.NoError(t, err)
}

func TestGetAnswerKey_CacheHit(t *testing.T) {
	f := newAnswerKeyFixture(true)
	ctx := context.Background()

	raw, err := json.Marshal(cachedAnswerKey{BatchID: testBatchID, Format: "csv", Answers: domain.NewAnswerKey(map[int]string{7: "c"})})
	require.NoError(t, err)
	f.cache.On("Get", ctx, testCacheKey).Return(string(raw), nil)

	stored, err := f.svc.GetAnswerKey(ctx, testBatchID)

	require.NoError(t, err)
	assert.Equal(t, "c", stored.Key.Get(7))
	f.repo.AssertNotCalled(t, "GetAnswerKeyByBatch", mock.Anything, mock.Anything)
}

func TestGetAnswerKey_CacheMissLoadsAndFills(t *testing.T) {
	f := newAnswerKeyFixture(true)
	ctx := context.Background()
	stored := &domain.StoredAnswerKey{BatchID: testBatchID, Format: "json", Key: domain.NewAnswerKey(map[int]string{1: "a"})}

	f.cache.On("Get", ctx, testCacheKey).Return("", domain.ErrCacheMiss)
	f.repo.On("GetAnswerKeyByBatch", ctx, testBatchID).Return(stored, nil).Once()
	f.cache.On("Set", ctx, testCacheKey, mock.MatchedBy(func(v string) bool {
		return strings.Contains(v, `"1":"a"`)
	}), time.Hour).Return(nil)

	got, err := f.svc.GetAnswerKey(ctx, testBatchID)

	require.NoError(t, err)
	assert.Equal(t, stored, got)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestGetAnswerKey_Absent(t *testing.T) {
	f := newAnswerKeyFixture(true)

	f.cache.On("Get", mock.Anything, testCacheKey).Return("", domain.ErrCacheMiss)
	f.repo.On("GetAnswerKeyByBatch", mock.Anything, testBatchID).Return(nil, nil)

	got, err := f.svc.GetAnswerKey(context.Background(), testBatchID)

	assert.NoError(t, err)
	assert.Nil(t, got)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAnswerKey_CacheErrorFallsBackToRepository(t *testing.T) {
	f := newAnswerKeyFixture(true)
	stored := &domain.StoredAnswerKey{BatchID: testBatchID}

	f.cache.On("Get", mock.Anything, testCacheKey).Return("", errors.New("redis: connection refused"))
	f.repo.On("GetAnswerKeyByBatch", mock.Anything, testBatchID).Return(stored, nil)
	f.cache.On("Set", mock.Anything, testCacheKey, mock.Anything, time.Hour).Return(errors.New("redis: connection refused"))

	got, err := f.svc.GetAnswerKey(context.Background(), testBatchID)

	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestGetAnswerKey_RepositoryError(t *testing.T) {
	f := newAnswerKeyFixture(false)
	f.repo.On("GetAnswerKeyByBatch", mock.Anything, testBatchID).Return(nil, errors.New("db down"))

	_, err := f.svc.GetAnswerKey(context.Background(), testBatchID)

	requireCode(t, err, domain.CodeInternal)
}

func TestGetAnswerKey_ReadOverlappingUploadDoesNotCacheOldKey(t *testing.T) {
	f := newAnswerKeyFixture(true)
	ctx := context.Background()
	old := &domain.StoredAnswerKey{BatchID: testBatchID, Format: "json", Key: domain.NewAnswerKey(map[int]string{1: "a"})}

	readStarted := make(chan struct{})
	releaseRead := make(chan struct{})
	var cached []string

	f.cache.On("Get", mock.Anything, testCacheKey).Return("", domain.ErrCacheMiss)
	f.cache.On("Set", mock.Anything, testCacheKey, mock.Anything, time.Hour).
		Run(func(args mock.Arguments) { cached = append(cached, args.String(2)) }).
		Return(nil)
	f.repo.On("GetAnswerKeyByBatch", mock.Anything, testBatchID).
		Run(func(mock.Arguments) {
			close(readStarted)
			<-releaseRead
		}).
		Return(old, nil).Once()
	f.repo.On("SaveAnswerKey", mock.Anything, mock.Anything).Return(nil)
	f.archive.On("Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	done := make(chan *domain.StoredAnswerKey)
	go func() {
		got, err := f.svc.GetAnswerKey(ctx, testBatchID)
		assert.NoError(t, err)
		done <- got
	}()

	<-readStarted
	_, err := f.svc.UploadAnswerKey(ctx, testCollegeID, testBatchID, "key.json", []byte(`{"1":"b"}`))
	require.NoError(t, err)
	close(releaseRead)
	<-done

	require.Len(t, cached, 1)
	assert.Contains(t, cached[0], `"1":"b"`)
}
