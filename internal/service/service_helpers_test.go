package service

import (
	"testing"
	"time"

	"omr-eval/internal/config"
	"omr-eval/internal/domain"

	"github.com/stretchr/testify/require"
)

const (
	testCollegeID = "01HZX3J6M2Q8R5T7V9W0Y1Z2C0"
	testBatchID   = "01HZX3J6M2Q8R5T7V9W0Y1Z2B0"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT:        config.JWTConfig{SecretKey: "0123456789abcdef0123456789abcdef", AccessTokenTTL: time.Hour},
		Cache:      config.CacheConfig{AnswerKeyTTL: "1h"},
		Evaluation: config.EvaluationConfig{MaxParallel: 2},
	}
}

func testBatch() *domain.Batch {
	return &domain.Batch{ID: testBatchID, CollegeID: testCollegeID, Name: "Morning"}
}

func requireCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
}
