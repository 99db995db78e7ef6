package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"omr-eval/internal/handler"
	"omr-eval/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const (
	testCollegeID = "01HZX3J6M2Q8R5T7V9W0Y1Z2C0"
	testBatchID   = "01HZX3J6M2Q8R5T7V9W0Y1Z2B0"
)

type testServices struct {
	auth        *MockAuthService
	batches     *MockBatchService
	answerKeys  *MockAnswerKeyService
	evaluations *MockEvaluationService
}

func newTestApp() (*fiber.App, *testServices) {
	svcs := &testServices{
		auth:        &MockAuthService{},
		batches:     &MockBatchService{},
		answerKeys:  &MockAnswerKeyService{},
		evaluations: &MockEvaluationService{},
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app, handler.Handlers{
		Auth:       handler.NewAuthHandler(svcs.auth),
		Batch:      handler.NewBatchHandler(svcs.batches, svcs.answerKeys),
		Evaluation: handler.NewEvaluationHandler(svcs.evaluations),
	}, svcs.auth, handler.AuthRateLimit{})
	return app, svcs
}

type formFile struct {
	field, name string
	content     []byte
}

func multipartRequest(t *testing.T, method, url string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, url, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer token")
	return req
}

func jsonRequest(t *testing.T, method, url string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer token")
	return req
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
