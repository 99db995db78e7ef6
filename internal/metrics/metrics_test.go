package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsFinalStatus(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusTeapot).SendString(err.Error())
		},
	})
	app.Use(Middleware())
	app.Get("/ok/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c *fiber.Ctx) error { return errors.New("boom") })

	okBefore := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/ok/:id", "200"))
	failBefore := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/fail", "418"))

	resp, err := app.Test(httptest.NewRequest("GET", "/ok/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/ok/:id", "200")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/fail", "418")))
}

func TestHandler_ExposesDomainCollectors(t *testing.T) {
	Evaluations.WithLabelValues(OutcomeSuccess).Inc()
	Scores.Observe(73)

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "omr_evaluations_total")
	assert.Contains(t, string(body), "omr_evaluation_score_bucket")
}
