package handler

import (
	"time"

	"omr-eval/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers bundles everything mounted under /api.
type Handlers struct {
	Auth       *AuthHandler
	Batch      *BatchHandler
	Evaluation *EvaluationHandler
}

// AuthRateLimit bounds signup and login attempts per client IP.
type AuthRateLimit struct {
	Max        int
	Expiration time.Duration
}

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(app *fiber.App, h Handlers, tokens middleware.TokenValidator, rate AuthRateLimit) {
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	if rate.Max > 0 {
		authGroup.Use(limiter.New(limiter.Config{
			Max:        rate.Max,
			Expiration: rate.Expiration,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(middleware.ErrorResponse{
					Code:    "RATE_LIMITED",
					Message: "Too many attempts, try again later",
					Status:  fiber.StatusTooManyRequests,
				})
			},
		}))
	}
	authGroup.Post("/signup", h.Auth.Signup)
	authGroup.Post("/login", h.Auth.Login)

	vm := middleware.NewValidationMiddleware()
	batches := api.Group("/batches", middleware.Protected(tokens))
	batches.Get("/", h.Batch.ListBatches)
	batches.Post("/", h.Batch.CreateBatch)

	batch := batches.Group("/:batchID", vm.ValidateBatchParam())
	batch.Get("/", h.Batch.GetBatch)
	batch.Put("/answer-key", h.Batch.UploadAnswerKey)
	batch.Get("/answer-key", h.Batch.GetAnswerKey)
	batch.Post("/evaluations", h.Evaluation.EvaluateStudent)
	batch.Post("/evaluations/bulk", h.Evaluation.EvaluateBulk)
	batch.Get("/results", h.Evaluation.ListResults)
	batch.Get("/results/export", h.Evaluation.ExportResults)
}
