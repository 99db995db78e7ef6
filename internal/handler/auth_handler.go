package handler

import (
	"omr-eval/internal/domain"
	"omr-eval/internal/dto"
	"omr-eval/internal/logger"
	"omr-eval/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup godoc
// @Summary Register a college
// @Description Creates a college account. Emails are unique and case-insensitive.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "College details"
// @Success 201 {object} dto.CollegeResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	college, err := h.authService.Signup(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	logger.Get().Info("College registered", zap.String("collegeID", college.ID))
	return c.Status(fiber.StatusCreated).JSON(toCollegeResponse(college))
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	token, college, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.authService.AccessTokenTTL().Seconds()),
		College:     toCollegeResponse(college),
	})
}

func toCollegeResponse(c *domain.College) dto.CollegeResponse {
	return dto.CollegeResponse{ID: c.ID, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt}
}
