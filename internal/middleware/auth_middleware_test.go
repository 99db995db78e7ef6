package middleware_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"omr-eval/internal/dto"
	"omr-eval/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Manual mock for middleware.TokenValidator
type ManualMockTokenValidator struct {
	ValidateJWTFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *ManualMockTokenValidator) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	return nil, errors.New("ValidateJWTFunc not set on mock")
}

func TestProtected(t *testing.T) {
	tests := []struct {
		name            string
		authHeader      string
		validate        func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
		expectedStatus  int
		expectedCollege string
	}{
		{
			name:           "No Auth Header",
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "Basic scheme",
			authHeader:     "Basic abc",
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "Bearer without token",
			authHeader:     "Bearer ",
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "Invalid token",
			authHeader: "Bearer broken",
			validate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				return nil, errors.New("signature is invalid")
			},
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "Wrong token type",
			authHeader: "Bearer refresh",
			validate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				return &dto.AuthClaims{CollegeID: "c1", TokenType: "refresh"}, nil
			},
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "Valid access token",
			authHeader: "Bearer good",
			validate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				assert.Equal(t, "good", tokenString)
				return &dto.AuthClaims{CollegeID: "c1", TokenType: "access"}, nil
			},
			expectedStatus:  fiber.StatusOK,
			expectedCollege: "c1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockValidator := &ManualMockTokenValidator{ValidateJWTFunc: tc.validate}
			var seenCollege string
			nextCalled := false

			app := fiber.New()
			app.Get("/", middleware.Protected(mockValidator), func(c *fiber.Ctx) error {
				nextCalled = true
				seenCollege = middleware.CollegeID(c)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tc.authHeader != "" {
				req.Header.Set(middleware.AuthorizationHeader, tc.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			assert.Equal(t, tc.expectedStatus == fiber.StatusOK, nextCalled)
			assert.Equal(t, tc.expectedCollege, seenCollege)
		})
	}
}
