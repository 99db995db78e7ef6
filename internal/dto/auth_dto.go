package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	CollegeID string `json:"college_id"`
	TokenType string `json:"token_type"` // "access"
	jwt.RegisteredClaims
}

// SignupRequest is the body of POST /api/auth/signup.
// @Description Request body for registering a college
type SignupRequest struct {
	Name     string `json:"name" example:"North Campus College"`
	Email    string `json:"email" example:"admin@north.edu"`
	Password string `json:"password" example:"s3cret-pass"`
}

// LoginRequest is the body of POST /api/auth/login.
// @Description Request body for logging in
type LoginRequest struct {
	Email    string `json:"email" example:"admin@north.edu"`
	Password string `json:"password" example:"s3cret-pass"`
}

// CollegeResponse is the public profile of a college.
type CollegeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse represents a successful login.
// @Description Response body for authentication tokens
type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type" example:"Bearer"`
	ExpiresIn   int64           `json:"expires_in" example:"86400"`
	College     CollegeResponse `json:"college"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}
