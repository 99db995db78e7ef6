package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"omr-eval/internal/config"
	"omr-eval/internal/domain"
	"omr-eval/internal/dto"
	"omr-eval/internal/logger"
	"omr-eval/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTypeAccess = "access"

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService registers colleges and issues the access tokens that scope
// every other request to one college.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.College, error)
	Login(ctx context.Context, email, password string) (accessToken string, college *domain.College, err error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, college *domain.College, ttl time.Duration, tokenType string) (string, error)
	AccessTokenTTL() time.Duration
}

type authServiceImpl struct {
	collegeRepo domain.CollegeRepository
	validator   *validation.Validator
	jwtCfg      config.JWTConfig
	bcryptCost  int
}

func NewAuthService(collegeRepo domain.CollegeRepository, appConfig *config.Config) (AuthService, error) {
	if len(appConfig.JWT.SecretKey) < 32 {
		return nil, errors.New("jwt secret key must be at least 32 bytes long")
	}
	return &authServiceImpl{
		collegeRepo: collegeRepo,
		validator:   validation.NewValidator(),
		jwtCfg:      appConfig.JWT,
		bcryptCost:  bcrypt.DefaultCost,
	}, nil
}

func (s *authServiceImpl) Signup(ctx context.Context, name, email, password string) (*domain.College, error) {
	if errs := s.validator.ValidateSignup(name, email, password); len(errs) > 0 {
		return nil, errs
	}

	existing, err := s.collegeRepo.GetCollegeByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up college", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("a college with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	college := &domain.College{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.collegeRepo.CreateCollege(ctx, college); err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, domain.NewInternalError("failed to create college", err)
	}

	logger.Get().Info("College registered", zap.String("collegeID", college.ID), zap.String("email", college.Email))
	return college, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, *domain.College, error) {
	if errs := s.validator.ValidateLogin(email, password); len(errs) > 0 {
		return "", nil, errs
	}

	college, err := s.collegeRepo.GetCollegeByEmail(ctx, email)
	if err != nil {
		return "", nil, domain.NewInternalError("failed to look up college", err)
	}
	if college == nil {
		return "", nil, domain.NewNotFoundError("no college is registered with this email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(college.PasswordHash), []byte(password)); err != nil {
		logger.Get().Warn("Login rejected", zap.String("collegeID", college.ID))
		return "", nil, domain.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.CreateJWT(ctx, college, s.jwtCfg.AccessTokenTTL, tokenTypeAccess)
	if err != nil {
		return "", nil, domain.NewInternalError("failed to create access token", err)
	}
	return token, college, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, college *domain.College, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		CollegeID: college.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   college.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return signed, nil
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	claims := &dto.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtCfg.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}
	if !token.Valid || claims.CollegeID == "" {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}

func (s *authServiceImpl) AccessTokenTTL() time.Duration {
	return s.jwtCfg.AccessTokenTTL
}
