package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/repository"
)

const bcryptCost = 10

// AuthResult bundles the authenticated user with a fresh token pair.
type AuthResult struct {
	User   *models.User
	Tokens *TokenPair
}

type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.User, *ServiceError)
	Login(ctx context.Context, email, password string) (*AuthResult, *ServiceError)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, *ServiceError)
	Logout(ctx context.Context, refreshToken string) *ServiceError
}

type authServiceImpl struct {
	users  repository.UserRepository
	tokens *TokenService
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, logger *zap.Logger) AuthService {
	return &authServiceImpl{users: users, tokens: tokens, logger: logger}
}

func (s *authServiceImpl) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, *ServiceError) {
	_, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, &ServiceError{StatusCode: 409, Message: "Email already registered"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check existing user", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create account"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create account"}
	}

	user := &models.User{
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      "user",
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create account"}
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, *ServiceError) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, &ServiceError{StatusCode: 401, Message: "Invalid email or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, &ServiceError{StatusCode: 401, Message: "Invalid email or password"}
	}

	pair, err := s.tokens.GenerateTokenPair(tokenClaimsFor(user))
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to log in"}
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		s.logger.Error("Failed to persist refresh token", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to log in"}
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh rotates the refresh token. The presented token must both verify
// and match the one stored on the user row, so a token cleared by logout
// is unusable even before it expires.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*AuthResult, *ServiceError) {
	if _, err := s.tokens.ValidateRefreshToken(refreshToken); err != nil {
		return nil, &ServiceError{StatusCode: 401, Message: "Invalid refresh token"}
	}

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, &ServiceError{StatusCode: 401, Message: "Invalid refresh token"}
	}

	pair, err := s.tokens.GenerateTokenPair(tokenClaimsFor(user))
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to refresh session"}
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		s.logger.Error("Failed to persist refresh token", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to refresh session"}
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) *ServiceError {
	if refreshToken == "" {
		return nil
	}
	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		// Unknown token, nothing to clear.
		return nil
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, ""); err != nil {
		s.logger.Error("Failed to clear refresh token", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to log out"}
	}
	return nil
}

func tokenClaimsFor(user *models.User) TokenClaims {
	tc := TokenClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
	}
	if user.StripeCustomerID != nil {
		tc.StripeCustomerID = *user.StripeCustomerID
	}
	return tc
}
