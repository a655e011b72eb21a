package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenPair holds the generated access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims is the identity carried inside every token.
type TokenClaims struct {
	UserID           string
	Email            string
	Role             string
	StripeCustomerID string
}

// TokenService creates and validates JWTs. Access and refresh tokens are
// signed with separate secrets so a leaked access secret cannot mint
// long-lived refresh tokens.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenService(accessSecret, refreshSecret string) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// GenerateTokenPair creates a new access and refresh token pair.
func (s *TokenService) GenerateTokenPair(claims TokenClaims) (*TokenPair, error) {
	accessToken, err := s.generateToken(claims, "access", AccessTokenTTL, s.accessSecret)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(claims, "refresh", RefreshTokenTTL, s.refreshSecret)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ValidateRefreshToken parses a refresh token and returns its claims.
func (s *TokenService) ValidateRefreshToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != "refresh" {
		return nil, fmt.Errorf("invalid token type")
	}
	return claims, nil
}

func (s *TokenService) generateToken(tc TokenClaims, tokenType string, duration time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   tc.UserID,
		"email": tc.Email,
		"role":  tc.Role,
		"typ":   tokenType,
		"exp":   now.Add(duration).Unix(),
		"iat":   now.Unix(),
	}
	if tc.StripeCustomerID != "" {
		claims["customerId"] = tc.StripeCustomerID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
