package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload for access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenService handles JWT access token issuance and validation.
type TokenService struct {
	secret         []byte
	accessTokenTTL time.Duration
}

// NewTokenService creates a TokenService with the given signing secret and TTL.
func NewTokenService(secret []byte, accessTTL time.Duration) *TokenService {
	return &TokenService{
		secret:         secret,
		accessTokenTTL: accessTTL,
	}
}

// IssueAccessToken generates a signed JWT access token for the given subject.
func (s *TokenService) IssueAccessToken(subject, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			Issuer:    "vitalscope",
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and validates a JWT access token, returning the claims.
func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}
