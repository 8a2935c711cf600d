package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "folio-api"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

type Claims struct {
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Provider string    `json:"provider"`
	Role     auth.Role `json:"role,omitempty"`
	Type     string    `json:"typ"`
	jwt.RegisteredClaims
}

// Session rebuilds the verified identity carried by the token.
func (c *Claims) Session() *auth.Session {
	return &auth.Session{
		Subject:  c.Subject,
		Email:    c.Email,
		Name:     c.Name,
		Provider: c.Provider,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateTokenPair issues an access token carrying role and a refresh
// token that carries only the identity. The role is looked up again on
// every refresh.
func (s *JWTService) GenerateTokenPair(session *auth.Session, role auth.Role) (*TokenPair, error) {
	now := time.Now()

	accessClaims := Claims{
		Email:    session.Email,
		Name:     session.Name,
		Provider: session.Provider,
		Role:     role,
		Type:     tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   session.Subject,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := Claims{
		Email:    session.Email,
		Name:     session.Name,
		Provider: session.Provider,
		Type:     tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   session.Subject,
			ID:        uuid.New().String(),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Type != tokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse refresh token: %w", err)
	}
	if claims.Type != tokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

func (s *JWTService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
