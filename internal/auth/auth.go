package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"postforlife/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller, built from a verified access token and
// passed explicitly to handlers.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

type AccessClaims struct {
	UserID string `json:"_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

func NewTokenManager(cfg *config.Config) *TokenManager {
	refreshSecret := cfg.JWTRefreshSecretKey
	if refreshSecret == "" {
		refreshSecret = cfg.JWTSecretKey
	}

	return &TokenManager{
		accessSecret:    []byte(cfg.JWTSecretKey),
		refreshSecret:   []byte(refreshSecret),
		accessDuration:  cfg.AccessTokenDuration,
		refreshDuration: cfg.RefreshTokenDuration,
		now:             time.Now,
	}
}

// IssueAccess signs a short-lived token carrying the user id and role.
func (m *TokenManager) IssueAccess(userID, role string) (string, error) {
	now := m.now()
	claims := AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessDuration)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// IssueRefresh signs a long-lived token carrying only the user id. The jti
// keeps two refresh tokens issued in the same second distinct.
func (m *TokenManager) IssueRefresh(userID string) (string, error) {
	now := m.now()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshDuration)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

func (m *TokenManager) ParseAccess(tokenString string) (Identity, error) {
	var claims AccessClaims
	if err := m.parse(tokenString, &claims, m.accessSecret); err != nil {
		return Identity{}, err
	}

	if claims.UserID == "" || claims.Role == "" {
		return Identity{}, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}

	return Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// ParseRefresh returns the user id carried by a refresh token.
func (m *TokenManager) ParseRefresh(tokenString string) (string, error) {
	var claims RefreshClaims
	if err := m.parse(tokenString, &claims, m.refreshSecret); err != nil {
		return "", err
	}

	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}

	return claims.UserID, nil
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
