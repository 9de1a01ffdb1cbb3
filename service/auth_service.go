package service

import (
	"einvoice-gateway/logger"
	"einvoice-gateway/model"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidServiceToken = errors.New("invalid or expired token")

// AuthService issues and verifies the HS256 tokens internal callers present
// on /api routes.
type AuthService struct {
	secret []byte
	now    func() time.Time
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret), now: time.Now}
}

// IssueServiceToken signs a token naming the calling service. A zero ttl
// issues a token without expiry.
func (s *AuthService) IssueServiceToken(serviceName string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}

	now := s.now()
	claims := &model.ServiceClaims{
		Service: serviceName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  serviceName,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		logger.Log.WithError(err).WithField("service", serviceName).Error("Failed to sign service token")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

// ParseServiceToken verifies tokenString and returns its claims.
func (s *AuthService) ParseServiceToken(tokenString string) (*model.ServiceClaims, error) {
	claims := &model.ServiceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServiceToken, err)
	}
	if claims.Service == "" {
		return nil, fmt.Errorf("%w: missing service claim", ErrInvalidServiceToken)
	}
	return claims, nil
}
