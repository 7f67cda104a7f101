package utils

import (
	"errors"
	"fmt"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

// NonceLifetime mirrors the one-day validity of host nonces.
const NonceLifetime = 24 * time.Hour

var ErrInvalidNonce = errors.New("invalid nonce")

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

func GenerateToken(payload map[string]interface{}, secretKey string) (string, error) {
	var claims jwt.MapClaims = payload
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// GenerateAdminToken issues a bearer token for a dashboard user.
func GenerateAdminToken(userName string, capabilities []string, ttl time.Duration, secretKey string) (string, error) {
	now := GetCurrentTime()
	return GenerateToken(map[string]interface{}{
		"user_name":    userName,
		"capabilities": capabilities,
		"sub":          userName,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}, secretKey)
}

func CreateNonce(action, secretKey string) (string, error) {
	if secretKey == "" {
		return "", fmt.Errorf("%w: secret key is empty", model.ErrConfigurationMissing)
	}
	now := GetCurrentTime()
	return GenerateToken(map[string]interface{}{
		"action": action,
		"iat":    now.Unix(),
		"exp":    now.Add(NonceLifetime).Unix(),
	}, secretKey)
}

// VerifyNonce checks signature, expiry and that the nonce was issued for action.
func VerifyNonce(nonce, action, secretKey string) error {
	if nonce == "" || secretKey == "" {
		return ErrInvalidNonce
	}
	var claims model.NonceClaims
	token, err := jwt.ParseWithClaims(nonce, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}
	if claims.Action != action {
		return fmt.Errorf("%w: issued for %q", ErrInvalidNonce, claims.Action)
	}
	return nil
}

// ParseAdminToken validates a bearer token and returns its claims.
func ParseAdminToken(raw, secretKey string) (*model.AdminClaims, error) {
	var claims model.AdminClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token invalid")
	}
	return &claims, nil
}
