package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"yt-analytics/infrastructure/logger"
)

const (
	// StateTokenTTL bounds how long an authorization URL stays usable.
	StateTokenTTL = 10 * time.Minute
	dateLayout    = "2006-01-02"
	runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	runIDLength   = 12
)

var ErrInvalidState = errors.New("invalid oauth state")

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// DateStamp formats t as the calendar date used in snapshot file names.
func DateStamp(t time.Time) string {
	return t.Format(dateLayout)
}

// NewRunID returns a short random id tagging one pipeline run.
func NewRunID() string {
	id, err := gonanoid.Generate(runIDAlphabet, runIDLength)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while generate run id")
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id
}

// NewSigningKey returns a random HMAC key that lives for the process.
func NewSigningKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}

func GenerateToken(payload map[string]interface{}, secretKey []byte) (string, error) {
	var claims jwt.MapClaims = payload
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// GenerateStateToken signs a nonce-bearing state valid for StateTokenTTL.
func GenerateStateToken(secretKey []byte, now time.Time) (string, error) {
	nonce, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate state nonce: %w", err)
	}
	return GenerateToken(map[string]interface{}{
		"nonce": nonce,
		"iat":   now.Unix(),
		"exp":   now.Add(StateTokenTTL).Unix(),
	}, secretKey)
}

// VerifyStateToken checks signature, algorithm and expiry of a state minted by GenerateStateToken.
func VerifyStateToken(state string, secretKey []byte) error {
	if state == "" {
		return fmt.Errorf("%w: empty", ErrInvalidState)
	}
	token, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if !token.Valid {
		return ErrInvalidState
	}
	return nil
}
