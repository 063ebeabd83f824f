package token

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Service issues and verifies stateless email-verification tokens. Tokens are
// symmetric-signed (HS256) and carry the subject email as their sole payload,
// so they stay valid until expiry and may be replayed; the verify action they
// gate is idempotent.
type Service struct {
	secret []byte
	ttl    time.Duration
}

type Config struct {
	Secret string
	TTL    time.Duration
}

// ConfigFromEnv reads SECRET_KEY and VERIFY_TOKEN_TTL (Go duration, default 24h).
func ConfigFromEnv() Config {
	ttl := 24 * time.Hour
	if v := os.Getenv("VERIFY_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			ttl = parsed
		}
	}
	return Config{Secret: os.Getenv("SECRET_KEY"), TTL: ttl}
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: secret is required")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Service{secret: []byte(cfg.Secret), ttl: ttl}, nil
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Issue signs a token binding the given email for the configured lifetime.
func (s *Service) Issue(email string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded email. It is
// pure; flipping the user's verified flag is the caller's side effect.
func (s *Service) Verify(tokenString string) (string, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrTokenMalformed
		default:
			return "", ErrTokenInvalid
		}
	}
	if !tok.Valid || c.Email == "" {
		return "", ErrTokenInvalid
	}
	return c.Email, nil
}
