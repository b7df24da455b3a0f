package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenClaims    = errors.New("token claims invalid")
)

// Claims is the fixed payload of a session token. Subject carries the email.
type Claims struct {
	Role   Role  `json:"role"`
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Validate runs after the registered-claims checks.
func (c Claims) Validate() error {
	if c.Subject == "" {
		return errors.New("missing subject")
	}
	if c.UserID <= 0 {
		return errors.New("missing user_id")
	}
	if !c.Role.Valid() {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, ttl time.Duration, logger *slog.Logger, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for actor valid for the configured TTL.
func (s *TokenService) Issue(actor *Actor) (string, time.Time, error) {
	if actor == nil {
		return "", time.Time{}, errors.New("actor is required")
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Role:   actor.Role,
		UserID: actor.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.Email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature and expiry and maps failures onto the package
// sentinels so callers can tell them apart.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err == nil {
		return claims, nil
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, fmt.Errorf("%w: %v", ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return nil, fmt.Errorf("%w: %v", ErrTokenClaims, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

// Validate collapses every failure to (nil, false) after logging why.
func (s *TokenService) Validate(tokenString string) (*Claims, bool) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		reason := "malformed"
		switch {
		case errors.Is(err, ErrTokenExpired):
			reason = "expired"
		case errors.Is(err, ErrTokenSignature):
			reason = "bad_signature"
		case errors.Is(err, ErrTokenClaims):
			reason = "invalid_claims"
		}
		s.logger.Info("session token rejected", "reason", reason, "error", err)
		return nil, false
	}
	return claims, true
}
