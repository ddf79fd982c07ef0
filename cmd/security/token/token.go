package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"globchat/cmd/identity"
)

// Service issues and verifies session tokens.
// It holds no mutable state after construction.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService validates cfg and constructs a Service.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < MinSecretBytes || cfg.TTL <= 0 {
		return nil, ErrConfig
	}
	return &Service{secret: cfg.Secret, ttl: cfg.TTL}, nil
}

// TTL returns the fixed token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token binding the given identity, valid in [now, now+TTL].
func (s *Service) Issue(id identity.UserID, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks signature and time validity against now and returns the
// subject identity. Any failure, whether structural, signature, expiry, or
// a tampered subject, is ErrInvalidToken.
func (s *Service) Verify(tokenString string, now time.Time) (identity.UserID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(_ *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return 0, ErrInvalidToken
	}

	id, err := identity.ParseUserID(claims.Subject)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
