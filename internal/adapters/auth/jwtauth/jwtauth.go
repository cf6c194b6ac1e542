package jwtauth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"civil-registry/internal/ports/auth"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

// tokenClaims es el payload HS256 de los tokens de sesión.
type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Kebele   string `json:"kebele,omitempty"`
	jwt.RegisteredClaims
}

// Service emite y verifica tokens de sesión firmados con HS256.
// Implementa auth.AuthVerifier.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

func New(signingKey, issuer string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue firma un token de sesión para los claims dados.
func (s *Service) Issue(c auth.Claims) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: c.Username,
		Role:     c.Role,
		FullName: c.FullName,
		Kebele:   c.Kebele,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})

	return token.SignedString(s.signingKey)
}

// Verify valida firma y expiración, y reconstruye los claims de auth.
func (s *Service) Verify(ctx context.Context, tokenString string) (auth.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.Claims{}, ErrExpiredToken
		}
		return auth.Claims{}, ErrInvalidToken
	}

	if !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{
		UserID:   tc.Subject,
		Username: tc.Username,
		Role:     tc.Role,
		FullName: tc.FullName,
		Kebele:   tc.Kebele,
	}, nil
}
