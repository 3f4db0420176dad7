// Package auth issues and verifies the bearer tokens (HS256 JWT) that protect the supply recomputation.
//
// Issue does not verify the identity it signs: any caller obtains a token for any name. It is a placeholder to be
// replaced by a real identity check before the service is exposed publicly.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tarancss/supply/lib/config"
)

// TTL is the lifetime of issued tokens.
const TTL = time.Hour

// ErrUnauthorized is returned when a token is missing or invalid.
var ErrUnauthorized = errors.New("unauthorized")

// Claims are the claims carried by issued tokens. Name repeats the subject.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a symmetric key.
type Issuer struct {
	key    []byte
	leeway time.Duration
	now    func() time.Time
}

// New returns an Issuer signing with secret. leeway is the clock skew tolerated when verifying expiry.
func New(secret string, leeway time.Duration) *Issuer {
	return &Issuer{key: []byte(secret), leeway: leeway, now: time.Now}
}

// Issue returns a signed token with identity as subject, expiring one hour from now. It fails with config.ErrMissing
// if the signing key is not configured.
func (i *Issuer) Issue(identity string) (string, error) {
	if len(i.key) == 0 {
		return "", fmt.Errorf("unable to generate an authentication token: jwt secret: %w", config.ErrMissing)
	}

	now := i.now()
	claims := &Claims{
		Name: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}

// Verify checks the token signature and expiry and returns its subject.
func (i *Issuer) Verify(token string) (string, error) {
	if len(i.key) == 0 {
		return "", fmt.Errorf("%w: jwt secret: %v", ErrUnauthorized, config.ErrMissing)
	}

	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return i.key, nil
	}, jwt.WithLeeway(i.leeway), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return "", ErrUnauthorized
	}

	return claims.Subject, nil
}
