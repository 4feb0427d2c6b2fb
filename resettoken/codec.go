// Package resettoken encodes and decodes the signed, expiring claims that
// back password reset links. A token is the claim {reset_key, exp} signed
// with the host's key; possession of a valid, unexpired token is the sole
// proof of reset eligibility.
package resettoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned by Decode for every token that fails signature,
// structure, or expiry checks. The underlying parse or crypto fault never
// crosses this boundary.
var ErrInvalid = errors.New("invalid reset token")

// Claim is the decoded payload of a reset token.
type Claim struct {
	ResetKey  string
	ExpiresAt time.Time
}

type tokenClaims struct {
	ResetKey string `json:"reset_key"`
	jwt.RegisteredClaims
}

// Codec issues and decodes reset tokens with a fixed signing key and TTL.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCodec returns a codec signing with HMAC-SHA256. An empty key or
// non-positive TTL is a configuration error and fails here, before any
// token is issued.
func NewCodec(signingKey []byte, ttl time.Duration) (*Codec, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("reset token signing key required")
	}
	if ttl <= 0 {
		return nil, errors.New("reset token ttl must be positive")
	}

	return &Codec{
		key: signingKey,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Issue signs {reset_key, exp = now + ttl} and returns the opaque token.
func (c *Codec) Issue(resetKey string) (string, error) {
	if resetKey == "" {
		return "", errors.New("reset key required")
	}

	claims := tokenClaims{
		ResetKey: resetKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(c.now().Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(c.now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decode verifies the signature and structure of the token and that it has
// not expired. A claim is valid only strictly before its expiry instant.
// Every failure mode maps to ErrInvalid.
func (c *Codec) Decode(token string) (Claim, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&tokenClaims{},
		func(*jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return Claim{}, ErrInvalid
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.ResetKey == "" || claims.ExpiresAt == nil {
		return Claim{}, ErrInvalid
	}

	return Claim{
		ResetKey:  claims.ResetKey,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
