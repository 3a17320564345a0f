// internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "chkouba"

var (
	ErrTokenRequired = errors.New("player token is required")
	ErrTokenInvalid  = errors.New("player token is invalid")
	ErrNameMismatch  = errors.New("player token does not match the requested name")
)

// Verifier checks HS256 player tokens. A zero Secret disables checking.
type Verifier struct {
	Secret []byte
	Now    func() time.Time
}

// NewVerifier returns a verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{Secret: []byte(secret), Now: time.Now}
}

// Enabled reports whether tokens are required.
func (v *Verifier) Enabled() bool { return v != nil && len(v.Secret) > 0 }

// Issue signs a token whose subject is player, valid for ttl.
func (v *Verifier) Issue(player string, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", errors.New("token signing is not configured")
	}
	now := v.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   player,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
	if err != nil {
		return "", fmt.Errorf("sign player token: %w", err)
	}
	return signed, nil
}

// Verify checks token and returns its subject.
func (v *Verifier) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenRequired
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrTokenInvalid)
	}
	return claims.Subject, nil
}

// Authorize checks that token names player. It always succeeds when disabled.
func (v *Verifier) Authorize(token, player string) error {
	if !v.Enabled() {
		return nil
	}
	subject, err := v.Verify(token)
	if err != nil {
		return err
	}
	if subject != player {
		return fmt.Errorf("%w: token for %q", ErrNameMismatch, subject)
	}
	return nil
}

func (v *Verifier) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}
