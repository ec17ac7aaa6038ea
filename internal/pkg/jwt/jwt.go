package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the shortest HS512 key accepted, in bytes.
const MinSecretLen = 64

var (
	// ErrSigningKeyTooShort is returned when an HS512 key is under MinSecretLen bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")
	// ErrTokenExpired is returned when the token is past its expiry.
	ErrTokenExpired = errors.New("JWT token has expired")
	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnknownKey is returned when the token names a key this verifier does not hold.
	ErrUnknownKey = errors.New("JWT signed with an unknown key")
)

// JWT issues and checks access tokens.
type JWT interface {
	Generate(uid int64, email string) (string, error)
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret signs new tokens.
	Secret []byte
	// PreviousSecrets still verify tokens issued before a key rotation.
	PreviousSecrets [][]byte
	Issuer          string
	Audiences       []string
	TTL             time.Duration
	// Leeway tolerates clock skew on exp, nbf and iat.
	Leeway time.Duration
	Clock  clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims carries the registered claims plus the authenticated user.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id,string"`
	UserEmail string `json:"user_email"`
}

type authKey struct{}

// GetAuth returns the claims stored by SetAuth, or nil.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(authKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

// SetAuth stores verified claims in ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authKey{}, clm)
}
