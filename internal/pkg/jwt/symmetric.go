package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric signs with HS512. Tokens carry a kid derived from the key so
// verification can pick the right secret during a rotation.
type Symmetric struct {
	kid       string
	keys      map[string][]byte
	issuer    string
	audiences []string
	ttl       time.Duration
	leeway    time.Duration
	clock     clocker
	uuid      generator
}

func keyID(secret []byte) string {
	sum := sha256.Sum256(secret)
	return hex.EncodeToString(sum[:6])
}

// NewHS512 validates every key and builds the signer.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, ErrSigningKeyTooShort
	}

	keys := map[string][]byte{keyID(cfg.Secret): cfg.Secret}
	for _, prev := range cfg.PreviousSecrets {
		if len(prev) < MinSecretLen {
			return nil, ErrSigningKeyTooShort
		}
		keys[keyID(prev)] = prev
	}

	return &Symmetric{
		kid:       keyID(cfg.Secret),
		keys:      keys,
		issuer:    cfg.Issuer,
		audiences: cfg.Audiences,
		ttl:       cfg.TTL,
		leeway:    cfg.Leeway,
		clock:     cfg.Clock,
		uuid:      cfg.UUID,
	}, nil
}

// Generate creates a signed token for the user.
func (s *Symmetric) Generate(uid int64, email string) (string, error) {
	now := s.clock.Now()

	token := libJWT.NewWithClaims(libJWT.SigningMethodHS512, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.uuid.Generate(),
			Subject:   strconv.FormatInt(uid, 10),
			Issuer:    s.issuer,
			Audience:  s.audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:    uid,
		UserEmail: email,
	})
	token.Header["kid"] = s.kid

	return token.SignedString(s.keys[s.kid])
}

// Verify parses tokenStr against the injected clock and returns its claims.
// Tokens without a kid are tried against the current key only.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	_, err := libJWT.ParseWithClaims(tokenStr, &claims,
		func(t *libJWT.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				kid = s.kid
			}
			key, ok := s.keys[kid]
			if !ok {
				return nil, ErrUnknownKey
			}
			return key, nil
		},
		libJWT.WithIssuer(s.issuer),
		libJWT.WithAudience(s.audiences...),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithLeeway(s.leeway),
		libJWT.WithTimeFunc(s.clock.Now),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case errors.Is(err, ErrUnknownKey):
		return Claims{}, ErrUnknownKey
	default:
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
}
