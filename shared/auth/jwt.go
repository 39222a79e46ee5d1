package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenTTL is the lifetime of an access token when none is configured.
	DefaultAccessTokenTTL = time.Hour
	// DefaultIssuer is used when no issuer is configured.
	DefaultIssuer = "postly"
)

// ErrInvalidToken is returned for every token that fails validation, whatever the cause.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the claim set carried by an access token. The subject is the username.
type Claims struct {
	jwt.RegisteredClaims
}

// Username returns the username the token was issued to.
func (c *Claims) Username() string {
	return c.Subject
}

// Config holds the parameters of a JWTAuthenticator.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// JWTAuthenticator issues and validates HS256 signed access tokens.
// It holds one secret for the lifetime of the process.
type JWTAuthenticator struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(cfg Config) (*JWTAuthenticator, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret must not be empty")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	audience := cfg.Audience
	if audience == "" {
		audience = issuer
	}

	return &JWTAuthenticator{
		secret:   []byte(cfg.Secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of the authenticator that reads time from now.
func (a *JWTAuthenticator) WithClock(now func() time.Time) *JWTAuthenticator {
	clone := *a
	clone.now = now
	return &clone
}

// TTL returns the lifetime of issued tokens.
func (a *JWTAuthenticator) TTL() time.Duration {
	return a.ttl
}

// GenerateToken generates a signed token for username and returns it with its expiry.
func (a *JWTAuthenticator) GenerateToken(username string) (string, time.Time, error) {
	now := a.now()

	// exp is carried in whole seconds; round up so a token never lives
	// shorter than the configured TTL.
	expiresAt := now.Add(a.ttl)
	if truncated := expiresAt.Truncate(time.Second); !truncated.Equal(expiresAt) {
		expiresAt = truncated.Add(time.Second)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenStr, claims.ExpiresAt.Time, nil
}

// ValidateToken verifies the signature and expiry of tokenString and returns its claims.
// Any failure is reported as ErrInvalidToken.
func (a *JWTAuthenticator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(a.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
