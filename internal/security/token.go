package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// TokenSalt separates auth tokens from any other token class signed with the
// same server secret.
const TokenSalt = "note-keeper-auth"

// DefaultTokenMaxAge is the validity window of an issued token.
const DefaultTokenMaxAge = 7 * 24 * time.Hour

var (
	ErrEmptySecret  = errors.New("token secret must not be empty")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the payload bound into a token.
type Identity struct {
	UserID int64
	Email  string
}

type claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies stateless HS256 tokens. Expiry is enforced
// only at verification time from the issue timestamp.
type TokenCodec struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

type TokenOption func(*TokenCodec)

func WithMaxAge(d time.Duration) TokenOption {
	return func(c *TokenCodec) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

func NewTokenCodec(secret string, opts ...TokenOption) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(TokenSalt)), key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}

	c := &TokenCodec{
		key:    key,
		maxAge: DefaultTokenMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return c, nil
}

func (c *TokenCodec) MaxAge() time.Duration { return c.maxAge }

// Issue signs {uid, email, iat} with the derived key.
func (c *TokenCodec) Issue(userID int64, email string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	})

	s, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks the signature and age of token. Every failure wraps
// ErrInvalidToken; the wrapped detail is for logs only.
func (c *TokenCodec) Verify(token string) (Identity, error) {
	var cl claims
	if _, err := c.parser.ParseWithClaims(token, &cl, func(*jwt.Token) (any, error) {
		return c.key, nil
	}); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if cl.IssuedAt == nil {
		return Identity{}, fmt.Errorf("%w: missing issue time", ErrInvalidToken)
	}
	// iat has whole-second precision; compare at the same resolution.
	age := c.now().Truncate(time.Second).Sub(cl.IssuedAt.Time)
	if age < 0 {
		return Identity{}, fmt.Errorf("%w: issued in the future", ErrInvalidToken)
	}
	if age > c.maxAge {
		return Identity{}, fmt.Errorf("%w: expired %s ago", ErrInvalidToken, age-c.maxAge)
	}
	if cl.UserID <= 0 {
		return Identity{}, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	return Identity{UserID: cl.UserID, Email: cl.Email}, nil
}
