// Package auth provides session tokens, password hashing, and the HTTP
// guards that gate authenticated routes.
//
// SESSION FLOW:
//  1. POST /api/login verifies the credentials and issues a JWT
//  2. The JWT is stored in an HttpOnly cookie named "token"
//  3. On every request, middleware reads the cookie, validates the JWT,
//     and puts the session (user ID + email) in the request context
//  4. Logout clears the cookie; the token simply ages out server-side
//
// The JWT is signed with HMAC-SHA256, so validation needs no database
// lookup — the signature plus expiry is the whole session state.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "goal-tracker"

// Session identifies the authenticated caller for the duration of one
// request. Email is carried in the token so goal queries can be scoped to
// the owner without a user lookup on every call.
type Session struct {
	UserID string
	Email  string
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens, and the lifetime
// applied to newly issued tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production; anything under 16 characters is rejected outright.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the lifetime applied to issued tokens. Handlers use it to set
// a matching cookie MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. The standard "sub" claim carries the user ID;
// the email rides along in a private claim so the session is self-contained.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given user.
func (s *TokenService) Generate(userID, email string) (string, error) {
	return s.GenerateWithDuration(userID, email, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, email string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the Session it
// encodes.
//
// The library checks the signature, expiry, and issuer. Restricting the
// accepted algorithms to HS256 closes the algorithm-confusion hole where a
// token signed with "none" might otherwise slip through.
func (s *TokenService) Validate(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Session{UserID: c.Subject, Email: c.Email}, nil
}
