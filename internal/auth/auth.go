// internal/auth/auth.go
//
// Authentication helpers for the Mastermind server.
// Responsibilities:
//   - Sign and verify HS256 JWTs carrying the user id and username.
//   - Read the token from an Authorization bearer header or the auth cookie.
//   - Set/clear the auth cookie with environment-appropriate attributes.
//   - Hash and verify passwords with bcrypt; validate signup input.
//   - Carry the authenticated user on a request context.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers missing, malformed, expired or incomplete tokens.
var ErrInvalidToken = errors.New("invalid token")

// User is the identity placed into request context.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Issuer signs tokens and manages the auth cookie.
type Issuer struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

// NewIssuer builds an Issuer. secure switches cookies to Secure and
// SameSite=None for cross-site production deployments.
func NewIssuer(secret string, ttl time.Duration, cookieName string, secure bool) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, cookieName: cookieName, secure: secure}
}

// Sign creates a token for the user and returns it with its expiry.
func (is *Issuer) Sign(u User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(is.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       u.ID,
		"username": u.Username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString(is.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return ss, exp, nil
}

// Parse verifies a token and extracts the user.
func (is *Issuer) Parse(token string) (User, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return is.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return User{}, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return User{}, ErrInvalidToken
	}
	return User{ID: id, Username: username}, nil
}

// TokenFromRequest extracts a bearer token from the Authorization header,
// falling back to the auth cookie.
func (is *Issuer) TokenFromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(is.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// SetCookie writes the auth cookie.
func (is *Issuer) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	c := is.cookie(token)
	c.Expires = exp
	http.SetCookie(w, c)
}

// ClearCookie deletes the auth cookie.
func (is *Issuer) ClearCookie(w http.ResponseWriter) {
	c := is.cookie("")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// SessionCookie builds a long-lived cookie with the issuer's security
// attributes; used for the anonymous player id.
func (is *Issuer) SessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	c := is.cookie(value)
	c.Name = name
	c.Expires = time.Now().Add(ttl)
	return c
}

func (is *Issuer) cookie(value string) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if is.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     is.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   is.secure,
		SameSite: sameSite,
	}
}

// ------------------------------ passwords ----------------------------------

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword is a bcrypt verifier.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NormalizeUsername trims whitespace.
func NormalizeUsername(u string) string { return strings.TrimSpace(u) }

// ValidateSignup enforces basic username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return errors.New("password must be 8-72 chars")
	}
	return nil
}

// ------------------------------ context ------------------------------------

type ctxUserKey struct{}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

// UserFrom returns the authenticated user, or nil for guests.
func UserFrom(ctx context.Context) *User {
	u, _ := ctx.Value(ctxUserKey{}).(*User)
	return u
}
