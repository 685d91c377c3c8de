// Package auth authenticates publishers. Reads are public; every
// mutating request must carry a bearer token issued by a prior login
// exchange against a stored bcrypt credential.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned for absent, malformed, expired, or
	// tampered bearer tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
)

const defaultTokenTTL = 12 * time.Hour

// Authenticator issues and verifies signed, time-limited tokens.
type Authenticator struct {
	store      CredentialStore
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// New returns an Authenticator signing tokens with the provided key.
func New(store CredentialStore, signingKey string, ttl time.Duration) (*Authenticator, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Authenticator{
		store:      store,
		signingKey: []byte(signingKey),
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// SetClock overrides the token clock. Test hook.
func (a *Authenticator) SetClock(now func() time.Time) { a.now = now }

// Login verifies the password against the stored hash and issues a signed
// token carrying the admin's id with a fixed expiry.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := a.store.ByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   admin.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
}

// Verify checks the token signature and expiry and returns the admin id
// it was issued for.
func (a *Authenticator) Verify(tokenString string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return a.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

// HashPassword derives a bcrypt hash for storage in the credential store.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
