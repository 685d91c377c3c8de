package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	admins map[string]Admin
}

func (s *memoryStore) ByUsername(_ context.Context, username string) (Admin, error) {
	admin, ok := s.admins[username]
	if !ok {
		return Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

func newTestAuthenticator(t *testing.T, ttl time.Duration) (*Authenticator, uuid.UUID) {
	t.Helper()

	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	adminID := uuid.New()
	store := &memoryStore{admins: map[string]Admin{
		"operator": {ID: adminID, Username: "operator", PasswordHash: hash},
	}}

	authn, err := New(store, "test-signing-key", ttl)
	require.NoError(t, err)
	return authn, adminID
}

func TestLoginAndVerify(t *testing.T) {
	authn, adminID := newTestAuthenticator(t, time.Hour)

	token, err := authn.Login(context.Background(), "operator", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := authn.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, adminID, id)
}

func TestLoginRejections(t *testing.T) {
	authn, _ := newTestAuthenticator(t, time.Hour)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "operator", "wrong"},
		{"unknown user", "nobody", "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authn.Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	authn, _ := newTestAuthenticator(t, time.Minute)

	issued := time.Now()
	authn.SetClock(func() time.Time { return issued })

	token, err := authn.Login(context.Background(), "operator", "hunter2")
	require.NoError(t, err)

	authn.SetClock(func() time.Time { return issued.Add(2 * time.Minute) })

	_, err = authn.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerifyTamperedToken(t *testing.T) {
	authn, _ := newTestAuthenticator(t, time.Hour)

	token, err := authn.Login(context.Background(), "operator", "hunter2")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"truncated", token[:len(token)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authn.Verify(tt.token)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestVerifyForeignSigningKey(t *testing.T) {
	authn, _ := newTestAuthenticator(t, time.Hour)

	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	foreignStore := &memoryStore{admins: map[string]Admin{
		"operator": {ID: uuid.New(), Username: "operator", PasswordHash: hash},
	}}
	foreign, err := New(foreignStore, "other-signing-key", time.Hour)
	require.NoError(t, err)

	token, err := foreign.Login(context.Background(), "operator", "hunter2")
	require.NoError(t, err)

	_, err = authn.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireMiddleware(t *testing.T) {
	authn, adminID := newTestAuthenticator(t, time.Hour)

	token, err := authn.Login(context.Background(), "operator", "hunter2")
	require.NoError(t, err)

	var seen uuid.UUID
	handler := authn.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = AdminID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/v1/apps/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, adminID, seen)
			}
		})
	}
}
