package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangar/internal/artifact"
	"hangar/internal/auth"
	"hangar/internal/catalog"
	"hangar/internal/event"
)

type stubBlobStore struct {
	objects map[string][]byte
}

func (s *stubBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *stubBlobStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *stubBlobStore) PublicURL(key string) string { return "https://cdn.test/" + key }

func (s *stubBlobStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.test/" + key, nil
}

type stubCredentials struct {
	admin auth.Admin
}

func (s *stubCredentials) ByUsername(_ context.Context, username string) (auth.Admin, error) {
	if username != s.admin.Username {
		return auth.Admin{}, auth.ErrInvalidCredentials
	}
	return s.admin, nil
}

type testServer struct {
	handler http.Handler
	token   string
	apps    *catalog.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	blobs := &stubBlobStore{objects: map[string][]byte{}}
	apps := catalog.NewMemory()

	svc, err := artifact.New(artifact.Config{
		Blobs:  blobs,
		Apps:   apps,
		Events: event.Nop{},
	})
	require.NoError(t, err)

	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)
	creds := &stubCredentials{admin: auth.Admin{
		ID:           uuid.New(),
		Username:     "operator",
		PasswordHash: hash,
	}}

	authn, err := auth.New(creds, "test-signing-key", time.Hour)
	require.NoError(t, err)

	apiLayer, err := New(svc, authn, nil, Config{})
	require.NoError(t, err)

	handler, err := apiLayer.Routes()
	require.NoError(t, err)

	token, err := authn.Login(context.Background(), "operator", "hunter2")
	require.NoError(t, err)

	return &testServer{handler: handler, token: token, apps: apps}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for field, file := range files {
		part, err := writer.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(file[1]))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (ts *testServer) publish(t *testing.T) catalog.App {
	t.Helper()

	body, contentType := multipartBody(t,
		map[string]string{
			"description":  "demo release",
			"package_name": "com.example.app",
			"version":      "1.0.0",
			"version_code": "10",
		},
		map[string][2]string{"file": {"app v1.apk", "binary payload"}},
	)

	req := httptest.NewRequest(http.MethodPost, "/v1/apps", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+ts.token)

	rec := ts.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		App catalog.App `json:"app"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.App
}

func TestPublishEndpoint(t *testing.T) {
	ts := newTestServer(t)

	app := ts.publish(t)

	assert.Equal(t, "com.example.app", app.PackageName)
	assert.Equal(t, "app v1.apk", app.Title)
	assert.True(t, strings.HasPrefix(app.BlobKey, "apks/"))
	assert.Equal(t, "https://cdn.test/"+app.BlobKey, app.BlobURL)
	assert.Nil(t, app.IconKey)
}

func TestPublishRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{"description": "x", "package_name": "com.example.app"},
		map[string][2]string{"file": {"app.apk", "payload"}},
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/apps", body)
	req.Header.Set("Content-Type", contentType)

	rec := ts.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	apps, err := ts.apps.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestPublishValidationError(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{"description": "missing package name"},
		map[string][2]string{"file": {"app.apk", "payload"}},
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/apps", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+ts.token)

	rec := ts.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "package_name")
}

func TestListAndGetArePublic(t *testing.T) {
	ts := newTestServer(t)
	app := ts.publish(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/apps", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Apps []catalog.App `json:"apps"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Apps, 1)
	assert.Equal(t, app.ID, listResp.Apps[0].ID)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/apps/"+app.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetUnknownApp(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/apps/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/apps/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadEndpoint(t *testing.T) {
	ts := newTestServer(t)
	app := ts.publish(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/apps/"+app.ID.String()+"/download", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://signed.test/"+app.BlobKey, resp.URL)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/apps/"+uuid.NewString()+"/download", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplaceEndpoint(t *testing.T) {
	ts := newTestServer(t)
	app := ts.publish(t)

	body, contentType := multipartBody(t,
		map[string]string{"title": "Renamed"},
		nil,
	)
	req := httptest.NewRequest(http.MethodPatch, "/v1/apps/"+app.ID.String(), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+ts.token)

	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		App catalog.App `json:"app"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Renamed", resp.App.Title)
	assert.Equal(t, app.BlobKey, resp.App.BlobKey)
	assert.Equal(t, "demo release", resp.App.Description)
}

func TestRemoveEndpoint(t *testing.T) {
	ts := newTestServer(t)
	app := ts.publish(t)

	req := httptest.NewRequest(http.MethodDelete, "/v1/apps/"+app.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+ts.token)

	rec := ts.do(t, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/apps/"+app.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	payload := func(user, pass string) *bytes.Reader {
		data, _ := json.Marshal(map[string]string{"username": user, "password": pass})
		return bytes.NewReader(data)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/login", payload("operator", "hunter2"))
	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	req = httptest.NewRequest(http.MethodPost, "/v1/login", payload("operator", "wrong"))
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatsWithoutPool(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	assert.Equal(t, http.StatusFailedDependency, rec.Code)
}
