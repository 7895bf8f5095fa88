package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"voiceguard/audio-api/model"
	"voiceguard/audio-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Minimal RIFF/WAVE header, enough for content sniffing
var wavBytes = append([]byte("RIFF\x24\x08\x00\x00WAVEfmt "), make([]byte, 64)...)

// memStore is an in-memory ObjectStorage used instead of S3 in tests.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		objects: map[string][]byte{},
		types:   map[string]string{},
	}
}

func (m *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}

	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// failingStore rejects every operation, standing in for an unreachable bucket.
type failingStore struct{}

func (failingStore) Put(context.Context, string, io.Reader, int64, string) error {
	return errors.New("blob store unavailable")
}

func (failingStore) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("blob store unavailable")
}

func newTestAPI(t *testing.T, name string) (*API, *memStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("app.log_level", "error")
	viper.Set("jwt.secret", "test-secret")
	viper.Set("host.cors_origins", []string{"http://localhost:5173"})
	viper.Set("security.rate_limit", 1000)
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("upload.allowed_types", []string{
		"audio/wav", "audio/x-wav", "audio/mpeg", "audio/ogg",
		"audio/webm", "audio/flac", "audio/x-m4a", "audio/aac",
	})

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.AudioFile{}))

	blobs := newMemStore()

	a, err := NewRouter(&Deps{
		DB:     db,
		Store:  blobs,
		Hasher: security.New(),
	})
	require.NoError(t, err)

	return a, blobs
}

func doJSON(t *testing.T, a *API, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func signupAndLogin(t *testing.T, a *API, email string) string {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/auth/signup", gin.H{
		"email":    email,
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, a, http.MethodPost, "/auth/login", gin.H{
		"email":    email,
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	token, ok := decodeBody(t, w)["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func doUpload(t *testing.T, a *API, token, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	return doUploadField(t, a, token, "audio", filename, contentType, content)
}

func doUploadField(t *testing.T, a *API, token, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/audio/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}
