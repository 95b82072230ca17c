package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credilocker/credilocker-api/pkg/storage"
)

func newFilesRouter(t *testing.T) (*gin.Engine, *storage.LocalStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStorage(t.TempDir(), "student-submissions", "http://localhost:8080")
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("files-test-secret", time.Minute)
	resolver := storage.NewPreviewResolver(signer, store.Bucket(), "/api/v1")

	h := NewFilesHandler(resolver, signer, store)
	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/files/preview", h.Preview)
	api.GET("/files/signed/:token", h.Signed)
	return r, store
}

func TestPreviewAndSignedDownloadRoundTrip(t *testing.T) {
	r, store := newFilesRouter(t)

	_, err := store.Save("cep/24BIT001/cert.pdf", []byte("certificate-bytes"))
	require.NoError(t, err)
	publicURL := store.PublicURL("cep/24BIT001/cert.pdf")

	body, _ := json.Marshal(map[string]string{"url": publicURL})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.True(t, strings.HasPrefix(envelope.Data.URL, "/api/v1/files/signed/"))

	req = httptest.NewRequest(http.MethodGet, envelope.Data.URL, nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "certificate-bytes", resp.Body.String())
}

func TestPreviewLeavesForeignURLsUntouched(t *testing.T) {
	r, _ := newFilesRouter(t)

	body, _ := json.Marshal(map[string]string{"url": "https://example.com/some/file.pdf"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "https://example.com/some/file.pdf")
}

func TestSignedRejectsTamperedToken(t *testing.T) {
	r, store := newFilesRouter(t)

	_, err := store.Save("cep/24BIT001/cert.pdf", []byte("certificate-bytes"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/signed/preview.123.abc.def", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
