package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObjectPath(t *testing.T) {
	path, ok := ExtractObjectPath("http://localhost:8080/storage/v1/object/public/student-submissions/cep/certificates/24BIT015_cert.pdf", "student-submissions")
	require.True(t, ok)
	assert.Equal(t, "cep/certificates/24BIT015_cert.pdf", path)
}

func TestExtractObjectPathWrongBucket(t *testing.T) {
	_, ok := ExtractObjectPath("http://localhost:8080/storage/v1/object/public/other-bucket/file.pdf", "student-submissions")
	assert.False(t, ok)
}

func TestExtractObjectPathNoPrefix(t *testing.T) {
	_, ok := ExtractObjectPath("http://example.com/files/file.pdf", "student-submissions")
	assert.False(t, ok)

	_, ok = ExtractObjectPath("://not a url", "student-submissions")
	assert.False(t, ok)
}

func TestPreviewResolverSignsKnownURLs(t *testing.T) {
	signer := NewSignedURLSigner("secret", 120*time.Second)
	resolver := NewPreviewResolver(signer, "student-submissions", "/api/v1")

	resolved := resolver.Resolve("http://localhost:8080/storage/v1/object/public/student-submissions/fp/doc.pdf")
	require.True(t, strings.HasPrefix(resolved, "/api/v1/files/signed/"))

	token := strings.TrimPrefix(resolved, "/api/v1/files/signed/")
	resource, relPath, expiresAt, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "preview", resource)
	assert.Equal(t, "fp/doc.pdf", relPath)
	assert.WithinDuration(t, time.Now().Add(120*time.Second), expiresAt, 5*time.Second)
}

func TestPreviewResolverFallsBackUnchanged(t *testing.T) {
	signer := NewSignedURLSigner("secret", 120*time.Second)
	resolver := NewPreviewResolver(signer, "student-submissions", "/api/v1")

	original := "https://cdn.example.com/plain/file.pdf"
	assert.Equal(t, original, resolver.Resolve(original))

	// Legacy rows sometimes carry a stray leading '@'.
	assert.Equal(t, "https://cdn.example.com/x.pdf", resolver.Resolve(" @https://cdn.example.com/x.pdf"))
}

func TestSignedURLSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, expiresAt, err := signer.Generate("report-1", "reports/fp.xlsx")
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	resource, relPath, _, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "report-1", resource)
	assert.Equal(t, "reports/fp.xlsx", relPath)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("report-1", "reports/fp.xlsx")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	assert.Error(t, err)

	other := NewSignedURLSigner("different", time.Minute)
	_, _, _, err = other.Parse(token, false)
	assert.Error(t, err)
}

func TestPublicURLRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "student-submissions", "http://localhost:8080")
	require.NoError(t, err)

	public := store.PublicURL("cep/pictures/24BIT003_pic.jpg")
	assert.Equal(t, "http://localhost:8080/storage/v1/object/public/student-submissions/cep/pictures/24BIT003_pic.jpg", public)

	path, ok := ExtractObjectPath(public, store.Bucket())
	require.True(t, ok)
	assert.Equal(t, "cep/pictures/24BIT003_pic.jpg", path)
}
