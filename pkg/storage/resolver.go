package storage

import (
	"fmt"
	"net/url"
	"strings"
)

const publicObjectPrefix = "/storage/v1/object/public/"

// PreviewResolver swaps stored public file URLs for short-lived signed links.
// Resolution degrades gracefully: anything that cannot be parsed or signed
// falls back to the original URL.
type PreviewResolver struct {
	signer    *SignedURLSigner
	bucket    string
	apiPrefix string
}

// NewPreviewResolver constructs a resolver serving signed links under
// "<apiPrefix>/files/signed/<token>".
func NewPreviewResolver(signer *SignedURLSigner, bucket, apiPrefix string) *PreviewResolver {
	if apiPrefix == "" {
		apiPrefix = "/api/v1"
	}
	return &PreviewResolver{
		signer:    signer,
		bucket:    bucket,
		apiPrefix: strings.TrimRight(apiPrefix, "/"),
	}
}

// Resolve returns a signed preview URL for a stored public URL, or the
// original URL when it does not match the public object shape.
func (r *PreviewResolver) Resolve(publicURL string) string {
	clean := CleanPublicURL(publicURL)
	path, ok := ExtractObjectPath(clean, r.bucket)
	if !ok {
		return clean
	}
	token, _, err := r.signer.Generate("preview", path)
	if err != nil {
		return clean
	}
	return fmt.Sprintf("%s/files/signed/%s", r.apiPrefix, token)
}

// CleanPublicURL trims whitespace and stray leading '@' characters that some
// legacy rows carry in front of stored URLs.
func CleanPublicURL(raw string) string {
	return strings.TrimLeft(strings.TrimSpace(raw), "@")
}

// ExtractObjectPath pulls the storage-relative path out of a public object
// URL. It returns false when the URL is malformed, lacks the public object
// prefix, or references a different bucket.
func ExtractObjectPath(rawURL, bucket string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	idx := strings.Index(u.Path, publicObjectPrefix)
	if idx == -1 {
		return "", false
	}
	remainder := u.Path[idx+len(publicObjectPrefix):]
	bucketPrefix := bucket + "/"
	if !strings.HasPrefix(remainder, bucketPrefix) {
		return "", false
	}
	path := remainder[len(bucketPrefix):]
	if path == "" {
		return "", false
	}
	return path, true
}
