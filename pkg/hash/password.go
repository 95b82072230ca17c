package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	prefix     = "pbkdf2"
	iterations = 100000
	saltLen    = 16
	keyLen     = 32
)

// Password derives a salted PBKDF2-SHA256 hash in the stored format
// "pbkdf2:<iterations>:<base64 salt>:<base64 derived key>".
func Password(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
	return fmt.Sprintf("%s:%d:%s:%s",
		prefix,
		iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(derived),
	), nil
}

// Verify checks a password against a stored hash. Rows predating the
// PBKDF2 migration hold the plaintext password; those compare by equality.
func Verify(password, stored string) bool {
	if stored == "" {
		return false
	}
	if !strings.HasPrefix(stored, prefix+":") {
		return password == stored
	}

	parts := strings.Split(stored, ":")
	if len(parts) != 4 {
		return false
	}
	iter, err := strconv.Atoi(parts[1])
	if err != nil || iter <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}

	derived := pbkdf2.Key([]byte(password), salt, iter, len(want), sha256.New)
	return base64.StdEncoding.EncodeToString(derived) == base64.StdEncoding.EncodeToString(want)
}
