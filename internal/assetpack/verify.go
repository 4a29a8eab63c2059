package assetpack

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Verifier checks artifact availability over HTTP.
type Verifier struct {
	client *http.Client
}

// NewVerifier creates a verifier with sensible timeouts.
func NewVerifier() *Verifier {
	return &Verifier{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// VerifyURL checks if a URL is accessible.
func (v *Verifier) VerifyURL(ctx context.Context, url string) (available bool, reason string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Sprintf("invalid request: %v", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		return true, ""
	}

	return false, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
}

// DigestBytes computes the manifest digest of a payload.
func DigestBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return DigestPrefix + hex.EncodeToString(sum[:])
}

// DigestFile computes the manifest digest of a file on disk, returning the
// digest and the file size.
func DigestFile(path string) (string, int64, error) {
	f, err := os.Open(path) // #nosec G304 - Path comes from the manifest mirror
	if err != nil {
		return "", 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	hasher := sha256.New()
	size, err := io.Copy(hasher, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash file: %w", err)
	}

	return DigestPrefix + hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// ValidDigest reports whether a digest string is well formed.
func ValidDigest(digest string) bool {
	if len(digest) != len(DigestPrefix)+sha256.Size*2 {
		return false
	}
	if digest[:len(DigestPrefix)] != DigestPrefix {
		return false
	}
	_, err := hex.DecodeString(digest[len(DigestPrefix):])
	return err == nil
}
