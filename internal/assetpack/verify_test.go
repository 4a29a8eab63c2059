package assetpack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDigestBytes(t *testing.T) {
	// sha256("hello")
	expected := "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := DigestBytes([]byte("hello")); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestDigestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.glb")
	payload := []byte("model payload")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}

	digest, size, err := DigestFile(path)
	if err != nil {
		t.Fatalf("DigestFile() returned error: %v", err)
	}
	if digest != DigestBytes(payload) {
		t.Errorf("Expected file digest to match byte digest, got %s", digest)
	}
	if size != int64(len(payload)) {
		t.Errorf("Expected size %d, got %d", len(payload), size)
	}

	if _, _, err := DigestFile(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestValidDigest(t *testing.T) {
	tests := []struct {
		name     string
		digest   string
		expected bool
	}{
		{"valid", DigestBytes([]byte("x")), true},
		{"missing prefix", strings.Repeat("a", 64), false},
		{"wrong prefix", "sha512:" + strings.Repeat("a", 64), false},
		{"too short", "sha256:" + strings.Repeat("a", 63), false},
		{"too long", "sha256:" + strings.Repeat("a", 65), false},
		{"not hex", "sha256:" + strings.Repeat("g", 64), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidDigest(tt.digest); got != tt.expected {
				t.Errorf("Expected ValidDigest(%s) = %v, got %v", tt.digest, tt.expected, got)
			}
		})
	}
}

func TestVerifyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/present.glb" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	v := NewVerifier()
	ctx := context.Background()

	ok, reason := v.VerifyURL(ctx, server.URL+"/present.glb")
	if !ok {
		t.Errorf("Expected present URL to verify, got reason %q", reason)
	}

	ok, reason = v.VerifyURL(ctx, server.URL+"/gone.glb")
	if ok {
		t.Error("Expected missing URL to fail verification")
	}
	if !strings.Contains(reason, "404") {
		t.Errorf("Expected reason to name the status, got %q", reason)
	}
}
