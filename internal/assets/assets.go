// Package assets provides downloading and disk caching of remote scene assets.
//
// Assets are addressed by URL: each URL maps to a deterministic cache filename
// derived from its SHA256 hash, so repeated fetches of the same asset are
// served from disk. Payloads ending in .xz or .gz are decompressed
// transparently before caching, so cache reads never pay inflation cost.
package assets

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/atrium/internal/security"
	"github.com/jmylchreest/atrium/internal/util/httpx"
)

// maxDecompressedBytes bounds how large an asset may inflate to.
const maxDecompressedBytes = 256 * 1024 * 1024

// Options configures asset fetching and caching behavior.
type Options struct {
	// CacheDir is the directory where assets will be cached.
	// If empty, defaults to ~/.cache/atrium/assets
	CacheDir string

	// Filename is the filename to use for the cached asset.
	// If empty, uses a hash of the URL + original extension.
	Filename string

	// MaxAge bounds how long a cached asset is reused before being fetched
	// again. Zero means cached assets never expire.
	MaxAge time.Duration

	// Timeout overrides the HTTP request timeout.
	Timeout time.Duration

	// Headers specifies additional HTTP headers to send when fetching.
	Headers map[string]string
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory if cache dir not available.
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "atrium", "assets"), nil
	}
	return filepath.Join(cacheDir, "atrium", "assets"), nil
}

// IsRemote reports whether the source names a remote asset rather than a
// local file path.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// trimURLMeta strips query parameters and fragments from a URL so suffix
// detection sees only the path.
func trimURLMeta(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '?'); idx != -1 {
		rawURL = rawURL[:idx]
	}
	if idx := strings.IndexByte(rawURL, '#'); idx != -1 {
		rawURL = rawURL[:idx]
	}
	return rawURL
}

// cacheFilename creates a deterministic filename from a URL.
// Uses SHA256 hash of the URL + the original file extension, with any
// compression suffix removed since the cached copy is stored inflated.
func cacheFilename(rawURL string) string {
	// Hash the URL.
	hash := sha256.Sum256([]byte(rawURL))
	hashStr := fmt.Sprintf("%x", hash[:16]) // Use first 16 bytes (32 hex chars)

	name := trimURLMeta(rawURL)
	name = strings.TrimSuffix(name, ".xz")
	name = strings.TrimSuffix(name, ".gz")

	ext := filepath.Ext(name)
	// Default to .bin if no usable extension found.
	if ext == "" || len(ext) > 5 {
		ext = ".bin"
	}

	return hashStr + ext
}

// decompress inflates .xz and .gz payloads; all other payloads pass through.
func decompress(name string, data []byte) ([]byte, error) {
	switch {
	case strings.HasSuffix(name, ".xz"):
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		out, err := io.ReadAll(security.NewLimitedReader(xzr, maxDecompressedBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress asset: %w", err)
		}
		return out, nil

	case strings.HasSuffix(name, ".gz"):
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		out, err := io.ReadAll(security.NewLimitedReader(gzr, maxDecompressedBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress asset: %w", err)
		}
		return out, nil

	default:
		return data, nil
	}
}

// Path downloads a remote asset into the cache directory and returns the
// local file path. A fresh cached copy is reused without touching the
// network; staleness is governed by Options.MaxAge.
func Path(ctx context.Context, url string, opts Options) (string, error) {
	if err := security.ValidateAssetURL(url); err != nil {
		return "", err
	}

	// Determine cache directory.
	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		cacheDir = defaultDir
	}

	// Create cache directory if it doesn't exist.
	if err := os.MkdirAll(cacheDir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Determine filename. Explicit filenames are caller-supplied and must
	// not escape the cache directory.
	filename := opts.Filename
	if filename == "" {
		filename = cacheFilename(url)
	} else if err := security.ValidateFilePath(filename, cacheDir); err != nil {
		return "", fmt.Errorf("invalid cache filename: %w", err)
	}

	// Full path to cached file.
	cachedPath := filepath.Join(cacheDir, filename)

	// Reuse the cached copy while it is fresh.
	if info, err := os.Stat(cachedPath); err == nil {
		if opts.MaxAge <= 0 || time.Since(info.ModTime()) < opts.MaxAge {
			return cachedPath, nil
		}
	}

	// Download the asset.
	data, err := httpx.Fetch(ctx, url, httpx.FetchOptions{
		Timeout: opts.Timeout,
		Headers: opts.Headers,
	})
	if err != nil {
		return "", fmt.Errorf("failed to download asset: %w", err)
	}

	// Inflate compressed payloads before caching.
	data, err = decompress(trimURLMeta(url), data)
	if err != nil {
		return "", err
	}

	// Write to cache file.
	if err := os.WriteFile(cachedPath, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write cached asset: %w", err)
	}

	return cachedPath, nil
}

// Fetch returns the bytes of an asset. Remote URLs go through the disk
// cache; local paths are read directly, with the same transparent
// decompression of .xz and .gz files.
func Fetch(ctx context.Context, source string, opts Options) ([]byte, error) {
	if !IsRemote(source) {
		data, err := os.ReadFile(source) // #nosec G304 - User-specified asset path, intended to be read
		if err != nil {
			return nil, fmt.Errorf("failed to read asset file: %w", err)
		}
		return decompress(source, data)
	}

	cachedPath, err := Path(ctx, source, opts)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cachedPath) // #nosec G304 - Cache path derived from hashed URL
	if err != nil {
		return nil, fmt.Errorf("failed to read cached asset: %w", err)
	}
	return data, nil
}

// Client binds Options to a reusable fetcher. It satisfies the model fetcher
// contract used by the scene engine.
type Client struct {
	opts Options
}

// NewClient creates a Client with the given options.
func NewClient(opts Options) *Client {
	return &Client{opts: opts}
}

// Fetch returns the bytes of an asset, caching remote URLs on disk.
func (c *Client) Fetch(ctx context.Context, source string) ([]byte, error) {
	return Fetch(ctx, source, c.opts)
}

// Path downloads a remote asset if needed and returns its cached file path.
func (c *Client) Path(ctx context.Context, url string) (string, error) {
	return Path(ctx, url, c.opts)
}
