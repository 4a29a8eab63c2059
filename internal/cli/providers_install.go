package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/atrium/internal/compression"
	"github.com/jmylchreest/atrium/internal/security"
)

const (
	// Provider source types.
	sourceTypeHTTP  = "http"
	sourceTypeLocal = "local"
	sourceTypeGit   = "git"

	// maxProviderBytes bounds how large a downloaded provider may be.
	maxProviderBytes = 128 * 1024 * 1024
)

// ProviderSourceInfo describes a parsed provider source.
type ProviderSourceInfo struct {
	URL      string
	FilePath string // For git repos and archives, path to file within
}

// installProviderFromSource installs a provider from various source types.
// If forcedSourceType is non-empty, it overrides auto-detection.
func installProviderFromSource(source, providerName, providerDir, forcedSourceType string, verbose bool) (string, error) {
	sourceType, sourceInfo := parseProviderSource(source)

	// Override with forced source type if provided
	if forcedSourceType != "" {
		if forcedSourceType != sourceTypeLocal && forcedSourceType != sourceTypeHTTP && forcedSourceType != sourceTypeGit {
			return "", fmt.Errorf("invalid source type '%s': must be one of: local, http, git", forcedSourceType)
		}
		sourceType = forcedSourceType
		if forcedSourceType == sourceTypeLocal {
			sourceInfo.FilePath = source
		} else {
			sourceInfo.URL = source
		}
	}

	switch sourceType {
	case sourceTypeLocal:
		return installFromLocal(sourceInfo, providerDir, verbose)
	case sourceTypeHTTP:
		return installFromHTTP(sourceInfo, providerName, providerDir, verbose)
	case sourceTypeGit:
		return installFromGit(sourceInfo, providerDir, verbose)
	default:
		return "", fmt.Errorf("unsupported source type: %s", source)
	}
}

// parseProviderSource determines the source type and extracts relevant info.
func parseProviderSource(source string) (string, ProviderSourceInfo) {
	info := ProviderSourceInfo{}

	// HTTP/HTTPS URL takes precedence (e.g., release downloads)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		// A .git URL is a repository even over HTTP.
		if strings.HasSuffix(source, ".git") {
			info.URL = source
			return sourceTypeGit, info
		}

		// Check for an in-archive file specification: url.tar.gz:path/to/provider.
		// The colon after the scheme must not count.
		if idx := strings.LastIndex(source, ":"); idx > len("https://") {
			info.URL = source[:idx]
			info.FilePath = source[idx+1:]
			if strings.HasSuffix(info.URL, ".git") {
				return sourceTypeGit, info
			}
			return sourceTypeHTTP, info
		}

		info.URL = source
		return sourceTypeHTTP, info
	}

	// Git repository (repo.git or git@host:user/repo.git).
	if strings.HasSuffix(source, ".git") || strings.HasPrefix(source, "git@") {
		// Check for a file specification after the repo: repo.git:dist/provider.
		if idx := strings.LastIndex(source, ".git:"); idx > 0 {
			info.URL = source[:idx+len(".git")]
			info.FilePath = source[idx+len(".git:"):]
		} else {
			info.URL = source
		}
		return sourceTypeGit, info
	}

	// Local file.
	info.FilePath = source
	return sourceTypeLocal, info
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src) // #nosec G304 - Provider source path controlled by application
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst) // #nosec G304 - Provider destination path controlled by application
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// installFromLocal installs a provider from a local file.
func installFromLocal(info ProviderSourceInfo, providerDir string, verbose bool) (string, error) {
	absSource, err := filepath.Abs(info.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve provider path: %w", err)
	}

	// Verify the provider exists.
	if _, err := os.Stat(absSource); err != nil {
		return "", fmt.Errorf("provider file not found: %w", err)
	}

	// Copy the provider into the provider directory.
	destPath := filepath.Join(providerDir, filepath.Base(absSource))
	if err := copyFile(absSource, destPath); err != nil {
		return "", fmt.Errorf("failed to copy provider: %w", err)
	}

	// Make it executable.
	if err := os.Chmod(destPath, 0o755); err != nil { // #nosec G302 - Provider executable needs execute permission
		return "", fmt.Errorf("failed to make provider executable: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Copied provider to: %s\n", destPath)
	}

	return destPath, nil
}

// installFromHTTP downloads a provider from an HTTP/HTTPS URL. Archives are
// unpacked and the contained binary located by name; plain files are saved
// directly.
func installFromHTTP(info ProviderSourceInfo, providerName, providerDir string, verbose bool) (string, error) {
	if err := security.ValidateHTTPURL(info.URL); err != nil {
		return "", fmt.Errorf("invalid provider URL: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Downloading from %s...\n", info.URL)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Get(info.URL)
	if err != nil {
		return "", fmt.Errorf("failed to download provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download provider: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(security.NewLimitedReader(resp.Body, maxProviderBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read download: %w", err)
	}

	// Determine filename from the URL.
	filename := filepath.Base(info.URL)
	if filename == "" || filename == "." {
		filename = providerName
	}

	result, err := compression.ExtractBinary(
		data,
		info.URL,
		filename,
		info.FilePath,
		compression.GetArchiveBaseName(filename),
		providerDir,
		resp.Header.Get("Content-Type"),
		verbose,
	)
	if err != nil {
		return "", err
	}

	// Make sure the final file is executable; extraction preserves archive
	// modes which may not include the execute bit.
	if err := os.Chmod(result.Path, 0o755); err != nil { // #nosec G302 - Provider executable needs execute permission
		return "", fmt.Errorf("failed to make provider executable: %w", err)
	}

	return result.Path, nil
}

// installFromGit clones a repository at depth 1 and installs the named file
// from it. Without a file specification the repository must contain exactly
// one obvious candidate, which in practice means the FilePath form is the
// reliable one.
func installFromGit(info ProviderSourceInfo, providerDir string, verbose bool) (string, error) {
	if info.FilePath == "" {
		return "", fmt.Errorf("git sources require a file specification (repo.git:path/to/provider)")
	}

	tmpDir, err := os.MkdirTemp("", "atrium-git-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if verbose {
		fmt.Fprintf(os.Stderr, "Cloning %s...\n", info.URL)
	}

	cmd := exec.Command("git", "clone", "--depth=1", info.URL, tmpDir) // #nosec G204 - URL validated above
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}

	sourcePath := filepath.Join(tmpDir, info.FilePath)
	if err := security.ValidateFilePath(sourcePath, tmpDir); err != nil {
		return "", fmt.Errorf("invalid file path in repository: %w", err)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return "", fmt.Errorf("file not found in repository: %w", err)
	}

	destPath := filepath.Join(providerDir, filepath.Base(info.FilePath))
	if err := copyFile(sourcePath, destPath); err != nil {
		return "", fmt.Errorf("failed to copy provider: %w", err)
	}

	if err := os.Chmod(destPath, 0o755); err != nil { // #nosec G302 - Provider executable needs execute permission
		return "", fmt.Errorf("failed to make provider executable: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Installed provider to: %s\n", destPath)
	}

	return destPath, nil
}
