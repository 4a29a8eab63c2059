// Package compression provides extraction of downloaded archives: asset
// packs holding many model files, and single provider binaries.
package compression

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxFileBytes bounds how large a single extracted file may inflate to.
const maxFileBytes = 256 * 1024 * 1024

// Format identifies a supported archive or compression container.
type Format int

const (
	// FormatNone means the data is not a recognized archive.
	FormatNone Format = iota
	// FormatTarGz is a gzip-compressed tar archive.
	FormatTarGz
	// FormatTarXz is an xz-compressed tar archive.
	FormatTarXz
	// FormatTarBz2 is a bzip2-compressed tar archive.
	FormatTarBz2
	// FormatTar is an uncompressed tar archive, as produced when a fetcher
	// has already inflated the .xz or .gz layer.
	FormatTar
	// FormatZip is a zip archive.
	FormatZip
	// FormatGz is a standalone gzip-compressed file.
	FormatGz
	// FormatXz is a standalone xz-compressed file.
	FormatXz
	// FormatBz2 is a standalone bzip2-compressed file.
	FormatBz2
)

// ExtractResult contains the result of an extraction operation.
type ExtractResult struct {
	// Path to the extracted file for single-file extractions.
	Path string
	// Files lists every extracted path for full-archive extractions.
	Files []string
	// Whether the input was an archive (true) or a direct file (false)
	WasArchive bool
}

func isTarGzURL(url string) bool {
	return strings.HasSuffix(url, ".tar.gz") || strings.HasSuffix(url, ".tgz")
}

func isTarXzURL(url string) bool {
	return strings.HasSuffix(url, ".tar.xz") || strings.HasSuffix(url, ".txz")
}

func isTarBz2URL(url string) bool {
	return strings.HasSuffix(url, ".tar.bz2") || strings.HasSuffix(url, ".tbz") || strings.HasSuffix(url, ".tbz2")
}

// Detect determines the archive format from the download URL and the HTTP
// Content-Type header. A specific Content-Type wins; the URL extension
// distinguishes tar containers from standalone compressed files.
func Detect(url, contentType string) Format {
	switch {
	case strings.Contains(contentType, "application/gzip"), strings.Contains(contentType, "application/x-gzip"):
		if isTarGzURL(url) {
			return FormatTarGz
		}
		return FormatGz

	case strings.Contains(contentType, "application/x-xz"):
		if isTarXzURL(url) {
			return FormatTarXz
		}
		return FormatXz

	case strings.Contains(contentType, "application/x-bzip2"):
		if isTarBz2URL(url) {
			return FormatTarBz2
		}
		return FormatBz2

	case strings.Contains(contentType, "application/zip"), strings.Contains(contentType, "application/x-zip-compressed"):
		return FormatZip

	case strings.Contains(contentType, "application/x-tar"):
		return FormatTar
	}

	// Fall back to filename extension detection. Octet-stream, text and
	// unknown content types all land here.
	switch {
	case isTarGzURL(url):
		return FormatTarGz
	case isTarXzURL(url):
		return FormatTarXz
	case isTarBz2URL(url):
		return FormatTarBz2
	case strings.HasSuffix(url, ".tar"):
		return FormatTar
	case strings.HasSuffix(url, ".zip"):
		return FormatZip
	case strings.HasSuffix(url, ".gz"):
		return FormatGz
	case strings.HasSuffix(url, ".xz"):
		return FormatXz
	case strings.HasSuffix(url, ".bz2"):
		return FormatBz2
	}

	return FormatNone
}

// ExtractBinary extracts a single provider binary from downloaded data.
// It handles:
// - Tar archives (.tar.gz, .tar.xz, .tar.bz2)
// - Zip archives (.zip)
// - Standalone compressed files (.gz, .xz, .bz2)
// - Raw uncompressed binaries
//
// Parameters:
//   - data: The downloaded file data
//   - url: Original download URL (used for format detection)
//   - filename: Base filename (used for naming output)
//   - targetFile: Optional specific file to extract from archive
//   - archiveName: Base name of archive for finding the binary (e.g., "atrium-provider-chain")
//   - destDir: Destination directory for extracted files
//   - contentType: HTTP Content-Type header (optional, used for detection)
//   - verbose: Whether to print extraction progress
//
// Returns the path to the extracted binary.
func ExtractBinary(data []byte, url, filename, targetFile, archiveName, destDir, contentType string, verbose bool) (*ExtractResult, error) {
	switch format := Detect(url, contentType); format {
	case FormatTarGz, FormatTarXz, FormatTarBz2, FormatTar:
		return extractTarBinary(tarOpener(format, data), targetFile, archiveName, destDir, verbose)

	case FormatZip:
		return extractZipBinary(data, targetFile, archiveName, destDir, verbose)

	case FormatGz:
		return decompressSingle(format, data, strings.TrimSuffix(filename, ".gz"), destDir, 0o755, verbose)
	case FormatXz:
		return decompressSingle(format, data, strings.TrimSuffix(filename, ".xz"), destDir, 0o755, verbose)
	case FormatBz2:
		return decompressSingle(format, data, strings.TrimSuffix(filename, ".bz2"), destDir, 0o755, verbose)
	}

	// Not an archive - treat as a direct binary.
	destPath := filepath.Join(destDir, filename)

	// #nosec G306 -- Provider executable needs exec permissions
	if err := os.WriteFile(destPath, data, 0o755); err != nil {
		return nil, fmt.Errorf("failed to write provider file: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Saved provider to: %s\n", destPath)
	}

	return &ExtractResult{
		Path:       destPath,
		WasArchive: false,
	}, nil
}

// ExtractAll extracts every file of a downloaded asset pack archive into
// destDir, preserving relative paths. Member paths are validated so an
// archive cannot write outside destDir. Non-archive data is written as a
// single file named after the URL.
func ExtractAll(data []byte, url, destDir, contentType string, verbose bool) (*ExtractResult, error) {
	switch format := Detect(url, contentType); format {
	case FormatTarGz, FormatTarXz, FormatTarBz2, FormatTar:
		files, err := extractTarAll(tarOpener(format, data), destDir, verbose)
		if err != nil {
			return nil, err
		}
		return &ExtractResult{Files: files, WasArchive: true}, nil

	case FormatZip:
		files, err := extractZipAll(data, destDir, verbose)
		if err != nil {
			return nil, err
		}
		return &ExtractResult{Files: files, WasArchive: true}, nil

	case FormatGz:
		return decompressSingle(format, data, strings.TrimSuffix(baseName(url), ".gz"), destDir, 0o644, verbose)
	case FormatXz:
		return decompressSingle(format, data, strings.TrimSuffix(baseName(url), ".xz"), destDir, 0o644, verbose)
	case FormatBz2:
		return decompressSingle(format, data, strings.TrimSuffix(baseName(url), ".bz2"), destDir, 0o644, verbose)
	}

	destPath := filepath.Join(destDir, baseName(url))
	if err := os.WriteFile(destPath, data, 0o644); err != nil { // #nosec G306 - Asset files need standard read permissions
		return nil, fmt.Errorf("failed to write asset file: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Saved asset to: %s\n", destPath)
	}

	return &ExtractResult{
		Path:       destPath,
		Files:      []string{destPath},
		WasArchive: false,
	}, nil
}

// baseName returns the final path element of a URL with query stripped.
func baseName(url string) string {
	if idx := strings.IndexByte(url, '?'); idx != -1 {
		url = url[:idx]
	}
	return filepath.Base(url)
}

// GetArchiveBaseName extracts the base name from an archive filename.
// For example: "atrium-provider-chain_0.0.1_Linux_x86_64.tar.gz" -> "atrium-provider-chain".
func GetArchiveBaseName(filename string) string {
	// Remove extension
	base := filename
	for _, ext := range []string{".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar.bz2", ".tbz", ".tbz2", ".tar", ".zip"} {
		if before, ok := strings.CutSuffix(base, ext); ok {
			base = before
			break
		}
	}

	// Find the part before the first underscore
	if idx := strings.Index(base, "_"); idx > 0 {
		return base[:idx]
	}

	return base
}
