package compression

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jmylchreest/atrium/internal/security"
)

// extractZipBinary extracts a single provider binary from a zip archive.
func extractZipBinary(data []byte, targetFile, archiveName, destDir string, verbose bool) (*ExtractResult, error) {
	reader := bytes.NewReader(data)
	zr, err := zip.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zip reader: %w", err)
	}

	type candidate struct {
		file     *zip.File
		priority int
	}

	var best *candidate
	var foundFiles []string

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		foundFiles = append(foundFiles, f.Name)
		priority := selectPriority(f.Name, f.FileInfo().Mode(), targetFile, archiveName)

		if best == nil || priority > best.priority {
			best = &candidate{file: f, priority: priority}
			if priority >= 90 {
				break
			}
		}
	}

	var targetZipFile *zip.File
	switch {
	case best != nil:
		targetZipFile = best.file
	case targetFile != "":
		return nil, fmt.Errorf("file '%s' not found in archive (found: %v)", targetFile, foundFiles)
	case len(foundFiles) == 0:
		return nil, fmt.Errorf("no files found in archive")
	case len(foundFiles) > 1:
		return nil, fmt.Errorf("multiple files in archive but none match expected provider name '%s' (found: %v)", archiveName, foundFiles)
	default:
		targetZipFile = zr.File[0]
	}

	// Extract the file
	destPath := filepath.Join(destDir, filepath.Base(targetZipFile.Name))

	rc, err := targetZipFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file in archive: %w", err)
	}
	defer rc.Close()

	out, err := os.Create(destPath) // #nosec G304 - Destination path controlled by application
	if err != nil {
		return nil, fmt.Errorf("failed to create provider file: %w", err)
	}
	defer out.Close()

	limitedReader := security.NewLimitedReader(rc, maxFileBytes)
	if _, err := io.Copy(out, limitedReader); err != nil {
		return nil, fmt.Errorf("failed to extract provider: %w", err)
	}

	// Make executable
	if err := os.Chmod(destPath, 0o755); err != nil { // #nosec G302 - Provider executable needs execute permission
		return nil, fmt.Errorf("failed to make provider executable: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracted provider to: %s\n", destPath)
	}

	return &ExtractResult{
		Path:       destPath,
		WasArchive: true,
	}, nil
}

// extractZipAll extracts every file of a zip archive into destDir,
// preserving relative member paths.
func extractZipAll(data []byte, destDir string, verbose bool) ([]string, error) {
	reader := bytes.NewReader(data)
	zr, err := zip.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zip reader: %w", err)
	}

	var files []string

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		name := filepath.Clean(f.Name)
		if err := security.ValidateFilePath(name, destDir); err != nil {
			return nil, fmt.Errorf("unsafe archive member %q: %w", f.Name, err)
		}

		destPath := filepath.Join(destDir, name)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil { // #nosec G301 - Pack directories need standard permissions
			return nil, fmt.Errorf("failed to create pack directory: %w", err)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file in archive: %w", err)
		}

		out, err := os.Create(destPath) // #nosec G304 - Member path validated above
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("failed to create asset file: %w", err)
		}

		limitedReader := security.NewLimitedReader(rc, maxFileBytes)
		_, copyErr := io.Copy(out, limitedReader)
		closeErr := out.Close()
		rc.Close()

		if copyErr != nil {
			return nil, fmt.Errorf("failed to extract asset %q: %w", name, copyErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close asset file: %w", closeErr)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Extracted: %s\n", destPath)
		}

		files = append(files, destPath)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found in archive")
	}

	return files, nil
}
