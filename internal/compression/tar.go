package compression

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/atrium/internal/security"
)

// tarOpener returns a function that opens a fresh decompressing reader over
// data. Tar extraction scans twice (select, then extract), so the stream
// must be reopenable.
func tarOpener(format Format, data []byte) func() (io.Reader, error) {
	switch format {
	case FormatTarGz:
		return func() (io.Reader, error) {
			gzr, err := gzip.NewReader(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("failed to create gzip reader: %w", err)
			}
			return gzr, nil
		}
	case FormatTarXz:
		return func() (io.Reader, error) {
			xzr, err := xz.NewReader(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("failed to create xz reader: %w", err)
			}
			return xzr, nil
		}
	case FormatTar:
		return func() (io.Reader, error) {
			return bytes.NewReader(data), nil
		}
	default:
		return func() (io.Reader, error) {
			return bzip2.NewReader(bytes.NewReader(data)), nil
		}
	}
}

// selectPriority ranks an archive member as the provider binary candidate.
func selectPriority(name string, mode os.FileMode, targetFile, archiveName string) int {
	// Priority 1: Explicit target file (highest priority)
	if targetFile != "" && (name == targetFile || strings.HasSuffix(name, "/"+targetFile)) {
		return 100
	}

	// Priority 2: File matching archive name
	if filepath.Base(name) == archiveName {
		return 90
	}

	// Priority 3: Executable file
	if mode&0o111 != 0 {
		return 80
	}

	// Priority 4: Any regular file (fallback)
	return 10
}

// extractTarBinary extracts a single provider binary from a tar archive.
func extractTarBinary(open func() (io.Reader, error), targetFile, archiveName, destDir string, verbose bool) (*ExtractResult, error) {
	r, err := open()
	if err != nil {
		return nil, err
	}
	tr := tar.NewReader(r)

	type candidate struct {
		path     string
		priority int
	}

	var best *candidate
	var foundFiles []string

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}

		if header.Typeflag == tar.TypeDir {
			continue
		}

		foundFiles = append(foundFiles, header.Name)
		priority := selectPriority(header.Name, header.FileInfo().Mode(), targetFile, archiveName)

		if best == nil || priority > best.priority {
			best = &candidate{path: header.Name, priority: priority}
			// If we found explicit target or archive match, stop searching
			if priority >= 90 {
				break
			}
		}
	}

	// Determine target path or error
	targetPath := ""
	switch {
	case best != nil:
		targetPath = best.path
	case targetFile != "":
		return nil, fmt.Errorf("file '%s' not found in archive (found: %v)", targetFile, foundFiles)
	case len(foundFiles) == 0:
		return nil, fmt.Errorf("no files found in archive")
	case len(foundFiles) > 1:
		return nil, fmt.Errorf("multiple files in archive but none match expected provider name '%s' (found: %v)", archiveName, foundFiles)
	default:
		targetPath = foundFiles[0]
	}

	// Reset readers to extract the target file
	r, err = open()
	if err != nil {
		return nil, err
	}
	tr = tar.NewReader(r)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file not found in archive")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}

		if header.Name != targetPath {
			continue
		}

		// Extract the file
		destPath := filepath.Join(destDir, filepath.Base(targetPath))

		out, err := os.Create(destPath) // #nosec G304 - Destination path controlled by application
		if err != nil {
			return nil, fmt.Errorf("failed to create provider file: %w", err)
		}

		limitedReader := security.NewLimitedReader(tr, maxFileBytes)
		_, copyErr := io.Copy(out, limitedReader)
		closeErr := out.Close()

		if copyErr != nil {
			return nil, fmt.Errorf("failed to extract provider: %w", copyErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close provider file: %w", closeErr)
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
}

// extractTarAll extracts every regular file of a tar archive into destDir,
// preserving relative member paths.
func extractTarAll(open func() (io.Reader, error), destDir string, verbose bool) ([]string, error) {
	r, err := open()
	if err != nil {
		return nil, err
	}
	tr := tar.NewReader(r)

	var files []string

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}

		// Only regular files carry pack content; directories are implied
		// and symlinks are not trusted from downloaded archives.
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Clean(header.Name)
		if err := security.ValidateFilePath(name, destDir); err != nil {
			return nil, fmt.Errorf("unsafe archive member %q: %w", header.Name, err)
		}

		destPath := filepath.Join(destDir, name)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil { // #nosec G301 - Pack directories need standard permissions
			return nil, fmt.Errorf("failed to create pack directory: %w", err)
		}

		out, err := os.Create(destPath) // #nosec G304 - Member path validated above
		if err != nil {
			return nil, fmt.Errorf("failed to create asset file: %w", err)
		}

		limitedReader := security.NewLimitedReader(tr, maxFileBytes)
		_, copyErr := io.Copy(out, limitedReader)
		closeErr := out.Close()

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
