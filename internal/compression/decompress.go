package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/atrium/internal/security"
)

// decompressSingle inflates a standalone compressed file into destDir.
// The mode distinguishes provider binaries (0o755) from asset data (0o644).
func decompressSingle(format Format, data []byte, filename, destDir string, mode os.FileMode, verbose bool) (*ExtractResult, error) {
	var r io.Reader
	switch format {
	case FormatGz:
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr

	case FormatXz:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr

	case FormatBz2:
		r = bzip2.NewReader(bytes.NewReader(data))

	default:
		return nil, fmt.Errorf("unsupported standalone compression format")
	}

	destPath := filepath.Join(destDir, filename)
	out, err := os.Create(destPath) // #nosec G304 - Destination path controlled by application
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	limitedReader := security.NewLimitedReader(r, maxFileBytes)
	_, copyErr := io.Copy(out, limitedReader)
	closeErr := out.Close()

	if copyErr != nil {
		return nil, fmt.Errorf("failed to decompress: %w", copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(destPath, mode); err != nil { // #nosec G302 - Provider executables need execute permission
		return nil, fmt.Errorf("failed to set file mode: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Decompressed to: %s\n", destPath)
	}

	return &ExtractResult{
		Path:       destPath,
		Files:      []string{destPath},
		WasArchive: false,
	}, nil
}
