package ingest

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// ReadZip extracts the C++ files from a ZIP archive directly into a source
// set. Entries that escape the archive root or exceed the per-file size cap
// are rejected; non-C++ entries are skipped.
func ReadZip(r io.ReaderAt, size int64) (testgen.SourceSet, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	source := testgen.SourceSet{}
	for _, f := range zr.File {
		name := path.Clean(f.Name)

		// Prevent zip slip
		if strings.HasPrefix(name, "..") || path.IsAbs(name) {
			return nil, fmt.Errorf("invalid zip entry: %s", f.Name)
		}

		if f.FileInfo().IsDir() || skipEntry(name) || !IsCppSource(name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		// Limit extraction size to prevent zip bombs
		content, err := io.ReadAll(io.LimitReader(rc, maxFileSize+1))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		if len(content) > maxFileSize {
			return nil, fmt.Errorf("zip entry %s exceeds size limit", f.Name)
		}

		source[name] = string(content)
	}

	if len(source) == 0 {
		return nil, ErrNoSourceFiles
	}
	return source, nil
}
