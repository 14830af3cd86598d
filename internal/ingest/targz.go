package ingest

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// ReadTarGz extracts the C++ files from a gzipped tarball into a source
// set, applying the same path and size safeguards as ReadZip.
func ReadTarGz(r io.Reader) (testgen.SourceSet, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	source := testgen.SourceSet{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := path.Clean(hdr.Name)
		if strings.HasPrefix(name, "..") || path.IsAbs(name) {
			return nil, fmt.Errorf("invalid tar entry: %s", hdr.Name)
		}
		if skipEntry(name) || !IsCppSource(name) {
			continue
		}

		content, err := io.ReadAll(io.LimitReader(tr, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
		if len(content) > maxFileSize {
			return nil, fmt.Errorf("tar entry %s exceeds size limit", hdr.Name)
		}

		source[name] = string(content)
	}

	if len(source) == 0 {
		return nil, ErrNoSourceFiles
	}
	return source, nil
}
