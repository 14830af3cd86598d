package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// ErrNoSourceFiles means the input contained nothing recognizable as C++.
var ErrNoSourceFiles = errors.New("no C++ source files found")

// maxFileSize caps individual extracted files to keep archive bombs out.
const maxFileSize = 100 * 1024 * 1024

var cppExtensions = map[string]struct{}{
	".cpp": {}, ".cc": {}, ".cxx": {},
	".h": {}, ".hpp": {}, ".hh": {},
}

// IsCppSource reports whether a path looks like a C++ source or header.
func IsCppSource(name string) bool {
	_, ok := cppExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// skipEntry filters out hidden directories, dependency trees and build
// output that routinely travel inside uploaded archives.
func skipEntry(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		switch {
		case part == "":
		case strings.HasPrefix(part, "."):
			return true
		case part == "build" || part == "cmake-build-debug" || part == "cmake-build-release":
			return true
		case part == "node_modules" || part == "vendor" || part == "third_party":
			return true
		}
	}
	return false
}

// CollectDir walks a directory tree and gathers every C++ file into a
// source set keyed by slash-separated relative path.
func CollectDir(root string) (testgen.SourceSet, error) {
	source := testgen.SourceSet{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel != "." && skipEntry(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if skipEntry(rel) || !IsCppSource(rel) {
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		source[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(source) == 0 {
		return nil, ErrNoSourceFiles
	}
	return source, nil
}
