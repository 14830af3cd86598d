package cppbuild

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// ErrWorkspace marks filesystem failures while materializing a workspace.
// It is fatal to the run.
var ErrWorkspace = errors.New("workspace io failure")

const defaultMainCpp = `#include <iostream>

int main() {
    std::cout << "Hello, World!" << std::endl;
    return 0;
}
`

// materialize writes source and artifacts into a fresh per-run directory
// under root and emits the CMakeLists.txt. Artifacts live under tests/.
// Every file is written to a temp name and renamed into place, so a
// cancelled run never leaves a half-written file visible.
func materialize(root string, source testgen.SourceSet, artifacts testgen.ArtifactSet, fw testgen.Framework, cxxStandard string) (string, error) {
	if root == "" {
		root = os.TempDir()
	}
	dir, err := os.MkdirTemp(root, "testforge-run-*")
	if err != nil {
		return "", fmt.Errorf("%w: create workspace: %v", ErrWorkspace, err)
	}

	write := func(rel, content string) error {
		target := filepath.Join(dir, rel)
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("%w: path escapes workspace: %s", ErrWorkspace, rel)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("%w: mkdir for %s: %v", ErrWorkspace, rel, err)
		}
		if err := writeFileAtomic(target, content); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrWorkspace, rel, err)
		}
		return nil
	}

	cleanup := func(err error) (string, error) {
		os.RemoveAll(dir)
		return "", err
	}

	hasMain := false
	for name, content := range source {
		if filepath.Base(name) == "main.cpp" {
			hasMain = true
		}
		if err := write(filepath.Base(name), content); err != nil {
			return cleanup(err)
		}
	}
	if !hasMain {
		if err := write("main.cpp", defaultMainCpp); err != nil {
			return cleanup(err)
		}
	}

	for name, content := range artifacts {
		if err := write(filepath.Join("tests", filepath.Base(name)), content); err != nil {
			return cleanup(err)
		}
	}

	cmake := GenerateCMakeLists(filepath.Base(dir), fw, cxxStandard)
	if err := write("CMakeLists.txt", cmake); err != nil {
		return cleanup(err)
	}

	return dir, nil
}

// writeFileAtomic writes content to a sibling temp file and renames it over
// the target path.
func writeFileAtomic(target, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
