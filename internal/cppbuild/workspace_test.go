package cppbuild

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/testforge-labs/testforge/internal/testgen"
)

func TestMaterialize(t *testing.T) {
	root := t.TempDir()
	source := testgen.SourceSet{"math.cpp": "int add(int a,int b){return a+b;}"}
	artifacts := testgen.ArtifactSet{"test_math.cpp": "TEST(MathTest, Adds) {}"}

	dir, err := materialize(root, source, artifacts, testgen.FrameworkGoogleTest, "17")
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	defer os.RemoveAll(dir)

	for _, rel := range []string{"math.cpp", "main.cpp", "CMakeLists.txt", filepath.Join("tests", "test_math.cpp")} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("expected %s in workspace: %v", rel, err)
		}
	}

	// No half-written temp files may remain visible.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestMaterialize_KeepsProvidedMain(t *testing.T) {
	root := t.TempDir()
	source := testgen.SourceSet{"main.cpp": "int main() { return 42; }"}

	dir, err := materialize(root, source, testgen.ArtifactSet{"test_x.cpp": "TEST(X, Y) {}"}, testgen.FrameworkGoogleTest, "17")
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	defer os.RemoveAll(dir)

	got, err := os.ReadFile(filepath.Join(dir, "main.cpp"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "int main() { return 42; }" {
		t.Errorf("provided main.cpp was overwritten: %s", got)
	}
}

func TestMaterialize_IsolatedWorkspaces(t *testing.T) {
	root := t.TempDir()
	source := testgen.SourceSet{"a.cpp": "int a;"}
	artifacts := testgen.ArtifactSet{"test_a.cpp": "TEST(A, B) {}"}

	first, err := materialize(root, source, artifacts, testgen.FrameworkGoogleTest, "17")
	if err != nil {
		t.Fatal(err)
	}
	second, err := materialize(root, source, artifacts, testgen.FrameworkGoogleTest, "17")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(first)
	defer os.RemoveAll(second)

	if first == second {
		t.Errorf("two runs must never share a workspace: %s", first)
	}
}

func TestVerify_EmptyArtifactsIsBuildFailure(t *testing.T) {
	b := &Builder{Root: t.TempDir()}
	outcome, dir, err := b.Verify(context.Background(),
		testgen.SourceSet{"a.cpp": "int a;"}, testgen.ArtifactSet{}, testgen.FrameworkGoogleTest)
	if err != nil {
		t.Fatalf("empty artifacts must not be fatal: %v", err)
	}
	if outcome.Success {
		t.Error("empty artifact set must classify as a failed build attempt")
	}
	if dir != "" {
		t.Errorf("no workspace should be created for an empty artifact set, got %s", dir)
	}
	if len(outcome.Diagnostics) == 0 {
		t.Error("expected a diagnostic explaining the empty artifact set")
	}
}

func TestBuilder_Discard(t *testing.T) {
	b := &Builder{}
	dir := t.TempDir()
	sub := filepath.Join(dir, "ws")
	if err := os.MkdirAll(filepath.Join(sub, "build"), 0o755); err != nil {
		t.Fatal(err)
	}
	b.Discard(sub)
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Errorf("expected workspace removed, stat err = %v", err)
	}
	// Discarding the empty string is a no-op.
	b.Discard("")
}
