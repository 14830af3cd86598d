package cppbuild

import (
	"strings"
	"testing"

	"github.com/testforge-labs/testforge/internal/testgen"
)

func TestGenerateCMakeLists_GoogleTest(t *testing.T) {
	out := GenerateCMakeLists("demo", testgen.FrameworkGoogleTest, "17")

	for _, want := range []string{
		"set(CMAKE_CXX_STANDARD 17)",
		"--coverage",
		"googletest",
		"gtest_main",
		"add_executable(test_runner",
		`list(REMOVE_ITEM SOURCE_FILES "${CMAKE_CURRENT_SOURCE_DIR}/main.cpp")`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("CMakeLists missing %q", want)
		}
	}

	// main.cpp must be removed from the test link set before test_runner
	// is declared, or the exclusion has no effect.
	remove := strings.Index(out, "list(REMOVE_ITEM SOURCE_FILES")
	runner := strings.Index(out, "add_executable(test_runner")
	if remove < 0 || runner < 0 || remove > runner {
		t.Error("REMOVE_ITEM must precede the test_runner target")
	}
}

func TestGenerateCMakeLists_Frameworks(t *testing.T) {
	tests := []struct {
		fw   testgen.Framework
		link string
	}{
		{testgen.FrameworkGoogleTest, "gtest_main"},
		{testgen.FrameworkCatch2, "Catch2::Catch2WithMain"},
		{testgen.FrameworkDoctest, "doctest::doctest"},
	}
	for _, tt := range tests {
		out := GenerateCMakeLists("demo", tt.fw, "")
		if !strings.Contains(out, "target_link_libraries(test_runner "+tt.link+")") {
			t.Errorf("%s: missing link against %s", tt.fw, tt.link)
		}
	}
}

func TestGenerateCMakeLists_SanitizesProjectName(t *testing.T) {
	out := GenerateCMakeLists("my weird/project!", testgen.FrameworkGoogleTest, "17")
	if !strings.Contains(out, "project(my_weird_project_)") {
		t.Errorf("project name not sanitized:\n%s", out)
	}
}
