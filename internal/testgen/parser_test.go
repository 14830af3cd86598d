package testgen

import (
	"reflect"
	"testing"
)

func TestParseArtifacts_SingleBlock(t *testing.T) {
	raw := `Here are the tests you asked for:

===TEST_FILE_START===
filename: test_math.cpp
content: #include <gtest/gtest.h>
#include "math.h"

TEST(MathTest, AddsPositives) {
    EXPECT_EQ(add(1, 2), 3);
}
===TEST_FILE_END===

Let me know if you need anything else.`

	got := ParseArtifacts(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(got))
	}
	content, ok := got["test_math.cpp"]
	if !ok {
		t.Fatalf("missing test_math.cpp, got keys %v", got.Files())
	}
	want := `#include <gtest/gtest.h>
#include "math.h"

TEST(MathTest, AddsPositives) {
    EXPECT_EQ(add(1, 2), 3);
}`
	if content != want {
		t.Errorf("content mismatch:\ngot:\n%s\nwant:\n%s", content, want)
	}
}

func TestParseArtifacts_Tolerance(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"no markers", "I could not generate any tests, sorry.", 0},
		{"empty input", "", 0},
		{"unterminated block", "===TEST_FILE_START===\nfilename: test_a.cpp\nint x;", 0},
		{"block without filename", "===TEST_FILE_START===\nint x;\n===TEST_FILE_END===", 0},
		{"block with empty body", "===TEST_FILE_START===\nfilename: test_a.cpp\n===TEST_FILE_END===", 0},
		{"valid block after junk", "prose\n===TEST_FILE_START===\nfilename: test_a.cpp\nint x;\n===TEST_FILE_END===", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseArtifacts(tt.raw)
			if len(got) != tt.want {
				t.Errorf("expected %d artifacts, got %d (%v)", tt.want, len(got), got.Files())
			}
		})
	}
}

func TestParseArtifacts_DuplicateFilenameLastWins(t *testing.T) {
	raw := `===TEST_FILE_START===
filename: test_math.cpp
content: // first version
===TEST_FILE_END===
===TEST_FILE_START===
filename: test_math.cpp
content: // second version
===TEST_FILE_END===`

	got := ParseArtifacts(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(got))
	}
	if got["test_math.cpp"] != "// second version" {
		t.Errorf("expected last occurrence to win, got %q", got["test_math.cpp"])
	}
}

func TestParseArtifacts_MultipleBlocks(t *testing.T) {
	raw := EncodeArtifacts(ArtifactSet{
		"test_a.cpp": "int a;",
		"test_b.cpp": "int b;",
	})
	got := ParseArtifacts(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(got))
	}
}

func TestParseArtifacts_RoundTrip(t *testing.T) {
	want := ArtifactSet{
		"test_math.cpp": "#include <gtest/gtest.h>\n\nTEST(MathTest, Adds) {\n    EXPECT_EQ(add(1, 2), 3);\n}",
		"test_util.cpp": "#include \"util.h\"\nTEST(UtilTest, Trims) {}",
	}
	got := ParseArtifacts(EncodeArtifacts(want))
	if !reflect.DeepEqual(map[string]string(got), map[string]string(want)) {
		t.Errorf("round trip mismatch:\ngot:  %#v\nwant: %#v", got, want)
	}
}

func TestParseArtifacts_RoundTripPreservesWhitespace(t *testing.T) {
	want := ArtifactSet{
		"test_a.cpp": "int a;\n",
		"test_b.cpp": "    indented();\nint b;  ",
		"test_c.cpp": "\nint c;",
	}
	got := ParseArtifacts(EncodeArtifacts(want))
	if !reflect.DeepEqual(map[string]string(got), map[string]string(want)) {
		t.Errorf("whitespace round trip mismatch:\ngot:  %#v\nwant: %#v", got, want)
	}
}
