package testgen

import (
	"reflect"
	"testing"
)

func TestSourceFileFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"test_math.cpp", "math.cpp"},
		{"test_string_utils.cpp", "string_utils.cpp"},
		{"helpers.cpp", "unknown.cpp"},
		{"test_math", "math.cpp"},
	}
	for _, tt := range tests {
		if got := SourceFileFor(tt.in); got != tt.want {
			t.Errorf("SourceFileFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTestedFunctions(t *testing.T) {
	content := `#include <gtest/gtest.h>
TEST(MathTest, AddsPositives) { EXPECT_EQ(add(1, 2), 3); }
TEST_F(MathFixture, HandlesZero) {}
TEST_CASE("divides by two") { CHECK(half(4) == 2); }`

	got := TestedFunctions(content)
	want := []string{"AddsPositives", "HandlesZero", "divides by two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TestedFunctions = %v, want %v", got, want)
	}
}

func TestTestedFunctions_NoMacros(t *testing.T) {
	if got := TestedFunctions("int main() { return 0; }"); got != nil {
		t.Errorf("expected nil for content without test macros, got %v", got)
	}
}
