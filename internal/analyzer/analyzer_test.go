package analyzer

import (
	"context"
	"testing"

	"github.com/testforge-labs/testforge/internal/testgen"
)

const mathSource = `#include <string>
#include "math_utils.h"

int add(int a, int b) {
    return a + b;
}

class Calculator {
public:
    int multiply(int a, int b);
};

int Calculator::multiply(int a, int b) {
    return a * b;
}
`

func TestAnalyze(t *testing.T) {
	info := New().Analyze(context.Background(), testgen.SourceSet{"math.cpp": mathSource})
	if info == nil {
		t.Fatal("expected project info")
	}

	names := map[string]bool{}
	for _, fn := range info.Functions {
		names[fn.Name] = true
		if fn.File != "math.cpp" {
			t.Errorf("function %s attributed to %s", fn.Name, fn.File)
		}
	}
	if !names["add"] {
		t.Errorf("free function add not found: %+v", info.Functions)
	}
	if !names["Calculator::multiply"] {
		t.Errorf("out-of-line method not found: %+v", info.Functions)
	}

	if len(info.Classes) != 1 || info.Classes[0].Name != "Calculator" {
		t.Errorf("classes = %+v, want Calculator", info.Classes)
	}
	if info.Classes[0].Kind != "class" {
		t.Errorf("kind = %s, want class", info.Classes[0].Kind)
	}

	wantIncludes := map[string]bool{"string": true, "math_utils.h": true}
	for _, inc := range info.Includes {
		delete(wantIncludes, inc)
	}
	if len(wantIncludes) != 0 {
		t.Errorf("missing includes %v in %v", wantIncludes, info.Includes)
	}
}

func TestAnalyze_SkipsForwardDeclarations(t *testing.T) {
	info := New().Analyze(context.Background(), testgen.SourceSet{
		"fwd.h": "class Widget;\nstruct Point { int x; int y; };\n",
	})
	if len(info.Classes) != 1 {
		t.Fatalf("classes = %+v, want only the defined struct", info.Classes)
	}
	if info.Classes[0].Name != "Point" || info.Classes[0].Kind != "struct" {
		t.Errorf("got %+v, want struct Point", info.Classes[0])
	}
}

func TestAnalyze_EmptySourceSet(t *testing.T) {
	info := New().Analyze(context.Background(), testgen.SourceSet{})
	if info == nil {
		t.Fatal("empty source set still yields an inventory")
	}
	if len(info.Functions) != 0 || len(info.Classes) != 0 || info.LineCount != 0 {
		t.Errorf("expected empty inventory, got %+v", info)
	}
}
