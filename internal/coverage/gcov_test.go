package coverage

import (
	"math"
	"testing"
)

const sampleGcovOutput = `File 'math.cpp'
Lines executed:90.00% of 10
Creating 'math.cpp.gcov'

Function 'add(int, int)'
Lines executed:100.00% of 2
Function 'divide(int, int)'
Lines executed:50.00% of 4
File 'util.cpp'
Lines executed:40.00% of 5
Creating 'util.cpp.gcov'
`

func TestParseGcovOutput(t *testing.T) {
	sum := ParseGcovOutput(sampleGcovOutput)
	if sum == nil {
		t.Fatal("expected a summary")
	}

	if got := sum.PerFile["math.cpp"]; math.Abs(got-0.9) > 1e-9 {
		t.Errorf("math.cpp coverage = %v, want 0.9", got)
	}
	if got := sum.PerFile["util.cpp"]; math.Abs(got-0.4) > 1e-9 {
		t.Errorf("util.cpp coverage = %v, want 0.4", got)
	}
	if got := sum.PerFunction["add(int, int)"]; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("add coverage = %v, want 1.0", got)
	}
	if got := sum.PerFunction["divide(int, int)"]; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("divide coverage = %v, want 0.5", got)
	}

	// 9 of 10 plus 2 of 5 lines.
	if sum.LinesCovered != 11 || sum.LinesTotal != 15 {
		t.Errorf("lines = %d/%d, want 11/15", sum.LinesCovered, sum.LinesTotal)
	}
	if want := 11.0 / 15.0; math.Abs(sum.Overall-want) > 1e-9 {
		t.Errorf("overall = %v, want %v", sum.Overall, want)
	}
}

func TestParseGcovOutput_StripsDirectories(t *testing.T) {
	sum := ParseGcovOutput("File '/work/src/math.cpp'\nLines executed:100.00% of 4\n")
	if sum == nil {
		t.Fatal("expected a summary")
	}
	if _, ok := sum.PerFile["math.cpp"]; !ok {
		t.Errorf("file key should be the base name, got %v", sum.PerFile)
	}
}

func TestParseGcovOutput_Unparsable(t *testing.T) {
	for name, in := range map[string]string{
		"empty":       "",
		"junk":        "gcov: error: no input files\n",
		"bad percent": "File 'a.cpp'\nLines executed:abc% of 10\n",
	} {
		if sum := ParseGcovOutput(in); sum != nil {
			t.Errorf("%s: expected nil summary, got %+v", name, sum)
		}
	}
}

func TestParseExecutedLine(t *testing.T) {
	ratio, total, ok := parseExecutedLine("Lines executed:83.33% of 12")
	if !ok {
		t.Fatal("expected line to parse")
	}
	if math.Abs(ratio-0.8333) > 1e-4 || total != 12 {
		t.Errorf("got ratio=%v total=%d", ratio, total)
	}

	if _, _, ok := parseExecutedLine("Lines executed:nonsense"); ok {
		t.Error("malformed line must not parse")
	}
}
