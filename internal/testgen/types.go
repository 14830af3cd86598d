package testgen

import (
	"fmt"
	"sort"
)

// Framework identifies the C++ testing framework the generated tests target.
type Framework string

const (
	FrameworkGoogleTest Framework = "googletest"
	FrameworkCatch2     Framework = "catch2"
	FrameworkDoctest    Framework = "doctest"
)

// ParseFramework normalizes common spellings ("google_test", "gtest", ...)
// and rejects anything else.
func ParseFramework(s string) (Framework, error) {
	switch s {
	case "googletest", "google_test", "gtest":
		return FrameworkGoogleTest, nil
	case "catch2", "catch":
		return FrameworkCatch2, nil
	case "doctest":
		return FrameworkDoctest, nil
	}
	return "", fmt.Errorf("unknown test framework %q", s)
}

// SourceSet maps file path to file content for the code under test.
// It is loaded once per run and never mutated afterwards.
type SourceSet map[string]string

// Files returns the file paths in deterministic order.
func (s SourceSet) Files() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ArtifactSet maps generated test filename to generated file body. Each
// stage replaces the set wholesale; artifacts are never merged field by
// field across stages.
type ArtifactSet map[string]string

// Files returns the artifact filenames in deterministic order.
func (a ArtifactSet) Files() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildOutcome is the classified result of one configure+build attempt.
// Diagnostics preserve emission order: configure-phase output precedes
// build-phase output.
type BuildOutcome struct {
	Success     bool     `json:"success"`
	Diagnostics []string `json:"diagnostics"`
}

// CoverageSummary is the parsed coverage-tool output. It is only ever
// attached to a successful terminal outcome.
type CoverageSummary struct {
	Overall      float64            `json:"overall_coverage"`
	PerFile      map[string]float64 `json:"file_coverage"`
	PerFunction  map[string]float64 `json:"function_coverage"`
	LinesCovered int                `json:"lines_covered"`
	LinesTotal   int                `json:"total_lines"`
}

// State is the mutable record threaded through pipeline stages. The runner
// owns it exclusively; stages receive and return it by value.
type State struct {
	Source    SourceSet
	Framework Framework
	Artifacts ArtifactSet
	History   []string
	Iteration int
	Outcome   *BuildOutcome
}

// Status is the terminal state of a pipeline run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// GeneratedTest describes one produced test artifact.
type GeneratedTest struct {
	Filename        string   `json:"filename"`
	Content         string   `json:"content"`
	SourceFile      string   `json:"source_file"`
	FunctionsTested []string `json:"functions_tested"`
}

// Report is the structured result handed back to the caller. Build-loop
// conditions are always reported here, never raised as errors.
type Report struct {
	Status      Status           `json:"status"`
	Tests       []GeneratedTest  `json:"generated_tests"`
	Coverage    *CoverageSummary `json:"coverage,omitempty"`
	Diagnostics []string         `json:"diagnostics,omitempty"`
	Iterations  int              `json:"iterations"`
}
