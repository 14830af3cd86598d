package testgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeOracle struct {
	responses []string
	calls     int
	err       error
}

func (f *fakeOracle) Complete(ctx context.Context, req Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", fmt.Errorf("unexpected oracle call %d", f.calls+1)
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

type fakeVerifier struct {
	outcomes  []BuildOutcome
	calls     int
	discarded []string
	err       error
}

func (f *fakeVerifier) Verify(ctx context.Context, src SourceSet, artifacts ArtifactSet, fw Framework) (BuildOutcome, string, error) {
	if f.err != nil {
		return BuildOutcome{}, "", f.err
	}
	out := f.outcomes[f.calls]
	f.calls++
	return out, fmt.Sprintf("/tmp/ws-%d", f.calls), nil
}

func (f *fakeVerifier) Discard(dir string) {
	f.discarded = append(f.discarded, dir)
}

type fakeCoverage struct {
	summary *CoverageSummary
}

func (f *fakeCoverage) Analyze(ctx context.Context, workDir string) *CoverageSummary {
	return f.summary
}

func block(filename, content string) string {
	return EncodeArtifacts(ArtifactSet{filename: content})
}

func TestNext_Transitions(t *testing.T) {
	tests := []struct {
		phase Phase
		event Event
		want  Phase
	}{
		{PhaseInit, EventStart, PhaseGenerating},
		{PhaseGenerating, EventGenerated, PhaseVerifying},
		{PhaseVerifying, EventBuildPassed, PhaseSucceeded},
		{PhaseVerifying, EventBuildFailed, PhaseRepairing},
		{PhaseVerifying, EventBudgetExhausted, PhaseFailed},
		{PhaseRepairing, EventRepaired, PhaseVerifying},
		// Invalid pairs hold the current phase.
		{PhaseSucceeded, EventBuildFailed, PhaseSucceeded},
		{PhaseFailed, EventStart, PhaseFailed},
		{PhaseInit, EventBuildPassed, PhaseInit},
	}
	for _, tt := range tests {
		if got := Next(tt.phase, tt.event); got != tt.want {
			t.Errorf("Next(%s, %d) = %s, want %s", tt.phase, tt.event, got, tt.want)
		}
	}
}

func TestRunner_SuccessShortCircuit(t *testing.T) {
	oracle := &fakeOracle{responses: []string{
		block("test_math.cpp", "TEST(MathTest, Adds) { EXPECT_EQ(add(1, 2), 3); }"),
	}}
	verifier := &fakeVerifier{outcomes: []BuildOutcome{
		{Success: true, Diagnostics: []string{"configure ok", "build ok"}},
	}}
	cov := &fakeCoverage{summary: &CoverageSummary{Overall: 0.9}}

	r := &Runner{Oracle: oracle, Verifier: verifier, Coverage: cov}
	report, err := r.Run(context.Background(), SourceSet{"math.cpp": "int add(int a,int b){return a+b;}"}, FrameworkGoogleTest)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Status != StatusSucceeded {
		t.Errorf("expected succeeded, got %s", report.Status)
	}
	if oracle.calls != 1 {
		t.Errorf("repair stage must not run on first-build success; oracle calls = %d", oracle.calls)
	}
	if report.Iterations != 0 {
		t.Errorf("expected 0 iterations, got %d", report.Iterations)
	}
	if report.Coverage == nil || report.Coverage.Overall != 0.9 {
		t.Errorf("expected coverage summary attached, got %+v", report.Coverage)
	}
	if len(report.Tests) != 1 || report.Tests[0].SourceFile != "math.cpp" {
		t.Errorf("expected one test mapped to math.cpp, got %+v", report.Tests)
	}
	if len(verifier.discarded) != 1 {
		t.Errorf("workspace must be released after the run, discarded = %v", verifier.discarded)
	}
}

func TestRunner_IterationCeiling(t *testing.T) {
	oracle := &fakeOracle{responses: []string{
		block("test_math.cpp", "TEST(MathTest, A) {}"),
		block("test_math.cpp", "TEST(MathTest, A) { /* fixed */ }"),
		// A third response existing here would mask an extra call; the
		// fake errors instead if the runner over-asks.
	}}
	verifier := &fakeVerifier{outcomes: []BuildOutcome{
		{Success: false, Diagnostics: []string{"C1", "B1"}},
		{Success: false, Diagnostics: []string{"C2", "B2"}},
	}}

	r := &Runner{Oracle: oracle, Verifier: verifier, MaxIterations: 1}
	report, err := r.Run(context.Background(), SourceSet{"math.cpp": "int add;"}, FrameworkGoogleTest)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Status != StatusFailed {
		t.Errorf("expected failed, got %s", report.Status)
	}
	if oracle.calls != 2 {
		t.Errorf("expected exactly 2 generation calls (initial + one repair), got %d", oracle.calls)
	}
	if verifier.calls != 2 {
		t.Errorf("expected exactly 2 build attempts, got %d", verifier.calls)
	}
	if report.Iterations != 1 {
		t.Errorf("expected 1 iteration, got %d", report.Iterations)
	}
	if report.Coverage != nil {
		t.Error("failed run must not carry a coverage summary")
	}
}

func TestRunner_DiagnosticsOrdering(t *testing.T) {
	oracle := &fakeOracle{responses: []string{
		block("test_a.cpp", "TEST(A, B) {}"),
		block("test_a.cpp", "TEST(A, B) { /* v2 */ }"),
	}}
	verifier := &fakeVerifier{outcomes: []BuildOutcome{
		{Success: false, Diagnostics: []string{"C1", "B1"}},
		{Success: false, Diagnostics: []string{"C2", "B2"}},
	}}

	r := &Runner{Oracle: oracle, Verifier: verifier, MaxIterations: 1}
	report, err := r.Run(context.Background(), SourceSet{"a.cpp": "int a;"}, FrameworkGoogleTest)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"C1", "B1", "C2", "B2"}
	if len(report.Diagnostics) != len(want) {
		t.Fatalf("expected %d diagnostics, got %v", len(want), report.Diagnostics)
	}
	for i, d := range want {
		if report.Diagnostics[i] != d {
			t.Errorf("diagnostics[%d] = %q, want %q (phase order then round order)", i, report.Diagnostics[i], d)
		}
	}
}

func TestRunner_OracleErrorAbortsRun(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("service unavailable")}
	verifier := &fakeVerifier{}

	r := &Runner{Oracle: oracle, Verifier: verifier}
	_, err := r.Run(context.Background(), SourceSet{"a.cpp": "int a;"}, FrameworkGoogleTest)
	if err == nil {
		t.Fatal("expected error from aborted run")
	}
	if verifier.calls != 0 {
		t.Errorf("verify must not run after an oracle failure, calls = %d", verifier.calls)
	}
}

func TestRunner_RepairOracleErrorDoesNotConsumeIteration(t *testing.T) {
	oracle := &fakeOracle{responses: []string{
		block("test_a.cpp", "TEST(A, B) {}"),
		// Second call (repair) runs out of scripted responses -> error.
	}}
	verifier := &fakeVerifier{outcomes: []BuildOutcome{
		{Success: false, Diagnostics: []string{"boom"}},
	}}

	r := &Runner{Oracle: oracle, Verifier: verifier, MaxIterations: 1}
	_, err := r.Run(context.Background(), SourceSet{"a.cpp": "int a;"}, FrameworkGoogleTest)
	if err == nil {
		t.Fatal("expected error when repair generation fails")
	}
	if !strings.Contains(err.Error(), "build repair") {
		t.Errorf("error should identify the repair stage, got %v", err)
	}
}

func TestRunner_FatalVerifyErrorAborts(t *testing.T) {
	oracle := &fakeOracle{responses: []string{block("test_a.cpp", "TEST(A, B) {}")}}
	verifier := &fakeVerifier{err: errors.New("cmake: executable file not found")}

	r := &Runner{Oracle: oracle, Verifier: verifier}
	_, err := r.Run(context.Background(), SourceSet{"a.cpp": "int a;"}, FrameworkGoogleTest)
	if err == nil {
		t.Fatal("expected fatal verify error to abort the run")
	}
}

func TestRunner_RefineStageRunsOnce(t *testing.T) {
	oracle := &fakeOracle{responses: []string{
		block("test_a.cpp", "TEST(A, Rough) {}"),
		block("test_a.cpp", "TEST(A, Polished) {}"),
	}}
	verifier := &fakeVerifier{outcomes: []BuildOutcome{{Success: true}}}

	r := &Runner{Oracle: oracle, Verifier: verifier, Refine: true}
	report, err := r.Run(context.Background(), SourceSet{"a.cpp": "int a;"}, FrameworkGoogleTest)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if oracle.calls != 2 {
		t.Errorf("expected initial + refine = 2 calls, got %d", oracle.calls)
	}
	if report.Tests[0].Content != "TEST(A, Polished) {}" {
		t.Errorf("refined artifacts must replace the initial set, got %q", report.Tests[0].Content)
	}
	if report.Iterations != 0 {
		t.Errorf("refinement is not a repair round, iterations = %d", report.Iterations)
	}
}

func TestRunner_EndToEndScenario(t *testing.T) {
	oracle := &fakeOracle{responses: []string{
		block("test_math.cpp", "#include <gtest/gtest.h>\nTEST(MathTest, AddsPositives) { EXPECT_EQ(add(1, 2), 3); }"),
	}}
	verifier := &fakeVerifier{outcomes: []BuildOutcome{{Success: true, Diagnostics: []string{"ok"}}}}

	r := &Runner{Oracle: oracle, Verifier: verifier}
	report, err := r.Run(context.Background(),
		SourceSet{"math.cpp": "int add(int a,int b){return a+b;}"}, FrameworkGoogleTest)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", report.Status)
	}
	if len(report.Tests) != 1 {
		t.Fatalf("expected one generated test, got %d", len(report.Tests))
	}
	if report.Tests[0].SourceFile != "math.cpp" {
		t.Errorf("source_file = %s, want math.cpp", report.Tests[0].SourceFile)
	}
	if got := report.Tests[0].FunctionsTested; len(got) != 1 || got[0] != "AddsPositives" {
		t.Errorf("functions_tested = %v, want [AddsPositives]", got)
	}
	if report.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", report.Iterations)
	}
}
