package testgen

import (
	"context"
	"fmt"
	"log/slog"
)

// Phase is the pipeline controller's state.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseGenerating
	PhaseVerifying
	PhaseRepairing
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseGenerating:
		return "generating"
	case PhaseVerifying:
		return "verifying"
	case PhaseRepairing:
		return "repairing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Event drives phase transitions.
type Event int

const (
	EventStart Event = iota
	EventGenerated
	EventBuildPassed
	EventBuildFailed
	EventRepaired
	EventBudgetExhausted
)

// Next is the pure transition function. Invalid (phase, event) pairs hold
// the current phase, which makes transition bugs visible in tests instead
// of silently advancing the pipeline.
func Next(p Phase, ev Event) Phase {
	switch {
	case p == PhaseInit && ev == EventStart:
		return PhaseGenerating
	case p == PhaseGenerating && ev == EventGenerated:
		return PhaseVerifying
	case p == PhaseVerifying && ev == EventBuildPassed:
		return PhaseSucceeded
	case p == PhaseVerifying && ev == EventBuildFailed:
		return PhaseRepairing
	case p == PhaseVerifying && ev == EventBudgetExhausted:
		return PhaseFailed
	case p == PhaseRepairing && ev == EventRepaired:
		return PhaseVerifying
	}
	return p
}

// Oracle is the generation-service contract: one round trip per call.
type Oracle interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Verifier materializes source and artifacts into a fresh workspace and
// runs the build toolchain. The returned dir is the workspace; Discard
// releases it. A failed build is reported through BuildOutcome, not err;
// err is reserved for fatal conditions (toolchain missing, workspace IO).
type Verifier interface {
	Verify(ctx context.Context, source SourceSet, artifacts ArtifactSet, fw Framework) (BuildOutcome, string, error)
	Discard(dir string)
}

// CoverageAnalyzer inspects a workspace after a successful build. A nil
// result means coverage is unavailable; it never blocks the pipeline.
type CoverageAnalyzer interface {
	Analyze(ctx context.Context, workDir string) *CoverageSummary
}

// Runner drives the generate -> verify -> repair loop for one request.
// It is stateless between calls: each Run owns a private State and
// workspace, so concurrent runs share nothing.
type Runner struct {
	Oracle        Oracle
	Verifier      Verifier
	Coverage      CoverageAnalyzer // optional
	MaxIterations int              // repair rounds; <=0 means 1
	Refine        bool             // one-shot refinement before first verify
	Logger        *slog.Logger
}

func (r *Runner) maxIterations() int {
	if r.MaxIterations <= 0 {
		return 1
	}
	return r.MaxIterations
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run executes the full pipeline and returns a structured report. Only
// oracle failures, a missing build toolchain, and workspace IO failures
// surface as errors; build failures and malformed artifacts are absorbed
// into the report.
func (r *Runner) Run(ctx context.Context, source SourceSet, fw Framework) (Report, error) {
	log := r.logger()
	st := State{Source: source, Framework: fw, Artifacts: ArtifactSet{}}
	phase := Next(PhaseInit, EventStart)

	raw, err := r.Oracle.Complete(ctx, Compose(StageInitial, st))
	if err != nil {
		return Report{}, fmt.Errorf("initial generation: %w", err)
	}
	st.Artifacts = ParseArtifacts(raw)
	log.Info("generated test artifacts", slog.Int("count", len(st.Artifacts)))

	if r.Refine {
		raw, err := r.Oracle.Complete(ctx, Compose(StageRefine, st))
		if err != nil {
			return Report{}, fmt.Errorf("refinement: %w", err)
		}
		st.Artifacts = ParseArtifacts(raw)
		log.Info("refined test artifacts", slog.Int("count", len(st.Artifacts)))
	}

	phase = Next(phase, EventGenerated)

	var workDir string
	defer func() {
		if workDir != "" {
			r.Verifier.Discard(workDir)
		}
	}()

	for phase == PhaseVerifying {
		outcome, dir, err := r.Verifier.Verify(ctx, st.Source, st.Artifacts, st.Framework)
		if dir != "" {
			if workDir != "" {
				r.Verifier.Discard(workDir)
			}
			workDir = dir
		}
		if err != nil {
			return Report{}, fmt.Errorf("verify: %w", err)
		}

		st.History = append(st.History, outcome.Diagnostics...)
		st.Outcome = &outcome

		if outcome.Success {
			phase = Next(phase, EventBuildPassed)
			break
		}
		if st.Iteration >= r.maxIterations() {
			phase = Next(phase, EventBudgetExhausted)
			break
		}

		phase = Next(phase, EventBuildFailed)
		log.Info("build failed, composing repair request", slog.Int("iteration", st.Iteration+1))

		raw, err := r.Oracle.Complete(ctx, Compose(StageBuildFix, st))
		if err != nil {
			return Report{}, fmt.Errorf("build repair: %w", err)
		}
		st.Artifacts = ParseArtifacts(raw)
		st.Iteration++
		phase = Next(phase, EventRepaired)
	}

	var cov *CoverageSummary
	if phase == PhaseSucceeded && r.Coverage != nil && workDir != "" {
		cov = r.Coverage.Analyze(ctx, workDir)
	}

	log.Info("pipeline finished",
		slog.String("phase", phase.String()),
		slog.Int("iterations", st.Iteration),
		slog.Int("artifacts", len(st.Artifacts)))

	return buildReport(phase, st, cov), nil
}
