package cppbuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// ErrToolchainMissing means the build tool is absent from the environment.
// It is fatal to verification; the controller reports it without retrying.
var ErrToolchainMissing = errors.New("build toolchain missing")

const (
	defaultConfigureTimeout = 60 * time.Second
	defaultBuildTimeout     = 120 * time.Second
)

// Builder verifies generated artifacts by materializing a workspace and
// driving cmake through its configure and build phases. It implements
// testgen.Verifier. A Builder is stateless and safe for concurrent runs:
// every Verify call gets its own workspace directory.
type Builder struct {
	Root             string // parent directory for per-run workspaces
	ConfigureTimeout time.Duration
	BuildTimeout     time.Duration
	CXXStandard      string
	Logger           *slog.Logger
}

func (b *Builder) configureTimeout() time.Duration {
	if b.ConfigureTimeout > 0 {
		return b.ConfigureTimeout
	}
	return defaultConfigureTimeout
}

func (b *Builder) buildTimeout() time.Duration {
	if b.BuildTimeout > 0 {
		return b.BuildTimeout
	}
	return defaultBuildTimeout
}

// Verify materializes the inputs and runs cmake configure then build, each
// under its own timeout. Both phases' combined output is captured in phase
// order. A non-zero exit or timeout in either phase is a build failure; a
// missing cmake binary or a workspace write failure is returned as an error.
func (b *Builder) Verify(ctx context.Context, source testgen.SourceSet, artifacts testgen.ArtifactSet, fw testgen.Framework) (testgen.BuildOutcome, string, error) {
	if len(artifacts) == 0 {
		// Nothing to link a test_runner from. Treated as a failed attempt
		// so the repair loop gets a chance to produce artifacts.
		return testgen.BuildOutcome{
			Success:     false,
			Diagnostics: []string{"no test artifacts were generated; nothing to build"},
		}, "", nil
	}

	if _, err := exec.LookPath("cmake"); err != nil {
		return testgen.BuildOutcome{}, "", fmt.Errorf("%w: cmake not found in PATH", ErrToolchainMissing)
	}

	dir, err := materialize(b.Root, source, artifacts, fw, b.CXXStandard)
	if err != nil {
		return testgen.BuildOutcome{}, "", err
	}

	buildDir := filepath.Join(dir, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		os.RemoveAll(dir)
		return testgen.BuildOutcome{}, "", fmt.Errorf("%w: create build dir: %v", ErrWorkspace, err)
	}

	var diagnostics []string

	confOut, confOK := b.runPhase(ctx, b.configureTimeout(), buildDir, "configure",
		"cmake", "..", "-DCMAKE_BUILD_TYPE=Debug")
	diagnostics = append(diagnostics, confOut)
	if !confOK {
		return testgen.BuildOutcome{Success: false, Diagnostics: diagnostics}, dir, nil
	}

	buildOut, buildOK := b.runPhase(ctx, b.buildTimeout(), buildDir, "build",
		"cmake", "--build", ".", "--config", "Debug")
	diagnostics = append(diagnostics, buildOut)

	return testgen.BuildOutcome{Success: buildOK, Diagnostics: diagnostics}, dir, nil
}

// Discard releases a workspace returned by Verify.
func (b *Builder) Discard(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil && b.Logger != nil {
		b.Logger.Warn("discard workspace", slog.String("dir", dir), slog.String("error", err.Error()))
	}
}

// runPhase executes one toolchain phase under its own deadline and returns
// the captured combined output plus whether the phase exited zero.
func (b *Builder) runPhase(ctx context.Context, timeout time.Duration, workDir, phase string, name string, args ...string) (string, bool) {
	phaseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(phaseCtx, name, args...)
	cmd.Dir = workDir
	out, err := cmd.CombinedOutput()

	output := fmt.Sprintf("[%s] %s", phase, string(out))
	if phaseCtx.Err() == context.DeadlineExceeded {
		output += fmt.Sprintf("\n[%s] timed out after %s", phase, timeout)
		return output, false
	}
	if err != nil {
		if b.Logger != nil {
			b.Logger.Info("build phase failed",
				slog.String("phase", phase),
				slog.String("error", err.Error()))
		}
		return output, false
	}
	return output, true
}
