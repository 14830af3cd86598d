package coverage

import (
	"context"
	"io/fs"
	"log/slog"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/testforge-labs/testforge/internal/testgen"
)

const (
	defaultTestRunTimeout = 30 * time.Second
	defaultGcovTimeout    = 30 * time.Second
)

// Analyzer produces a coverage summary for a workspace whose build
// succeeded. It implements testgen.CoverageAnalyzer. Every failure mode
// degrades to a nil summary; coverage is an enrichment, never a gate.
type Analyzer struct {
	TestRunTimeout time.Duration
	GcovTimeout    time.Duration
	Logger         *slog.Logger
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Analyze runs the test binary (best-effort), invokes gcov over the
// compiled objects' coverage notes, and parses the textual output.
func (a *Analyzer) Analyze(ctx context.Context, workDir string) *testgen.CoverageSummary {
	buildDir := filepath.Join(workDir, "build")

	a.runTests(ctx, buildDir)

	if _, err := exec.LookPath("gcov"); err != nil {
		a.logger().Info("gcov not found, skipping coverage")
		return nil
	}

	notes := findCoverageNotes(buildDir)
	if len(notes) == 0 {
		a.logger().Info("no coverage notes produced, skipping coverage")
		return nil
	}

	timeout := a.GcovTimeout
	if timeout <= 0 {
		timeout = defaultGcovTimeout
	}
	gcovCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"-f"}, notes...)
	cmd := exec.CommandContext(gcovCtx, "gcov", args...)
	cmd.Dir = buildDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		a.logger().Info("gcov failed, skipping coverage", slog.String("error", err.Error()))
		return nil
	}

	return ParseGcovOutput(string(out))
}

// runTests executes the produced test binary so the coverage counters get
// populated. Failure to run only degrades coverage, never the pipeline.
func (a *Analyzer) runTests(ctx context.Context, buildDir string) {
	timeout := a.TestRunTimeout
	if timeout <= 0 {
		timeout = defaultTestRunTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, filepath.Join(buildDir, "test_runner"))
	cmd.Dir = buildDir
	if err := cmd.Run(); err != nil {
		a.logger().Info("test_runner execution failed, coverage counters may be empty",
			slog.String("error", err.Error()))
	}
}

// findCoverageNotes globs the build tree for .gcno files emitted by the
// instrumented compile.
func findCoverageNotes(buildDir string) []string {
	var notes []string
	filepath.WalkDir(buildDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, ".gcno") {
			notes = append(notes, path)
		}
		return nil
	})
	return notes
}

// ParseGcovOutput turns gcov's human-readable report into a summary.
// gcov emits alternating header/percentage pairs:
//
//	File 'math.cpp'
//	Lines executed:90.00% of 10
//	Function 'add(int, int)'
//	Lines executed:100.00% of 2
//
// A report with no parsable percentage lines yields nil.
func ParseGcovOutput(out string) *testgen.CoverageSummary {
	summary := &testgen.CoverageSummary{
		PerFile:     map[string]float64{},
		PerFunction: map[string]float64{},
	}

	var currentFile, currentFunc string
	parsed := false

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "File '"):
			currentFile = strings.TrimSuffix(strings.TrimPrefix(line, "File '"), "'")
			currentFunc = ""
		case strings.HasPrefix(line, "Function '"):
			currentFunc = strings.TrimSuffix(strings.TrimPrefix(line, "Function '"), "'")
		case strings.HasPrefix(line, "Lines executed:"):
			ratio, total, ok := parseExecutedLine(line)
			if !ok {
				continue
			}
			parsed = true
			if currentFunc != "" {
				summary.PerFunction[currentFunc] = ratio
				currentFunc = ""
			} else if currentFile != "" {
				summary.PerFile[filepath.Base(currentFile)] = ratio
				summary.LinesTotal += total
				summary.LinesCovered += int(math.Round(ratio * float64(total)))
			}
		}
	}

	if !parsed {
		return nil
	}
	if summary.LinesTotal > 0 {
		summary.Overall = float64(summary.LinesCovered) / float64(summary.LinesTotal)
	}
	return summary
}

// parseExecutedLine parses "Lines executed:90.00% of 10".
func parseExecutedLine(line string) (ratio float64, total int, ok bool) {
	rest := strings.TrimPrefix(line, "Lines executed:")
	parts := strings.SplitN(rest, "% of ", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	total, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return pct / 100.0, total, true
}
