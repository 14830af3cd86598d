package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/testforge-labs/testforge/internal/store"
	"github.com/testforge-labs/testforge/internal/testgen"
)

// GetRunReportParams are the parameters for the get_run_report tool.
type GetRunReportParams struct {
	RunID string `json:"run_id"`
}

// GetRunReportHandler implements the get_run_report MCP tool.
type GetRunReportHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewGetRunReportHandler creates a new handler.
func NewGetRunReportHandler(s *store.Store, logger *slog.Logger) *GetRunReportHandler {
	return &GetRunReportHandler{store: s, logger: logger}
}

// Handle renders a finished run's report: status, iterations, generated
// files, coverage, and the trailing diagnostics when the build failed.
func (h *GetRunReportHandler) Handle(ctx context.Context, params GetRunReportParams) (string, error) {
	runID, err := uuid.Parse(params.RunID)
	if err != nil {
		return "", fmt.Errorf("invalid run_id: %s", params.RunID)
	}

	run, err := h.store.GetRun(ctx, runID)
	if err != nil {
		return "", WrapRunError(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Generation run `%s`**\n", run.ID)
	fmt.Fprintf(&b, "- Status: %s\n", run.Status)
	fmt.Fprintf(&b, "- Framework: %s\n", run.Framework)
	fmt.Fprintf(&b, "- Repair iterations used: %d\n", run.Iterations)
	if run.Error != "" {
		fmt.Fprintf(&b, "- Error: %s\n", run.Error)
	}

	if len(run.Report) == 0 {
		b.WriteString("\nNo report available yet.\n")
		return b.String(), nil
	}

	var report testgen.Report
	if err := json.Unmarshal(run.Report, &report); err != nil {
		return "", fmt.Errorf("decode report: %w", err)
	}

	if len(report.Tests) > 0 {
		b.WriteString("\n**Generated tests**\n")
		for _, test := range report.Tests {
			fmt.Fprintf(&b, "- `%s` (targets `%s`", test.Filename, test.SourceFile)
			if len(test.FunctionsTested) > 0 {
				fmt.Fprintf(&b, ", cases: %s", strings.Join(test.FunctionsTested, ", "))
			}
			b.WriteString(")\n")
		}
	}

	if report.Coverage != nil {
		fmt.Fprintf(&b, "\n**Coverage**: %.1f%% (%d/%d lines)\n",
			report.Coverage.Overall*100, report.Coverage.LinesCovered, report.Coverage.LinesTotal)
		for _, file := range sortedKeys(report.Coverage.PerFile) {
			fmt.Fprintf(&b, "- `%s`: %.1f%%\n", file, report.Coverage.PerFile[file]*100)
		}
	}

	if report.Status == testgen.StatusFailed && len(report.Diagnostics) > 0 {
		b.WriteString("\n**Last build diagnostics**\n```\n")
		b.WriteString(tail(report.Diagnostics[len(report.Diagnostics)-1], 2000))
		b.WriteString("\n```\n")
	}

	return b.String(), nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "…" + s[len(s)-max:]
}
