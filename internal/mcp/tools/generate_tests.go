package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/testforge-labs/testforge/internal/jobqueue"
	"github.com/testforge-labs/testforge/internal/store"
	"github.com/testforge-labs/testforge/internal/store/postgres"
	"github.com/testforge-labs/testforge/internal/testgen"
)

// GenerateTestsParams are the parameters for the generate_tests tool.
type GenerateTestsParams struct {
	ProjectSlug string `json:"project_slug"`
	Framework   string `json:"framework,omitempty"`
	Model       string `json:"model,omitempty"`
}

// GenerateTestsHandler implements the generate_tests MCP tool. It queues a
// run; use get_run_report to poll for the outcome.
type GenerateTestsHandler struct {
	store    *store.Store
	producer *jobqueue.Producer
	logger   *slog.Logger
}

// NewGenerateTestsHandler creates a new handler.
func NewGenerateTestsHandler(s *store.Store, producer *jobqueue.Producer, logger *slog.Logger) *GenerateTestsHandler {
	return &GenerateTestsHandler{store: s, producer: producer, logger: logger}
}

func (h *GenerateTestsHandler) Handle(ctx context.Context, params GenerateTestsParams) (string, error) {
	if params.ProjectSlug == "" {
		return "", fmt.Errorf("project_slug is required")
	}
	if h.producer == nil {
		return "", fmt.Errorf("job queue is not available")
	}

	fw := testgen.FrameworkGoogleTest
	if params.Framework != "" {
		parsed, err := testgen.ParseFramework(params.Framework)
		if err != nil {
			return "", fmt.Errorf("framework must be one of: googletest, catch2, doctest")
		}
		fw = parsed
	}

	project, err := h.store.GetProjectBySlug(ctx, params.ProjectSlug)
	if err != nil {
		return "", WrapProjectError(err)
	}
	if project.FileCount == 0 {
		return "", fmt.Errorf("project '%s' has no uploaded source files", project.Slug)
	}

	run, err := h.store.CreateRun(ctx, postgres.CreateRunParams{
		ProjectID: project.ID,
		Framework: string(fw),
		Model:     params.Model,
	})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	if _, err := h.producer.Enqueue(ctx, jobqueue.GenerateMessage{
		RunID:       run.ID,
		ProjectID:   project.ID,
		ProjectSlug: project.Slug,
		Framework:   run.Framework,
		Model:       run.Model,
	}); err != nil {
		return "", fmt.Errorf("enqueue run: %w", err)
	}

	h.logger.Info("generation run queued via mcp",
		slog.String("run_id", run.ID.String()),
		slog.String("project", project.Slug))

	return fmt.Sprintf("Queued generation run `%s` for project `%s` (framework %s). Use get_run_report with this run_id to check progress.",
		run.ID, project.Slug, fw), nil
}
