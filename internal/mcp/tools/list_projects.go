package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/testforge-labs/testforge/internal/store"
)

// ListProjectsParams are the parameters for the list_projects tool.
type ListProjectsParams struct {
	Limit int32 `json:"limit,omitempty"`
}

// ListProjectsHandler implements the list_projects MCP tool.
type ListProjectsHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewListProjectsHandler creates a new handler.
func NewListProjectsHandler(s *store.Store, logger *slog.Logger) *ListProjectsHandler {
	return &ListProjectsHandler{store: s, logger: logger}
}

// Handle lists registered projects with their readiness state.
func (h *ListProjectsHandler) Handle(ctx context.Context, params ListProjectsParams) (string, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}

	projects, err := h.store.ListProjects(ctx, int64(params.Limit), 0)
	if err != nil {
		return "", fmt.Errorf("list projects: %w", err)
	}

	if len(projects) == 0 {
		return "No projects found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Projects** (%d found)\n", len(projects))
	for _, proj := range projects {
		desc := ""
		if proj.Description != "" {
			desc = " — " + proj.Description
		}
		fmt.Fprintf(&b, "- **%s** (`%s`) [%s, %d files]%s\n",
			proj.Name, proj.Slug, proj.Status, proj.FileCount, desc)
	}
	return b.String(), nil
}
