package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/testforge-labs/testforge/internal/store"
	"github.com/testforge-labs/testforge/internal/store/postgres"
	"github.com/testforge-labs/testforge/pkg/apierr"
)

// getProjectOr404 fetches a project by slug and writes a 404/500 error on failure.
// Returns the project and true on success, or zero-value and false if an error was written.
func getProjectOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, slug string) (postgres.Project, bool) {
	project, err := s.GetProjectBySlug(r.Context(), slug)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, logger, apierr.ProjectNotFound())
		} else {
			writeAPIError(w, logger, apierr.InternalError(err))
		}
		return postgres.Project{}, false
	}
	return project, true
}

// getRunOr404 fetches a generation run by UUID and writes a 404/500 error on failure.
func getRunOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, id uuid.UUID) (postgres.GenerationRun, bool) {
	run, err := s.GetRun(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, logger, apierr.RunNotFound())
		} else {
			writeAPIError(w, logger, apierr.InternalError(err))
		}
		return postgres.GenerationRun{}, false
	}
	return run, true
}
