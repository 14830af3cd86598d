package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testforge-labs/testforge/internal/analyzer"
	"github.com/testforge-labs/testforge/internal/store"
	minioclient "github.com/testforge-labs/testforge/internal/store/minio"
	"github.com/testforge-labs/testforge/pkg/apierr"
)

// AnalysisHandler exposes the structural inventory of a project's sources.
type AnalysisHandler struct {
	logger   *slog.Logger
	store    *store.Store
	minio    *minioclient.Client
	analyzer *analyzer.Analyzer
}

func NewAnalysisHandler(logger *slog.Logger, s *store.Store, minio *minioclient.Client) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, store: s, minio: minio, analyzer: analyzer.New()}
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}
	if project.FileCount == 0 {
		writeAPIError(w, h.logger, apierr.ProjectEmpty())
		return
	}

	source, err := h.minio.LoadSourceSet(r.Context(), project.ID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	writeJSON(w, http.StatusOK, h.analyzer.Analyze(r.Context(), source))
}
