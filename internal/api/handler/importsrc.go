package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/testforge-labs/testforge/internal/ingest"
	"github.com/testforge-labs/testforge/internal/store"
	minioclient "github.com/testforge-labs/testforge/internal/store/minio"
	"github.com/testforge-labs/testforge/internal/testgen"
	"github.com/testforge-labs/testforge/pkg/apierr"
)

// ImportHandler pulls project sources from external systems instead of a
// direct upload: a git repository or an S3 prefix.
type ImportHandler struct {
	logger *slog.Logger
	store  *store.Store
	minio  *minioclient.Client
	git    *ingest.GitImporter
	s3     *ingest.S3Importer // nil when S3 is not configured
}

func NewImportHandler(logger *slog.Logger, s *store.Store, minio *minioclient.Client, s3 *ingest.S3Importer) *ImportHandler {
	return &ImportHandler{
		logger: logger,
		store:  s,
		minio:  minio,
		git:    ingest.NewGitImporter(),
		s3:     s3,
	}
}

func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}

	var req struct {
		GitURL   string `json:"git_url"`
		S3Prefix string `json:"s3_prefix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	var (
		source testgen.SourceSet
		err    error
	)
	switch {
	case req.GitURL != "":
		source, err = h.git.Import(r.Context(), req.GitURL)
	case req.S3Prefix != "" && h.s3 != nil:
		source, err = h.s3.Import(r.Context(), req.S3Prefix)
	default:
		writeAPIError(w, h.logger, apierr.InvalidImportSpec())
		return
	}
	if err != nil {
		writeAPIError(w, h.logger, apierr.ImportFailed(err))
		return
	}

	if err := h.minio.SaveSourceSet(r.Context(), project.ID, source); err != nil {
		writeAPIError(w, h.logger, apierr.ImportFailed(err))
		return
	}

	lines := 0
	for _, content := range source {
		lines += strings.Count(content, "\n") + 1
	}
	if err := h.store.MarkProjectReady(r.Context(), project.ID, int32(len(source)), int32(lines)); err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"project":    project.Slug,
		"file_count": len(source),
		"line_count": lines,
		"files":      source.Files(),
	})
}
