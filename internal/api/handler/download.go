package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/testforge-labs/testforge/internal/store"
	minioclient "github.com/testforge-labs/testforge/internal/store/minio"
	"github.com/testforge-labs/testforge/pkg/apierr"
)

// DownloadHandler streams the packaged test artifacts of a finished run.
type DownloadHandler struct {
	logger *slog.Logger
	store  *store.Store
	minio  *minioclient.Client
}

func NewDownloadHandler(logger *slog.Logger, s *store.Store, minio *minioclient.Client) *DownloadHandler {
	return &DownloadHandler{logger: logger, store: s, minio: minio}
}

// Latest serves the tests.zip of the most recent successful run.
func (h *DownloadHandler) Latest(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}

	run, err := h.store.LatestSucceededRun(r.Context(), project.ID)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.NoArtifacts())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	h.stream(w, r, run.ID)
}

// ByRun serves the tests.zip of a specific run.
func (h *DownloadHandler) ByRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRunID())
		return
	}

	run, ok := getRunOr404(w, r, h.logger, h.store, runID)
	if !ok {
		return
	}
	if run.Status != "succeeded" && run.Status != "failed" {
		writeAPIError(w, h.logger, apierr.RunNotFinished())
		return
	}

	h.stream(w, r, run.ID)
}

func (h *DownloadHandler) stream(w http.ResponseWriter, r *http.Request, runID uuid.UUID) {
	obj, err := h.minio.DownloadFile(r.Context(), minioclient.ArtifactObject(runID))
	if err != nil {
		writeAPIError(w, h.logger, apierr.DownloadFailed(err))
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="tests.zip"`)
	if _, err := io.Copy(w, obj); err != nil {
		// Headers are already out; log and move on.
		h.logger.Warn("stream artifacts", slog.String("error", err.Error()),
			slog.String("run_id", runID.String()))
	}
}
