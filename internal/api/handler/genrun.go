package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/testforge-labs/testforge/internal/jobqueue"
	"github.com/testforge-labs/testforge/internal/store"
	"github.com/testforge-labs/testforge/internal/store/postgres"
	"github.com/testforge-labs/testforge/pkg/apierr"
)

// runEnqueuer is the slice of jobqueue.Producer the handler needs.
type runEnqueuer interface {
	Enqueue(ctx context.Context, msg jobqueue.GenerateMessage) (string, error)
}

// GenRunHandler manages generation runs: trigger, list, inspect.
type GenRunHandler struct {
	logger   *slog.Logger
	store    *store.Store
	producer runEnqueuer
}

func NewGenRunHandler(logger *slog.Logger, s *store.Store, producer *jobqueue.Producer) *GenRunHandler {
	h := &GenRunHandler{logger: logger, store: s}
	if producer != nil {
		h.producer = producer
	}
	return h
}

// Trigger creates a queued run and hands it to the worker pool.
func (h *GenRunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}
	if project.FileCount == 0 {
		writeAPIError(w, h.logger, apierr.ProjectEmpty())
		return
	}
	if h.producer == nil {
		writeAPIError(w, h.logger, apierr.QueueUnavailable())
		return
	}

	var req struct {
		Framework string `json:"framework"`
		Model     string `json:"model"`
	}
	// An empty body means defaults.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	fw, apiErr := parseFramework(req.Framework)
	if apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}

	run, err := h.store.CreateRun(r.Context(), postgres.CreateRunParams{
		ProjectID: project.ID,
		Framework: string(fw),
		Model:     req.Model,
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.RunCreateFailed(err))
		return
	}

	if err := h.enqueue(r.Context(), run, project); err != nil {
		// Mark the run failed so the status endpoint never shows a
		// queued run the worker will never see.
		h.logger.Error("enqueue generation", slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()))
		if ferr := h.store.FailRun(r.Context(), run.ID, fmt.Sprintf("enqueue: %v", err)); ferr != nil {
			h.logger.Error("record enqueue failure", slog.String("error", ferr.Error()),
				slog.String("run_id", run.ID.String()))
		}
		writeAPIError(w, h.logger, apierr.QueueUnavailable())
		return
	}

	writeJSON(w, http.StatusAccepted, runView(run))
}

func (h *GenRunHandler) enqueue(ctx context.Context, run postgres.GenerationRun, project postgres.Project) error {
	_, err := h.producer.Enqueue(ctx, jobqueue.GenerateMessage{
		RunID:       run.ID,
		ProjectID:   project.ID,
		ProjectSlug: project.Slug,
		Framework:   run.Framework,
		Model:       run.Model,
	})
	return err
}

func (h *GenRunHandler) List(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}

	limit, offset := listParams(r)
	runs, err := h.store.ListRunsByProject(r.Context(), project.ID, limit, offset)
	if err != nil {
		writeAPIError(w, h.logger, apierr.RunListFailed(err))
		return
	}

	views := make([]RunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": views})
}

func (h *GenRunHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRunID())
		return
	}

	run, ok := getRunOr404(w, r, h.logger, h.store, runID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, runView(run))
}

// RunView is the JSON shape returned for generation runs. Report is the
// raw pipeline report and is only present once the run has finished.
type RunView struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Framework   string          `json:"framework"`
	Model       string          `json:"model,omitempty"`
	Status      string          `json:"status"`
	Iterations  int32           `json:"iterations"`
	Coverage    *float64        `json:"coverage,omitempty"`
	Report      json.RawMessage `json:"report,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   string          `json:"created_at"`
	StartedAt   string          `json:"started_at,omitempty"`
	CompletedAt string          `json:"completed_at,omitempty"`
}

func runView(run postgres.GenerationRun) RunView {
	v := RunView{
		ID:         run.ID.String(),
		ProjectID:  run.ProjectID.String(),
		Framework:  run.Framework,
		Model:      run.Model,
		Status:     run.Status,
		Iterations: run.Iterations,
		Coverage:   run.Coverage,
		Report:     json.RawMessage(run.Report),
		Error:      run.Error,
		CreatedAt:  run.CreatedAt.UTC().Format(timeFormat),
	}
	if run.StartedAt != nil {
		v.StartedAt = run.StartedAt.UTC().Format(timeFormat)
	}
	if run.CompletedAt != nil {
		v.CompletedAt = run.CompletedAt.UTC().Format(timeFormat)
	}
	return v
}
