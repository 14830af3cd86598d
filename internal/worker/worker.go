package worker

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/testforge-labs/testforge/internal/config"
	"github.com/testforge-labs/testforge/internal/coverage"
	"github.com/testforge-labs/testforge/internal/cppbuild"
	"github.com/testforge-labs/testforge/internal/jobqueue"
	"github.com/testforge-labs/testforge/internal/llm"
	"github.com/testforge-labs/testforge/internal/store"
	minioclient "github.com/testforge-labs/testforge/internal/store/minio"
	"github.com/testforge-labs/testforge/internal/store/postgres"
	"github.com/testforge-labs/testforge/internal/testgen"
)

// Worker consumes generation jobs and drives the pipeline for each one.
type Worker struct {
	store  *store.Store
	minio  *minioclient.Client
	llm    llm.Client
	cfg    *config.Config
	logger *slog.Logger
}

func New(s *store.Store, minio *minioclient.Client, client llm.Client, cfg *config.Config, logger *slog.Logger) *Worker {
	return &Worker{store: s, minio: minio, llm: client, cfg: cfg, logger: logger}
}

// Process handles one generation job end to end. Pipeline failures are
// recorded on the run and absorbed, so the message gets acknowledged;
// returning an error would only redeliver a job that will fail again.
func (w *Worker) Process(ctx context.Context, msg jobqueue.GenerateMessage) error {
	log := w.logger.With(
		slog.String("run_id", msg.RunID.String()),
		slog.String("project", msg.ProjectSlug))
	log.Info("processing generation run")

	if err := w.store.MarkRunRunning(ctx, msg.RunID); err != nil {
		return fmt.Errorf("mark run running: %w", err)
	}

	fw, err := testgen.ParseFramework(msg.Framework)
	if err != nil {
		return w.fail(ctx, msg, log, fmt.Errorf("invalid framework %q", msg.Framework))
	}

	source, err := w.minio.LoadSourceSet(ctx, msg.ProjectID)
	if err != nil {
		return w.fail(ctx, msg, log, fmt.Errorf("load sources: %w", err))
	}
	if len(source) == 0 {
		return w.fail(ctx, msg, log, fmt.Errorf("project has no stored source files"))
	}

	client, err := w.clientFor(msg.Model)
	if err != nil {
		return w.fail(ctx, msg, log, fmt.Errorf("configure llm client: %w", err))
	}

	runner := &testgen.Runner{
		Oracle: testgen.NewOracle(client),
		Verifier: &cppbuild.Builder{
			Root:             w.cfg.Pipeline.WorkspaceRoot,
			ConfigureTimeout: w.cfg.Pipeline.ConfigureTimeout,
			BuildTimeout:     w.cfg.Pipeline.BuildTimeout,
			CXXStandard:      w.cfg.Pipeline.CXXStandard,
			Logger:           log,
		},
		Coverage: &coverage.Analyzer{
			TestRunTimeout: w.cfg.Pipeline.TestRunTimeout,
			Logger:         log,
		},
		MaxIterations: w.cfg.Pipeline.MaxIterations,
		Refine:        w.cfg.Pipeline.Refine,
		Logger:        log,
	}

	report, err := runner.Run(ctx, source, fw)
	if err != nil {
		return w.fail(ctx, msg, log, err)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return w.fail(ctx, msg, log, fmt.Errorf("encode report: %w", err))
	}

	if report.Status == testgen.StatusSucceeded && len(report.Tests) > 0 {
		if err := w.uploadArtifacts(ctx, msg, report.Tests); err != nil {
			// The run itself succeeded; record it but log the packaging loss.
			log.Error("upload artifacts", slog.String("error", err.Error()))
		}
	}

	var cov *float64
	if report.Coverage != nil {
		cov = &report.Coverage.Overall
	}

	if err := w.store.CompleteRun(ctx, postgres.CompleteRunParams{
		ID:         msg.RunID,
		Status:     string(report.Status),
		Iterations: int32(report.Iterations),
		Coverage:   cov,
		Report:     reportJSON,
	}); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}

	log.Info("generation run finished",
		slog.String("status", string(report.Status)),
		slog.Int("iterations", report.Iterations),
		slog.Int("tests", len(report.Tests)))
	return nil
}

// clientFor returns the shared client, or a run-scoped one when the job
// asks for a different model.
func (w *Worker) clientFor(model string) (llm.Client, error) {
	if model == "" || model == w.llm.Model() {
		return w.llm, nil
	}
	cfg := *w.cfg
	cfg.LLM.Model = model
	cfg.Bedrock.ModelID = model
	return llm.New(&cfg)
}

// fail records a pipeline abort on the run and absorbs the error.
func (w *Worker) fail(ctx context.Context, msg jobqueue.GenerateMessage, log *slog.Logger, cause error) error {
	log.Error("generation run failed", slog.String("error", cause.Error()))
	if err := w.store.FailRun(ctx, msg.RunID, cause.Error()); err != nil {
		return fmt.Errorf("record run failure: %w", err)
	}
	return nil
}

func (w *Worker) uploadArtifacts(ctx context.Context, msg jobqueue.GenerateMessage, tests []testgen.GeneratedTest) error {
	data, err := packageTests(tests)
	if err != nil {
		return fmt.Errorf("package tests: %w", err)
	}
	object := minioclient.ArtifactObject(msg.RunID)
	if err := w.minio.UploadFile(ctx, object, bytes.NewReader(data), int64(len(data))); err != nil {
		return err
	}
	return nil
}

// packageTests zips the generated test files for download.
func packageTests(tests []testgen.GeneratedTest) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, test := range tests {
		f, err := zw.Create(test.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write([]byte(test.Content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
