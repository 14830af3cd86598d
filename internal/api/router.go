package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/testforge-labs/testforge/internal/api/handler"
	apimw "github.com/testforge-labs/testforge/internal/api/middleware"
	"github.com/testforge-labs/testforge/internal/auth"
	"github.com/testforge-labs/testforge/internal/ingest"
	"github.com/testforge-labs/testforge/internal/jobqueue"
	"github.com/testforge-labs/testforge/internal/store"
	minioclient "github.com/testforge-labs/testforge/internal/store/minio"
)

// RouterDeps holds optional dependencies for the router. Nil members
// disable the routes that need them.
type RouterDeps struct {
	MinIO    *minioclient.Client
	Producer *jobqueue.Producer
	S3       *ingest.S3Importer
	Verifier *auth.Verifier
}

func NewRouter(logger *slog.Logger, s *store.Store, deps *RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	// Health checks
	health := apihandler.NewHealthHandler(s.Pool())
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if deps == nil {
		deps = &RouterDeps{}
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if deps.Verifier != nil {
			r.Use(auth.RequireAuth(deps.Verifier, logger))
		} else {
			r.Use(auth.DevModeMiddleware(logger))
		}

		environment := apihandler.NewEnvironmentHandler()
		r.Get("/environment", environment.Get)

		projects := apihandler.NewProjectHandler(logger, s)
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.List)
			r.With(auth.RequireScope("testforge:write")).Post("/", projects.Create)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", projects.Get)
				r.With(auth.RequireScope("testforge:write")).Put("/", projects.Update)
				r.With(auth.RequireScope("testforge:write")).Delete("/", projects.Delete)

				var download *apihandler.DownloadHandler
				if deps.MinIO != nil {
					download = apihandler.NewDownloadHandler(logger, s, deps.MinIO)
				}

				runs := apihandler.NewGenRunHandler(logger, s, deps.Producer)
				r.Route("/runs", func(r chi.Router) {
					r.Get("/", runs.List)
					r.With(auth.RequireScope("testforge:generate")).Post("/", runs.Trigger)
					r.Get("/{runID}", runs.Get)
					if download != nil {
						r.Get("/{runID}/artifacts", download.ByRun)
					}
				})

				// Source ingestion and artifact download (require MinIO)
				if deps.MinIO != nil {
					upload := apihandler.NewUploadHandler(logger, s, deps.MinIO)
					r.With(auth.RequireScope("testforge:write")).Post("/upload", upload.Upload)

					importer := apihandler.NewImportHandler(logger, s, deps.MinIO, deps.S3)
					r.With(auth.RequireScope("testforge:write")).Post("/import", importer.Import)

					analysis := apihandler.NewAnalysisHandler(logger, s, deps.MinIO)
					r.Get("/analysis", analysis.Get)

					r.Get("/artifacts", download.Latest)
				}
			})
		})
	})

	return r
}
