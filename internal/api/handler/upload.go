package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/testforge-labs/testforge/internal/ingest"
	"github.com/testforge-labs/testforge/internal/store"
	minioclient "github.com/testforge-labs/testforge/internal/store/minio"
	"github.com/testforge-labs/testforge/internal/testgen"
	"github.com/testforge-labs/testforge/pkg/apierr"
)

type UploadHandler struct {
	logger *slog.Logger
	store  *store.Store
	minio  *minioclient.Client
}

func NewUploadHandler(logger *slog.Logger, s *store.Store, minio *minioclient.Client) *UploadHandler {
	return &UploadHandler{logger: logger, store: s, minio: minio}
}

// Upload accepts either individual C++ files (multipart field "files") or
// a single archive (field "file", .zip or .tar.gz). The extracted source
// set replaces whatever the project had stored before.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	// Max 100MB upload
	r.Body = http.MaxBytesReader(w, r.Body, 100*1024*1024)

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeAPIError(w, h.logger, apierr.FileRequired())
		return
	}

	source, apiErr := h.readSourceSet(r)
	if apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}

	if err := h.minio.SaveSourceSet(r.Context(), project.ID, source); err != nil {
		writeAPIError(w, h.logger, apierr.UploadFailed(err))
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

// readSourceSet builds the source set from whichever multipart shape the
// client used.
func (h *UploadHandler) readSourceSet(r *http.Request) (testgen.SourceSet, *apierr.Error) {
	if files := r.MultipartForm.File["files"]; len(files) > 0 {
		return readRawFiles(files)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, apierr.FileRequired()
	}
	defer file.Close()

	return readArchive(file, header)
}

func readRawFiles(files []*multipart.FileHeader) (testgen.SourceSet, *apierr.Error) {
	source := testgen.SourceSet{}
	for _, fh := range files {
		name := path.Base(fh.Filename)
		if !ingest.IsCppSource(name) {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apierr.UploadFailed(err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apierr.UploadFailed(err)
		}
		source[name] = string(content)
	}
	if len(source) == 0 {
		return nil, apierr.NoSourceFiles()
	}
	return source, nil
}

func readArchive(file multipart.File, header *multipart.FileHeader) (testgen.SourceSet, *apierr.Error) {
	name := strings.ToLower(header.Filename)
	switch {
	case strings.HasSuffix(name, ".zip"):
		source, err := ingest.ReadZip(readerAtFor(file, header.Size))
		if errors.Is(err, ingest.ErrNoSourceFiles) {
			return nil, apierr.NoSourceFiles()
		}
		if err != nil {
			return nil, apierr.InvalidArchive(err)
		}
		return source, nil
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		source, err := ingest.ReadTarGz(file)
		if errors.Is(err, ingest.ErrNoSourceFiles) {
			return nil, apierr.NoSourceFiles()
		}
		if err != nil {
			return nil, apierr.InvalidArchive(err)
		}
		return source, nil
	default:
		return nil, apierr.InvalidArchive(errors.New("unsupported archive type: " + header.Filename))
	}
}

// readerAtFor buffers the multipart file when the underlying part does not
// support random access, which archive/zip requires.
func readerAtFor(file multipart.File, size int64) (io.ReaderAt, int64) {
	if ra, ok := file.(io.ReaderAt); ok {
		return ra, size
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return bytes.NewReader(nil), 0
	}
	return bytes.NewReader(data), int64(len(data))
}
