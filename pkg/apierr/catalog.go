package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Project ---

func ProjectNotFound() *Error {
	return New(CodeProjectNotFound, http.StatusNotFound, "Project not found")
}

func ProjectCreateFailed(cause error) *Error {
	return Wrap(CodeProjectCreateFailed, http.StatusInternalServerError, "Failed to create project", cause)
}

func ProjectUpdateFailed(cause error) *Error {
	return Wrap(CodeProjectUpdateFailed, http.StatusInternalServerError, "Failed to update project", cause)
}

func ProjectDeleteFailed(cause error) *Error {
	return Wrap(CodeProjectDeleteFailed, http.StatusInternalServerError, "Failed to delete project", cause)
}

func ProjectListFailed(cause error) *Error {
	return Wrap(CodeProjectListFailed, http.StatusInternalServerError, "Failed to list projects", cause)
}

func ProjectCountFailed(cause error) *Error {
	return Wrap(CodeProjectCountFailed, http.StatusInternalServerError, "Failed to count projects", cause)
}

func ProjectEmpty() *Error {
	return New(CodeProjectEmpty, http.StatusBadRequest, "Project has no uploaded source files")
}

// --- Generation runs ---

func RunNotFound() *Error {
	return New(CodeRunNotFound, http.StatusNotFound, "Generation run not found")
}

func InvalidRunID() *Error {
	return New(CodeInvalidRunID, http.StatusBadRequest, "Invalid run ID")
}

func RunCreateFailed(cause error) *Error {
	return Wrap(CodeRunCreateFailed, http.StatusInternalServerError, "Failed to create generation run", cause)
}

func RunListFailed(cause error) *Error {
	return Wrap(CodeRunListFailed, http.StatusInternalServerError, "Failed to list generation runs", cause)
}

func RunNotFinished() *Error {
	return New(CodeRunNotFinished, http.StatusConflict, "Generation run has not finished yet")
}

func InvalidFramework() *Error {
	return New(CodeInvalidFramework, http.StatusBadRequest, "framework must be one of: googletest, catch2, doctest")
}

func QueueUnavailable() *Error {
	return New(CodeQueueUnavailable, http.StatusServiceUnavailable, "Job queue is not available")
}

// --- Validation ---

func SlugRequired() *Error {
	return New(CodeSlugRequired, http.StatusBadRequest, "Slug is required")
}

func SlugInvalid() *Error {
	return New(CodeSlugInvalid, http.StatusBadRequest, "Slug must be 3-63 chars, lowercase alphanumeric and hyphens, must start/end with alphanumeric")
}

func NameRequired() *Error {
	return New(CodeNameRequired, http.StatusBadRequest, "Name is required")
}

func NameTooLong() *Error {
	return New(CodeNameTooLong, http.StatusBadRequest, "Name must be 255 characters or fewer")
}

// --- Upload & import ---

func FileRequired() *Error {
	return New(CodeFileRequired, http.StatusBadRequest, "At least one file is required (multipart field 'files' or 'file')")
}

func UploadFailed(cause error) *Error {
	return Wrap(CodeUploadFailed, http.StatusInternalServerError, "Failed to upload file", cause)
}

func NoSourceFiles() *Error {
	return New(CodeNoSourceFiles, http.StatusBadRequest, "No C++ source files found in upload")
}

func InvalidArchive(cause error) *Error {
	return Wrap(CodeInvalidArchive, http.StatusBadRequest, "Archive could not be read", cause)
}

func InvalidImportSpec() *Error {
	return New(CodeInvalidImportSpec, http.StatusBadRequest, "Import requires a git URL or an s3 prefix")
}

func ImportFailed(cause error) *Error {
	return Wrap(CodeImportFailed, http.StatusInternalServerError, "Failed to import project sources", cause)
}

// --- Download ---

func NoArtifacts() *Error {
	return New(CodeNoArtifacts, http.StatusNotFound, "Run produced no test artifacts")
}

func DownloadFailed(cause error) *Error {
	return Wrap(CodeDownloadFailed, http.StatusInternalServerError, "Failed to download artifacts", cause)
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}

// --- Auth ---

func Unauthorized() *Error {
	return New(CodeUnauthorized, http.StatusUnauthorized, "Authentication required")
}

func Forbidden() *Error {
	return New(CodeForbidden, http.StatusForbidden, "Insufficient scope")
}
