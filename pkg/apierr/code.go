package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Project errors.
const (
	CodeProjectNotFound     Code = "PROJECT_NOT_FOUND"
	CodeProjectCreateFailed Code = "PROJECT_CREATE_FAILED"
	CodeProjectUpdateFailed Code = "PROJECT_UPDATE_FAILED"
	CodeProjectDeleteFailed Code = "PROJECT_DELETE_FAILED"
	CodeProjectListFailed   Code = "PROJECT_LIST_FAILED"
	CodeProjectCountFailed  Code = "PROJECT_COUNT_FAILED"
	CodeProjectEmpty        Code = "PROJECT_EMPTY"
)

// Generation run errors.
const (
	CodeRunNotFound      Code = "RUN_NOT_FOUND"
	CodeInvalidRunID     Code = "INVALID_RUN_ID"
	CodeRunCreateFailed  Code = "RUN_CREATE_FAILED"
	CodeRunListFailed    Code = "RUN_LIST_FAILED"
	CodeRunNotFinished   Code = "RUN_NOT_FINISHED"
	CodeInvalidFramework Code = "INVALID_FRAMEWORK"
	CodeQueueUnavailable Code = "QUEUE_UNAVAILABLE"
)

// Validation errors.
const (
	CodeSlugRequired Code = "SLUG_REQUIRED"
	CodeSlugInvalid  Code = "SLUG_INVALID"
	CodeNameRequired Code = "NAME_REQUIRED"
	CodeNameTooLong  Code = "NAME_TOO_LONG"
)

// Upload and import errors.
const (
	CodeFileRequired      Code = "FILE_REQUIRED"
	CodeUploadFailed      Code = "UPLOAD_FAILED"
	CodeNoSourceFiles     Code = "NO_SOURCE_FILES"
	CodeInvalidArchive    Code = "INVALID_ARCHIVE"
	CodeInvalidImportSpec Code = "INVALID_IMPORT_SPEC"
	CodeImportFailed      Code = "IMPORT_FAILED"
)

// Download errors.
const (
	CodeNoArtifacts    Code = "NO_ARTIFACTS"
	CodeDownloadFailed Code = "DOWNLOAD_FAILED"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)

// Auth errors.
const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
)
