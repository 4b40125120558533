package errs

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrStorage        = errors.New("storage error")
	ErrDatabase       = errors.New("database error")
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrUnsupported    = errors.New("unsupported media type")
	ErrConsumerClosed = errors.New("consumer closed")
)

// Code is the machine readable error code carried by every error response.
type Code string

const (
	InvalidRequest     Code = "INVALID_REQUEST"
	MissingParameter   Code = "MISSING_PARAMETER"
	InvalidParameter   Code = "INVALID_PARAMETER"
	NoFileUploaded     Code = "NO_FILE_UPLOADED"
	InvalidImage       Code = "INVALID_IMAGE"
	CorruptedImage     Code = "CORRUPTED_IMAGE"
	FileTooLarge       Code = "FILE_TOO_LARGE"
	InvalidField       Code = "INVALID_FIELD"
	ImageNotFound      Code = "IMAGE_NOT_FOUND"
	MethodNotAllowed   Code = "METHOD_NOT_ALLOWED"
	StorageError       Code = "STORAGE_ERROR"
	DatabaseError      Code = "DATABASE_ERROR"
	InternalError      Code = "INTERNAL_ERROR"
	ServiceUnavailable Code = "SERVICE_UNAVAILABLE"
)

// ValidationError is returned by the ingest pipeline when the payload is rejected
// before anything is written.
type ValidationError struct {
	Code   Code
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func NewValidationError(code Code, reason string) *ValidationError {
	return &ValidationError{Code: code, Reason: reason}
}
