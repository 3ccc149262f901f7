package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a folder, document or version was not found.
	// An entity owned by a different case is reported identically, so callers
	// cannot probe for resources they do not own.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// PersistenceError indicates a repository or blob-storage call failed
	PersistenceError struct {
		Message string
	}

	// ConfigurationError indicates required reference data is missing,
	// e.g. an empty redaction-status catalogue
	ConfigurationError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string      { return e.Message }
func (e *ValidationError) Error() string    { return e.Message }
func (e *PersistenceError) Error() string   { return e.Message }
func (e *ConfigurationError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int    { return http.StatusBadRequest }
func (e *PersistenceError) StatusCode() int   { return http.StatusInternalServerError }
func (e *ConfigurationError) StatusCode() int { return http.StatusInternalServerError }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateName = errors.New("duplicate name")
	ErrPersistence   = errors.New("persistence failure")
	ErrConfiguration = errors.New("configuration fault")
)

// Is implementations so typed errors match their sentinels
func (e *NotFoundError) Is(target error) bool      { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool    { return target == ErrValidation }
func (e *PersistenceError) Is(target error) bool   { return target == ErrPersistence }
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DuplicateNameError represents a display-name collision within a folder.
// The offending filename is carried so callers can report it verbatim.
type DuplicateNameError struct {
	FileName string
	FolderID int64
}

// Error implements the error interface
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a document named '%s' already exists in this folder", e.FileName)
}

// StatusCode implements the HTTPError interface
func (e *DuplicateNameError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrDuplicateName
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}
