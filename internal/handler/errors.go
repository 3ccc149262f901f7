package handler

import (
	"errors"
	"net/http"

	"casedocs/internal/domain"
	"casedocs/internal/httputil"
)

// respondDomainError maps a domain error to its HTTP equivalent. A
// duplicate name additionally carries the offending filename so the
// caller can report it.
func respondDomainError(w http.ResponseWriter, err error) {
	var dup *domain.DuplicateNameError
	if errors.As(err, &dup) {
		httputil.RespondErrorWithExtras(w, http.StatusConflict, dup.Error(), map[string]interface{}{
			"fileName": dup.FileName,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
