package api

import (
	"errors"
	"net/http"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var query *domain.QueryError
	var emptyResult *domain.EmptyResultError
	var unsupported *domain.UnsupportedFormatError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &query),
		errors.As(err, &emptyResult),
		errors.As(err, &unsupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
