// Package blob provides object storage backends for raw dataset payloads.
package blob

import "errors"

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error satisfying `errors.Is(err, ErrNotFound)`.
var ErrNotFound = errors.New("blob not found")
