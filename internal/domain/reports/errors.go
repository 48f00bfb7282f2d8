package reports

import "errors"

var (
	// ErrNotFound indicates the requested file, report or artifact does
	// not exist for the tenant.
	ErrNotFound = errors.New("reports: not found")

	// ErrInvalidInput indicates a request that fails validation before the
	// pipeline runs (disallowed extension, bad report type, empty upload).
	ErrInvalidInput = errors.New("reports: invalid input")
)
