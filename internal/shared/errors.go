package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDataUnavailable indicates an underlying ledger read failed; the
	// whole report render is aborted rather than serving a partial sheet.
	ErrDataUnavailable = errors.New("ledger data unavailable")
	// ErrInvalidStatusTransition indicates a record status change not
	// allowed by its lifecycle.
	ErrInvalidStatusTransition = errors.New("status transition invalid")
	// ErrForbidden indicates the caller lacks a required capability.
	ErrForbidden = errors.New("forbidden")
)
