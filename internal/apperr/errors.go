// Package apperr defines the sentinel errors shared across briefly's layers.
//
// ErrBusy is returned when a brief already has a regeneration in flight.
// ErrDiscarded marks a completion that arrived after its draft was torn down.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSectionNotFound = errors.New("section not found")
	ErrBusy            = errors.New("regeneration already in progress")
	ErrGeneration      = errors.New("generation failed")
	ErrDiscarded       = errors.New("result discarded")
	ErrPaymentRequired = errors.New("paid plan required")
	ErrUnauthorized    = errors.New("unauthorized")
)
