// Package errors holds the sentinels shared by the participant, its
// collaborators and the HTTP API, which maps them onto status codes.
package errors

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrEmptyKey    = errors.New("empty key")
	ErrInvalidData = errors.New("invalid data type")

	// ErrUnavailable is returned while a coordinator has nothing to answer
	// with yet.
	ErrUnavailable = errors.New("service unavailable")

	// ErrModelMismatch marks a model whose length or data type disagrees with
	// what the coordinator expects for the round.
	ErrModelMismatch = errors.New("local model does not match coordinator expectations")

	// ErrStopped is returned by operations on a stopped participant.
	ErrStopped = errors.New("participant is stopped")
)
