package domain

import "errors"

var (
	// ErrAuthentication is returned when credentials are rejected or a token
	// cannot be decoded; no session is established.
	ErrAuthentication = errors.New("authentication failed")
	// ErrValidation is returned for rejected input (empty content,
	// out-of-range mark, malformed answers); the operation has no effect.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced lesson, task or submission is absent.
	ErrNotFound = errors.New("not found")
	// ErrTransport covers network and malformed-response failures; safe to
	// retry by explicit user action.
	ErrTransport = errors.New("transport failure")
	// ErrInvalidLessonState is returned when a quiz with no questions would
	// otherwise be scored.
	ErrInvalidLessonState = errors.New("lesson has no quiz questions")
)
