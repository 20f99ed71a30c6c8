package service

import "errors"

var (
	// ErrSessionNotFound is returned when the session id is unknown.
	ErrSessionNotFound = errors.New("story session not found")
	// ErrInvalidChoice is returned when the choice index is out of range
	// for the current segment's choice list.
	ErrInvalidChoice = errors.New("invalid choice index")
)
