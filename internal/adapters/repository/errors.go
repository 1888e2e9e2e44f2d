package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateMatch = errors.New("match already exists for pair")
	ErrInvalidEntity  = errors.New("invalid entity")
	ErrNotParticipant = errors.New("actor is not part of the match")
	ErrMatchDecided   = errors.New("match already decided")
)
