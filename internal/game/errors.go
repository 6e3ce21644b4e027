package game

import "errors"

var (
	// ErrGameNotFound means no game state exists for the requested ID.
	ErrGameNotFound = errors.New("game not found")

	// ErrCaseNotFound means the requested case ID is not in the catalog.
	ErrCaseNotFound = errors.New("case not found")

	// ErrGameSolved means the case is already resolved; no further turns
	// or accusations are accepted.
	ErrGameSolved = errors.New("game already solved")
)
