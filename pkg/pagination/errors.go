package pagination

import "errors"

var (
	// ErrSuperseded is passed to completions of a request whose result was
	// dropped because the manager was reset while it was running.
	ErrSuperseded = errors.New("pagination: request superseded by reset")

	// ErrUnresolvedPlaceholder is returned when a URL template still holds
	// a placeholder after substitution. No request is issued.
	ErrUnresolvedPlaceholder = errors.New("pagination: unresolved url placeholder")
)
