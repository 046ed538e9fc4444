package domain

import "errors"

// ErrOpenerRequired is returned when a controller is constructed without a
// capability.
var ErrOpenerRequired = errors.New("opener is required")

// ErrBusy is returned by service surfaces when an open is requested while a
// previous attempt is still outstanding.
var ErrBusy = errors.New("open attempt already in flight")

// ErrNoOutcomes is returned by journals when no outcome has been recorded.
var ErrNoOutcomes = errors.New("no outcomes recorded")

// ErrInvalidResource is returned when a resource fails validation before a
// cycle is even armed (blank, unparsable, or overlong values).
var ErrInvalidResource = errors.New("invalid resource")
