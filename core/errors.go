package core

import "errors"

// ErrInvalidArgument is returned when a generator or mesh builder is called
// with values it cannot honor (non-positive counts, sizes or spreads).
var ErrInvalidArgument = errors.New("core: invalid argument")
