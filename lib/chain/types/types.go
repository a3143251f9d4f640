// Package types common node client types.
package types

import (
	"errors"
)

// Error codes.
var (
	ErrProcess = errors.New("node process exited with error")
	ErrParse   = errors.New("unexpected node response shape")
)
