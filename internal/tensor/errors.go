package tensor

import "errors"

// Common errors.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidRank     = errors.New("invalid rank")
	ErrReleased        = errors.New("tensor storage released")
)
