package keypager

import "errors"

// Sentinel errors returned (wrapped) by Build, the column constructors and the pager.
// Use errors.Is to match them.
var (
	ErrCursorArity      = errors.New("cursor request must have one or two levels")
	ErrInvalidDirection = errors.New("invalid ordering direction")
	ErrInvalidColumn    = errors.New("invalid cursor column")
	ErrRelationMismatch = errors.New("cursor columns belong to different relations")
	ErrTypeMismatch     = errors.New("cursor value type mismatch")
	ErrInvalidLimit     = errors.New("limit must be positive")
	ErrMissingGetter    = errors.New("missing getter for cursor column")
	ErrNullCursor       = errors.New("cursor value is null")
)
