package review

import "errors"

// ErrNotEditing is returned when a submit is attempted outside the editing
// state, e.g. after the session has already been submitted.
var ErrNotEditing = errors.New("review: session is not editing")
