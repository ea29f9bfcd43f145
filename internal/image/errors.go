package image

import "errors"

// ErrEmptyInput is returned when the image buffer has zero length. It is the
// only unconditional parse failure: every other structural problem degrades
// to a best-effort or synthetic result.
var ErrEmptyInput = errors.New("image buffer is empty")
