package slide

import "errors"

// Failures visible to callers of the core. Every operation wraps one of them
// so callers could classify results with errors.Is.
var (
	ErrGenerationFailed = errors.New("presentation generation failed")
	ErrImageRead        = errors.New("unable to read image")
	ErrEmission         = errors.New("unable to write presentation document")
	ErrNotFound         = errors.New("slide not found")
	ErrInvalidRecord    = errors.New("invalid slide record")
)
