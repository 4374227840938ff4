package models

import "errors"

// Errors that corrupt tournament state when ignored. Callers wrap them with
// fmt.Errorf("%w: ...") and check with errors.Is.
var (
	ErrInvalidConfiguration = errors.New("invalid tournament configuration")
	ErrSchedulingFailed     = errors.New("tournament scheduling failed")
	ErrInvalidMatchResult   = errors.New("invalid match result")
	ErrMissingDependency    = errors.New("missing catalog dependency")
)
