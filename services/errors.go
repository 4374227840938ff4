package services

import "errors"

// Service level errors used for HTTP mapping. Engine errors live in
// models/errors.go.
var (
	ErrNoActiveTournament = errors.New("no active tournament")
	ErrSettingsNotFound   = errors.New("tournament settings not found")
	ErrInvalidCredentials = errors.New("invalid executor credentials")
)
