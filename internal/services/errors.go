package services

import "errors"

// Service-level sentinel errors. Transport handlers map these onto the
// typed API errors of internal/errors.
var (
	// Artifact errors
	ErrArtifactNotFound = errors.New("artifact not found or expired")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
