package usecase

import (
	"errors"

	"github.com/riskibarqy/pronostic-tracker/external/sportmonks"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrCredentialMissing aborts a whole run: nothing can be fetched.
	ErrCredentialMissing    = sportmonks.ErrMissingCredentials
	ErrMalformedPayload     = errors.New("malformed provider payload")
	ErrUnparseableTimestamp = errors.New("unparseable fixture timestamp")
)
