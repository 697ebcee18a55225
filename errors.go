package storedsafe

import (
	"errors"
)

var (
	// Precondition errors, raised before any network call
	ErrAPIKeyMissing = errors.New("apikey is not defined")
	ErrTokenMissing  = errors.New("token is not defined")

	// Configuration errors
	ErrConfigLoad           = errors.New("failed to load rc file")
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Response errors
	ErrMalformedLoginResponse = errors.New("malformed login response")
	ErrNoResponse             = errors.New("transport returned no response")
)

// IsPreconditionError returns true if the call was rejected locally because
// credential material was missing. No request reached the server.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrAPIKeyMissing) ||
		errors.Is(err, ErrTokenMissing)
}

// IsConfigurationError returns true if the error represents a configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfigLoad) ||
		errors.Is(err, ErrInvalidConfiguration)
}

// IsAuthError returns true if the error is tied to authentication state:
// a missing credential or a login response without a token.
func IsAuthError(err error) bool {
	return IsPreconditionError(err) ||
		errors.Is(err, ErrMalformedLoginResponse)
}

// ErrCredentialStoreUnavailable is returned by credential store providers
// when stored StoredSafe credentials cannot be read or written.
var ErrCredentialStoreUnavailable = errors.New("credential store unavailable")
