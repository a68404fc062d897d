package auth

import "errors"

// Authentication errors. UNAUTHENTICATED covers missing/invalid keys
// without confirming existence; PERMISSION_DENIED covers revoked keys,
// which confirms the key exists but is blocked.
var (
	ErrMissingKey       = errors.New("API key required in x-api-key metadata")
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrUnknownKey       = errors.New("unknown secret ID")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrKeyRevoked       = errors.New("API key has been revoked")
)
