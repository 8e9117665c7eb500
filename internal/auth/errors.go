package auth

import "errors"

var (
	// ErrAuthentication means identity could not be established.
	ErrAuthentication = errors.New("auth: authentication failed")
	// ErrAuthorization means identity is established but the action is
	// forbidden by account state.
	ErrAuthorization = errors.New("auth: forbidden")
	// ErrInvalidToken indicates a token failed signature, format or expiry
	// validation.
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrConflict     = errors.New("auth: conflict")
	ErrNotFound     = errors.New("auth: not found")
	ErrInvalidInput = errors.New("auth: invalid input")
)
