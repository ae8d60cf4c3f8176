package auth

import "errors"

// Login failures stay distinct internally for logging; the handler collapses
// them into one generic response so callers cannot probe which accounts exist.
var (
	ErrValidation         = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already exists")

	ErrRefreshInvalid      = errors.New("refresh token invalid or expired")
	ErrRefreshUserNotFound = errors.New("refresh token user not found")
	ErrRefreshReused       = errors.New("refresh token revoked or already used")
)
