package usecase

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrUsernameRequired   = errors.New("username is required")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPostNotFound       = errors.New("post not found")
	ErrNoFieldsToUpdate   = errors.New("no post fields to update")
	ErrForbidden          = errors.New("only the author can modify this post")
)
