package domain

import "errors"

// Ownership checks collapse "exists but not yours" into the same not-found
// error as "does not exist" so the API never discloses other users' data.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	ErrEmailTaken      = errors.New("email already in use")
	ErrFolderNameTaken = errors.New("folder with this name already exists")
	ErrTagNameTaken    = errors.New("tag with this name already exists")

	ErrUserNotFound    = errors.New("user not found")
	ErrNoteNotFound    = errors.New("note not found")
	ErrVersionNotFound = errors.New("version not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrFolderNotFound  = errors.New("folder not found")
	ErrTagNotFound     = errors.New("tag not found")

	ErrNotImplemented = errors.New("password reset not fully implemented yet")
)
