package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("order already finalized")
	ErrValidation         = errors.New("invalid input")
	ErrUnknownAction      = errors.New("unrecognized command")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
