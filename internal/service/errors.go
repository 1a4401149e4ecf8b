package service

import "errors"

var (
	ErrInvalidDataProvided   = errors.New("invalid data provided")
	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrSecretNotFound = errors.New("secret not found or already read")
	ErrUserNotFound   = errors.New("user not found")

	ErrValidationNoSecretID = errors.New("no secret ID was given")
	ErrValidationNoUserID   = errors.New("no user ID was given")
	ErrValidationNoEmail    = errors.New("no user email was given")
)
