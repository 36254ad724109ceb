package auth

import "errors"

var (
	// ErrNotFound indicates a user lookup found nothing.
	ErrNotFound = errors.New("auth: not found")
	// ErrEmailTaken indicates a registration conflict on the email column.
	ErrEmailTaken = errors.New("auth: email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidInput indicates a malformed or incomplete request.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrTokenMalformed indicates the token string could not be parsed.
	ErrTokenMalformed = errors.New("auth: malformed token")
	// ErrTokenSignatureInvalid indicates the signature did not verify or an
	// unexpected signing method was presented.
	ErrTokenSignatureInvalid = errors.New("auth: token signature invalid")
)
