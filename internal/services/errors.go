// Package services defines the business logic for accounts, the game
// catalog, server-side sessions, and chat history. This file centralizes
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Account errors.
var (
	// ErrMissingFields is returned when username, email, or password is blank.
	ErrMissingFields = errors.New("all fields are required")

	// ErrInvalidEmail is returned when the email is not well-formed.
	ErrInvalidEmail = errors.New("email is invalid")

	// ErrUsernameTooLong is returned when the username exceeds MaxUsernameLen runes.
	ErrUsernameTooLong = errors.New("username too long")

	// ErrPasswordTooShort is returned when the password is under the minimum.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrPasswordTooLong is returned when the password exceeds the bcrypt input limit.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrAccountExists is returned when the username or email is already
	// registered. No account is created.
	ErrAccountExists = errors.New("user already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountNotFound is returned by Me when the token's subject is gone.
	ErrAccountNotFound = errors.New("account not found")
)

// Catalog errors.
var (
	// ErrTitleRequired is returned when a catalog entry has a blank title.
	ErrTitleRequired = errors.New("title is required")

	// ErrGameNotFound indicates the requested game does not exist.
	ErrGameNotFound = errors.New("game not found")
)

// Session errors.
var (
	// ErrSessionFieldsRequired is returned when userId or username is blank.
	ErrSessionFieldsRequired = errors.New("userId and username are required")

	// ErrNoSession is returned when no live session matches the cookie.
	ErrNoSession = errors.New("no active session")
)
