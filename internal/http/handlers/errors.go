// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them. Every
// error response carries one of these codes plus an HTTP status and a
// human-readable message (see fail in response.go).
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "User already exists."
//	}
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeCreateFailed       = "create_failed"
	ErrCodeListFailed         = "list_failed"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)

// User-facing messages shared by several handlers.
const (
	msgInvalidJSON        = "Invalid JSON body."
	msgFieldsRequired     = "All fields are required."
	msgInvalidEmail       = "Email is invalid."
	msgPasswordTooShort   = "Password must be at least 5 characters."
	msgPasswordTooLong    = "Password must be at most 72 bytes."
	msgUsernameTooLong    = "Username must be at most 64 characters."
	msgUserExists         = "User already exists."
	msgInvalidCredentials = "Invalid credentials."
	msgTitleRequired      = "Title is required."
	msgNoSession          = "No active session."
	msgInternal           = "Internal server error."
)
