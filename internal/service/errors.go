// Package service implements the nutrition analysis, daily progress,
// goal resolution, and reminder scheduling pipeline. This file centralizes
// service-level error values so they can be consistently returned by service
// methods and translated into HTTP statuses at the handler layer.
package service

import "errors"

var (
	// ErrUnauthenticated is returned when an operation requiring a user
	// identity is invoked without one.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrMalformedResponse is returned when the language model reply does
	// not contain a valid JSON object or is missing required fields. No
	// retry is attempted and no side effect is performed.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrInvalidMealType is returned when a request names a meal type
	// outside breakfast/lunch/dinner/snack.
	ErrInvalidMealType = errors.New("invalid meal type")

	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists is returned when registering an already-taken email.
	ErrUserExists = errors.New("user already exists")

	// ErrLLMUnavailable is returned when no language model client is
	// configured for an operation that strictly requires one.
	ErrLLMUnavailable = errors.New("language model not configured")
)
