package users

import "errors"

var (
	// ErrUserNotFound - no user document matched.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicate is returned when the email is already registered.
	ErrDuplicate = errors.New("email is already registered")

	// ErrInvalidCredentials is returned when login email or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidValue is returned when an allowed field carries an unusable value.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidOperation is returned when an update names a field outside the allow-list.
	ErrInvalidOperation = errors.New("ERROR: Invalid Operation")

	// ErrInvalidUserID is returned when an id is not a valid ObjectID.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidToken is returned when a bearer token cannot be verified.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrTokenNotFound is returned when a verified token is no longer in its user's list.
	ErrTokenNotFound = errors.New("session token not found")

	// ErrGenToken is returned when a session token cannot be signed.
	ErrGenToken = errors.New("failed to generate session token")

	// ErrHashPassword is returned when bcrypt fails.
	ErrHashPassword = errors.New("failed to process password")
)
