package session

import "errors"

// Code is the closed set of failures the session layer reports.
type Code string

const (
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeTokenInvalid       Code = "TOKEN_INVALID"
	CodeSessionNotFound    Code = "SESSION_NOT_FOUND"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeUpdateFailed       Code = "UPDATE_FAILED"
	CodeInvalidPassword    Code = "INVALID_PASSWORD"
	CodeWeakPassword       Code = "WEAK_PASSWORD"
	CodeSamePassword       Code = "SAME_PASSWORD"
)

var messages = map[Code]string{
	CodeInvalidCredentials: "invalid email or password",
	CodeTokenExpired:       "session expired, please sign in again",
	CodeTokenInvalid:       "authentication failed",
	CodeSessionNotFound:    "no active session",
	CodeUserNotFound:       "user not found",
	CodeUpdateFailed:       "update failed",
	CodeInvalidPassword:    "current password is incorrect",
	CodeWeakPassword:       "password must be at least 4 characters",
	CodeSamePassword:       "new password must differ from the current one",
}

// AuthError carries a Code and a user-facing message. The underlying fault,
// if any, is kept for logging only and is not exposed through Unwrap.
type AuthError struct {
	Code    Code
	Message string
	cause   error
}

func (e *AuthError) Error() string {
	return e.Message
}

// Is matches any *AuthError with the same Code, so
// errors.Is(err, session.ErrTokenExpired) works for every instance.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidCredentials = newError(CodeInvalidCredentials, nil)
	ErrTokenExpired       = newError(CodeTokenExpired, nil)
	ErrTokenInvalid       = newError(CodeTokenInvalid, nil)
	ErrSessionNotFound    = newError(CodeSessionNotFound, nil)
	ErrUserNotFound       = newError(CodeUserNotFound, nil)
	ErrUpdateFailed       = newError(CodeUpdateFailed, nil)
	ErrInvalidPassword    = newError(CodeInvalidPassword, nil)
	ErrWeakPassword       = newError(CodeWeakPassword, nil)
	ErrSamePassword       = newError(CodeSamePassword, nil)
)

func newError(code Code, cause error) *AuthError {
	return &AuthError{Code: code, Message: messages[code], cause: cause}
}

// CodeOf extracts the Code of err, if it is an *AuthError.
func CodeOf(err error) (Code, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return "", false
}
