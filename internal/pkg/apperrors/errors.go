package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// User errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrPasswordMismatch      = errors.New("passwords do not match")
)

// Student errors
var (
	ErrStudentNotFound = errors.New("student profile not found")
)

// Course errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseAlreadyExists = errors.New("course with this name already exists")
)

// Enrollment errors
var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrEnrollmentLimit    = errors.New("enrollment limit reached")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
)

// File upload errors
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrFileDataMissing = errors.New("stored file is missing")
	ErrNotFileUploader = errors.New("only the uploader or staff can delete this file")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError wrapping err with a message
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}
