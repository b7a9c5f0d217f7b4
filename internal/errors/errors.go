package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independent of transport.
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindValidation   Kind = "VALIDATION"
	KindInternal     Kind = "INTERNAL"
)

// Error is a typed domain failure. Two errors are equal under errors.Is when
// their codes match, so sentinels still work for errors built with a custom message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// New creates a domain error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e that carries cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

var (
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = New(KindUnauthorized, "INVALID_CREDENTIALS", "incorrect username or password")
	// ErrUnauthorized is returned when the bearer credential is missing, invalid or revoked.
	ErrUnauthorized = New(KindUnauthorized, "UNAUTHORIZED", "could not validate credentials")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = New(KindUnauthorized, "INVALID_REFRESH_TOKEN", "invalid or expired refresh token")

	ErrForbidden     = New(KindForbidden, "FORBIDDEN", "not authorized to access this record")
	ErrAdminRequired = New(KindForbidden, "ADMIN_REQUIRED", "only administrators can review mutations")

	ErrUserNotFound       = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrNewOwnerNotFound   = New(KindNotFound, "NEW_OWNER_NOT_FOUND", "new owner not found")
	ErrLandRecordNotFound = New(KindNotFound, "LAND_RECORD_NOT_FOUND", "land record not found")
	ErrMutationNotFound   = New(KindNotFound, "MUTATION_NOT_FOUND", "mutation record not found")
	ErrDocumentNotFound   = New(KindNotFound, "DOCUMENT_NOT_FOUND", "document not found")

	ErrUsernameTaken      = New(KindConflict, "USERNAME_TAKEN", "username already registered")
	ErrEmailTaken         = New(KindConflict, "EMAIL_TAKEN", "email already registered")
	ErrAadhaarTaken       = New(KindConflict, "AADHAAR_TAKEN", "aadhaar number already registered")
	ErrSurveyNumberTaken  = New(KindConflict, "SURVEY_NUMBER_TAKEN", "survey number already registered")
	ErrTransactionIDTaken = New(KindConflict, "TRANSACTION_ID_TAKEN", "transaction id already in use")
	ErrMutationNotPending = New(KindConflict, "MUTATION_NOT_PENDING", "mutation is not pending")
	// ErrOwnershipChanged means the parcel moved to someone else after the mutation was filed.
	ErrOwnershipChanged = New(KindConflict, "OWNERSHIP_CHANGED", "land record owner changed since the mutation was created")

	ErrInvalidInput = New(KindValidation, "INVALID_INPUT", "invalid input")
	ErrSelfTransfer = New(KindValidation, "SELF_TRANSFER", "new owner already owns this land record")
)

// NewMutationNotPending reports the terminal status that blocked a transition.
func NewMutationNotPending(status string) *Error {
	return ErrMutationNotPending.WithMessage("mutation is already %s", status)
}

// KindOf returns the Kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is and As re-export the standard helpers since this package shadows the stdlib name.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var statusByKind = map[Kind]int{
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindValidation:   http.StatusBadRequest,
}

// MapErrorToHTTP maps domain errors to HTTP errors. Untyped errors never leak their text.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if stderrors.As(err, &e) {
		if status, ok := statusByKind[e.Kind]; ok {
			return NewHTTPError(status, e.Message, e.Code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
