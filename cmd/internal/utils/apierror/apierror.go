package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"visuall/cmd/internal/forms"
)

// ErrorResponse is what services hand back to routes; it is rendered as JSON
// with its own status code.
type ErrorResponse interface {
	error
	Code() int
}

type apiError struct {
	Status  int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *apiError) Error() string {
	return e.Message
}

func (e *apiError) Code() int {
	return e.Status
}

var (
	InternalServerError   ErrorResponse = NewSimple(http.StatusInternalServerError, "Internal server error")
	NotFoundError         ErrorResponse = NewSimple(http.StatusNotFound, "Resource not found")
	MalformedBodyError    ErrorResponse = NewSimple(http.StatusBadRequest, "Malformed request body")
	InvalidAuthTokenError ErrorResponse = NewSimple(http.StatusUnauthorized, "Invalid or missing authentication token")
	ForbiddenError        ErrorResponse = NewSimple(http.StatusForbidden, "You cannot access this resource")
	PersistenceError      ErrorResponse = NewSimple(http.StatusInternalServerError, "Your changes could not be saved, please try again")

	UserAlreadyExistsError      ErrorResponse = NewSimple(http.StatusConflict, "This email is already registered")
	UserAlreadyConfirmedError   ErrorResponse = NewSimple(http.StatusConflict, "This account is already confirmed")
	IDPUserNotFoundError        ErrorResponse = NewSimple(http.StatusNotFound, "User not found")
	IDPUserNotConfirmedError    ErrorResponse = NewSimple(http.StatusForbidden, "Account not confirmed yet")
	IDPCredentialsMismatchError ErrorResponse = NewSimple(http.StatusUnauthorized, "Email or password is incorrect")
	IDPInvalidPasswordError     ErrorResponse = NewSimple(http.StatusBadRequest, "Password does not meet the requirements")
	IDPExistingEmailError       ErrorResponse = NewSimple(http.StatusConflict, "This email is already registered")
	IDPConfirmCodeMismatchError ErrorResponse = NewSimple(http.StatusBadRequest, "Confirmation code does not match")
	IDPConfirmCodeExpiredError  ErrorResponse = NewSimple(http.StatusBadRequest, "Confirmation code has expired")
)

func NewSimple(code int, message string) ErrorResponse {
	return &apiError{Status: code, Message: message}
}

func NewMissingParamError(name string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter '%s'", name))
}

func NewInvalidParamTypeError(name, expected string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Parameter '%s' must be of type %s", name, expected))
}

// FromFieldErrors renders a field-keyed set of messages, all at once.
func FromFieldErrors(fields map[string]string) ErrorResponse {
	return &apiError{
		Status:  http.StatusBadRequest,
		Message: "Some fields are invalid",
		Fields:  fields,
	}
}

func FromValidationError(err error) ErrorResponse {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		return FromFieldErrors(verr.Fields)
	}
	return MalformedBodyError
}
