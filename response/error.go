package response

import (
	"net/http"
)

const msgSomethingWentWrong = "Something went wrong"

// Error is the structured API error. Message is shown to clients, Errors lists
// per-field details when there are any.
type Error struct {
	StatusCode int
	Message    string
	Errors     []string
}

type errorBody struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) body() errorBody {
	errs := e.Errors
	if errs == nil {
		errs = []string{}
	}
	return errorBody{StatusCode: e.StatusCode, Data: nil, Message: e.Message, Success: false, Errors: errs}
}

func NewError(statusCode int, message string, errs ...string) *Error {
	if message == "" {
		message = msgSomethingWentWrong
	}
	return &Error{StatusCode: statusCode, Message: message, Errors: errs}
}

func BadRequest(message string, errs ...string) *Error {
	return NewError(http.StatusBadRequest, message, errs...)
}

func Unauthorized(message string) *Error {
	return NewError(http.StatusUnauthorized, message)
}

func Conflict(message string) *Error {
	return NewError(http.StatusConflict, message)
}

func Internal(message string) *Error {
	return NewError(http.StatusInternalServerError, message)
}
