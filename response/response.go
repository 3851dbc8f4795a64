// Package response renders the JSON envelope shared by every endpoint.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is the success envelope.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// New builds an envelope; Success is derived from the status code.
func New(statusCode int, data interface{}, message string) Response {
	return Response{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < http.StatusBadRequest,
	}
}

// JSON writes data wrapped in the envelope with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}, message string) error {
	return write(w, statusCode, New(statusCode, data, message))
}

// Fail writes err as an error envelope. Errors that are not *Error are rendered as
// a generic internal error so no internal detail reaches the client.
func Fail(w http.ResponseWriter, err error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(msgSomethingWentWrong)
	}
	return write(w, apiErr.StatusCode, apiErr.body())
}

func write(w http.ResponseWriter, statusCode int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(body)
}
