package utils

import (
	"net/http"
)

// HTTPError carries the status code and message of a failed request.
// Detail, when set, replaces the message as the response body.
type HTTPError struct {
	Code    int         `json:"-"`
	Message string      `json:"message"`
	Detail  interface{} `json:"-"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(code int, message string) error {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// NewHTTPErrorWithDetail builds an error whose body is detail.
func NewHTTPErrorWithDetail(code int, message string, detail interface{}) error {
	return &HTTPError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

func BadRequest(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

func Unauthorized(message string) error {
	return NewHTTPError(http.StatusUnauthorized, message)
}

func NotFound(message string) error {
	return NewHTTPError(http.StatusNotFound, message)
}

func InternalServerError(message string) error {
	return NewHTTPError(http.StatusInternalServerError, message)
}

// Body returns what should be written for e.
func (e *HTTPError) Body() interface{} {
	if e.Detail != nil {
		return e.Detail
	}
	return map[string]string{"detail": e.Message}
}
