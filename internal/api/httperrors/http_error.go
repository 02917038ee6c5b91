package httperrors

import (
	"fmt"
	"net/http"
)

const (
	HTTPErrorTypeGeneric    = "generic"
	HTTPErrorTypeValidation = "validation"
)

// HTTPError is the public error envelope rendered by the central echo error
// handler. Code is transported via the HTTP status line, not the body.
type HTTPError struct {
	Code  int    `json:"-"`
	Type  string `json:"type"`
	Title string `json:"error"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{
		Code:  code,
		Type:  errorType,
		Title: title,
	}
}

func NewHTTPValidationError(title string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, HTTPErrorTypeValidation, title)
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
}
