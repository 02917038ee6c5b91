package util

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/RankoXXX/exidvpn-server/internal/api/httperrors"
)

// Validatable is implemented by request payloads that carry their own
// field-level validation.
type Validatable interface {
	Validate() error
}

// BindAndValidateBody binds the JSON request body into v and runs its
// validation, translating both failure modes into a 400 HTTPError.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	if err := c.Bind(v); err != nil {
		return httperrors.NewHTTPError(http.StatusBadRequest, httperrors.HTTPErrorTypeGeneric, "malformed request body")
	}

	if err := v.Validate(); err != nil {
		return httperrors.NewHTTPValidationError(err.Error())
	}

	return nil
}

// ValidateAndReturn validates the response payload before writing it, so a
// handler bug surfaces as a 500 instead of a malformed success body.
func ValidateAndReturn(c echo.Context, code int, v Validatable) error {
	if err := v.Validate(); err != nil {
		return err
	}

	return c.JSON(code, v)
}
