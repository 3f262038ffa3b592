package handler

import (
	"net/http"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// httpError maps domain errors to status codes. Unexpected errors are
// logged and reported without their text.
func (h *Handler) httpError(err error) *echo.HTTPError {
	var code int
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrInvalidState):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrInvalidArgument):
		code = http.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		code = http.StatusForbidden
	default:
		h.log.Error("internal error", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	return echo.NewHTTPError(code, err.Error())
}

// bind decodes and validates the request body into v.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
