package handler

import (
	"net/http"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// @Summary Register an account
// @Description Creates an account with the user role.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body model.UserCreateRequest true "account"
// @Success 201 {object} model.User
// @Failure 400 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.UserCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// @Summary Sign in
// @Description Returns an access token for the bearer header.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body model.AuthRequest true "credentials"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} echo.HTTPError
// @Failure 401 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.AuthRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.sessions.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// @Summary Sign out
// @Description Closes the session of the bearer token.
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /auth/logout [post]
func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	holder, ok := session.HolderFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	if err := holder.Logout(ctx); err != nil {
		h.log.Warn("logout", zap.Error(err))
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
