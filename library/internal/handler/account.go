package handler

import (
	"net/http"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/labstack/echo/v4"
)

// @Summary Current account
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /me [get]
func (h *Handler) GetMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	// re-read so the response reflects changes made through other sessions
	user, err = h.accounts.GetByID(c.Request().Context(), user.ID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// @Summary Update profile
// @Tags account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body model.ProfileUpdateRequest true "fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} echo.HTTPError
// @Failure 401 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /me [patch]
func (h *Handler) UpdateMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.ProfileUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.accounts.UpdateProfile(c.Request().Context(), user.ID, req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// @Summary Change password
// @Tags account
// @Accept json
// @Security BearerAuth
// @Param input body model.ChangePasswordRequest true "passwords"
// @Success 204 "No Content"
// @Failure 400 {object} echo.HTTPError
// @Failure 401 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /me/password [put]
func (h *Handler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if _, err := h.accounts.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
