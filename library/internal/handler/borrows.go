package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// @Summary Borrow book
// @Description The loan is due in 14 days.
// @Tags borrows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body model.BorrowRequest true "book to borrow"
// @Success 201 {object} model.BorrowRecord
// @Failure 400 {object} echo.HTTPError
// @Failure 401 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError
// @Failure 422 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /borrows [post]
func (h *Handler) Borrow(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.BorrowRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rec, err := h.ledger.Borrow(c.Request().Context(), user.ID, req.BookID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// @Summary List my borrow records
// @Tags borrows
// @Produce json
// @Security BearerAuth
// @Param active query boolean false "only active and overdue records"
// @Success 200 {array} model.BorrowRecord
// @Failure 400 {object} echo.HTTPError
// @Failure 401 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /borrows [get]
func (h *Handler) ListBorrows(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var active bool
	if activeParam := c.QueryParam("active"); activeParam != "" {
		if active, err = strconv.ParseBool(activeParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("active is invalid").Error())
		}
	}
	ctx := c.Request().Context()
	var records []model.BorrowRecord
	if active {
		records, err = h.ledger.ListActiveByUser(ctx, user.ID)
	} else {
		records, err = h.ledger.ListByUser(ctx, user.ID)
	}
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// ReturnBorrow closes a record. Only its borrower or an admin may do so.
//
// @Summary Return book
// @Description The borrower or an admin only. The fine is fixed at return.
// @Tags borrows
// @Produce json
// @Security BearerAuth
// @Param id path string true "borrow record id"
// @Success 200 {object} model.BorrowRecord
// @Failure 401 {object} echo.HTTPError
// @Failure 403 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Failure 422 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /borrows/{id}/return [post]
func (h *Handler) ReturnBorrow(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	rec, err := h.ledger.Get(ctx, id)
	if err != nil {
		return h.httpError(err)
	}
	if rec.UserID != user.ID && !user.IsAdmin() {
		return echo.NewHTTPError(http.StatusForbidden, "borrow record belongs to another user")
	}
	rec, err = h.ledger.Return(ctx, id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// @Summary Mark overdue records
// @Description Admin only. Recomputes fines of records past their due date.
// @Tags borrows
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.SweepResponse
// @Failure 401 {object} echo.HTTPError
// @Failure 403 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /borrows/sweep [post]
func (h *Handler) SweepOverdue(c echo.Context) error {
	n, err := h.ledger.SweepOverdue(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.SweepResponse{Updated: n})
}
