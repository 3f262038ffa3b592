package handler

import (
	"net/http"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/labstack/echo/v4"
)

// ListBooks returns the whole catalog, or the matches for q when it is set.
//
// @Summary List books
// @Description Returns the catalog, or the books matching q in title, author, description or category.
// @Tags books
// @Produce json
// @Param q query string false "search keyword"
// @Success 200 {array} model.Book
// @Failure 500 {object} echo.HTTPError
// @Router /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		books []model.Book
		err   error
	)
	if q := c.QueryParam("q"); q != "" {
		books, err = h.catalog.Search(ctx, q)
	} else {
		books, err = h.catalog.List(ctx)
	}
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

// @Summary Get book
// @Tags books
// @Produce json
// @Param id path string true "book id"
// @Success 200 {object} model.Book
// @Failure 404 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	book, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// @Summary Is book borrowed by me
// @Description Reports whether the caller holds an open borrow record for the book.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path string true "book id"
// @Success 200 {object} model.BorrowedResponse
// @Failure 401 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /books/{id}/borrowed [get]
func (h *Handler) IsBorrowed(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	borrowed, err := h.catalog.IsBorrowedByUser(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.BorrowedResponse{Borrowed: borrowed})
}

// @Summary Add book
// @Description Admin only. The new book is available.
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body model.CreateBookRequest true "book"
// @Success 201 {object} model.Book
// @Failure 400 {object} echo.HTTPError
// @Failure 401 {object} echo.HTTPError
// @Failure 403 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.catalog.Create(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

// @Summary Update book
// @Description Admin only. Absent fields are left unchanged.
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "book id"
// @Param input body model.UpdateBookRequest true "fields to change"
// @Success 200 {object} model.Book
// @Failure 400 {object} echo.HTTPError
// @Failure 401 {object} echo.HTTPError
// @Failure 403 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /books/{id} [patch]
func (h *Handler) UpdateBook(c echo.Context) error {
	var req model.UpdateBookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	book, found, err := h.catalog.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return h.httpError(err)
	}
	if !found {
		return h.httpError(errs.ErrBookNotFound)
	}
	return c.JSON(http.StatusOK, book)
}

// @Summary Delete book
// @Description Admin only.
// @Tags books
// @Security BearerAuth
// @Param id path string true "book id"
// @Success 204 "No Content"
// @Failure 401 {object} echo.HTTPError
// @Failure 403 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	deleted, err := h.catalog.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.httpError(err)
	}
	if !deleted {
		return h.httpError(errs.ErrBookNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
