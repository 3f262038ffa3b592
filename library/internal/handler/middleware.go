package handler

import (
	"net/http"
	"strings"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/session"
	"github.com/labstack/echo/v4"
)

const bearer = "Bearer "

// authenticate restores the caller's session from the bearer token and puts
// the account and its holder into the request context.
func (h *Handler) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authorization := c.Request().Header.Get(echo.HeaderAuthorization)
		if authorization == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "no Authorization header")
		}
		if !strings.HasPrefix(authorization, bearer) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid Authorization header")
		}
		token := strings.TrimPrefix(authorization, bearer)

		req := c.Request()
		holder := session.NewHolder(h.sessions)
		if err := holder.Restore(req.Context(), token); err != nil {
			return h.httpError(err)
		}
		user, ok := holder.Current()
		if !ok {
			return h.httpError(errs.ErrSessionClosed)
		}
		ctx := session.WithHolder(session.WithUser(req.Context(), user), holder)
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		if !user.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}

func currentUser(c echo.Context) (model.User, error) {
	user, ok := session.UserFromContext(c.Request().Context())
	if !ok {
		return model.User{}, echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return user, nil
}
