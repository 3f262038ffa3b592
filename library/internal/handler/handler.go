package handler

import (
	"net/http"

	"github.com/Astemirdum/perpustakaan/library/internal/metrics"
	md "github.com/Astemirdum/perpustakaan/pkg/middleware"
	"github.com/Astemirdum/perpustakaan/pkg/validate"
	_ "github.com/Astemirdum/perpustakaan/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	catalog  CatalogService
	accounts AccountService
	ledger   LedgerService
	sessions SessionService
	gatherer prometheus.Gatherer
	log      *zap.Logger
}

type Option func(*Handler)

// WithGatherer exposes the registry on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) { h.gatherer = g }
}

func New(catalog CatalogService, accounts AccountService, ledger LedgerService, sessions SessionService, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		catalog:  catalog,
		accounts: accounts,
		ledger:   ledger,
		sessions: sessions,
		log:      log.Named("handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)
	if h.gatherer != nil {
		base.GET("/metrics", echo.WrapHandler(metrics.Handler(h.gatherer)))
	}

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log.Named("http"))),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	signedIn := h.authenticate
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout, signedIn)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)
	api.GET("/books/:id/borrowed", h.IsBorrowed, signedIn)
	api.POST("/books", h.CreateBook, signedIn, adminOnly)
	api.PATCH("/books/:id", h.UpdateBook, signedIn, adminOnly)
	api.DELETE("/books/:id", h.DeleteBook, signedIn, adminOnly)

	api.GET("/me", h.GetMe, signedIn)
	api.PATCH("/me", h.UpdateMe, signedIn)
	api.PUT("/me/password", h.ChangePassword, signedIn)

	api.POST("/borrows", h.Borrow, signedIn)
	api.GET("/borrows", h.ListBorrows, signedIn)
	api.POST("/borrows/:id/return", h.ReturnBorrow, signedIn)
	api.POST("/borrows/sweep", h.SweepOverdue, signedIn, adminOnly)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
