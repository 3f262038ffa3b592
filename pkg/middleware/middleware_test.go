package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	md "github.com/Astemirdum/perpustakaan/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerConfig(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(zap.New(core))))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/fail", func(c echo.Context) error { return errors.New("boom") })

	for _, path := range []string{"/ok", "/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.Equal(t, int64(http.StatusInternalServerError), entries[1].ContextMap()["status"])
}

func TestNewRateLimiter(t *testing.T) {
	e := echo.New()
	e.Use(md.NewRateLimiter(1))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		codes = append(codes, w.Code)
	}
	require.Equal(t, http.StatusOK, codes[0])
	require.Equal(t, http.StatusTooManyRequests, codes[2])
}
