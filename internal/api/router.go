package api

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
)

// NewRouter wires routes and global middleware. CORS handles the OPTIONS
// preflight the browser clients send before posting download forms.
func NewRouter(h *Handler, cfg *config.Config, log *logger.Logger) *echo.Echo {
	e := echo.New()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst)))

	e.POST("/download", h.Download)
	e.GET("/download-progress", h.DownloadProgress)
	e.GET("/downloads/:filename", h.ServeArtifact)
	e.GET("/test-connectivity", h.TestConnectivity)
	e.GET("/healthz", h.Healthz)

	return e
}
