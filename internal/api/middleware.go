package api

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"
)

// RateLimit applies a process-wide token bucket in front of every route.
// Per-session fairness is the quota tracker's job; this only shields the
// process from request floods.
func RateLimit(limiter *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, errorJSON("Rate limit exceeded"))
			}
			return next(c)
		}
	}
}
