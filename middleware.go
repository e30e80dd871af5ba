package vibeflow

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = errorHandler

	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	e.Use(cacheControl)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				slog.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Duration("latency", v.Latency),
				)
			} else {
				slog.LogAttrs(context.Background(), slog.LevelError, "REQUEST_ERROR",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("err", v.Error.Error()),
				)
			}
			return nil
		},
	})
}

// cacheControl sets the per-endpoint cache and robots headers. The
// pipeline re-fetches and re-resolves on every request, so CDN-level
// caching is the only mitigation for request cost.
func cacheControl(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		switch c.Request().URL.Path {
		case "/api/blog-list-meta", "/api/blog-meta":
			h.Set("Cache-Control", "s-maxage=900, stale-while-revalidate=3600")
		case "/api/post":
			h.Set("Cache-Control", "s-maxage=1800, stale-while-revalidate=7200")
			h.Set("X-Robots-Tag", "noindex, nofollow")
		case "/sitemap.xml":
			h.Set("Cache-Control", "s-maxage=1800, stale-while-revalidate=86400")
			h.Set("X-Robots-Tag", "noindex")
		case "/feed.xml", "/robots.txt":
			h.Set("Cache-Control", "s-maxage=1800, stale-while-revalidate=86400")
		default:
			h.Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}
