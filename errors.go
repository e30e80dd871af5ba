package vibeflow

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ConfigurationError signals a missing or unusable credential for the
// record source. It is never silently degraded: the HTTP boundary turns
// it into a 500 with an explanatory body.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// UpstreamError wraps a failure to reach or read the record source.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream fetch failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// errorHandler maps the pipeline's error taxonomy onto HTTP responses.
// Bad-request and not-found conditions are handled inside the individual
// handlers (their bodies differ per endpoint); only the fatal conditions
// and echo's own routing errors land here.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ce *ConfigurationError
	if errors.As(err, &ce) {
		slog.Error("configuration error", "path", c.Request().URL.Path, "error", ce.Message)
		_ = c.String(http.StatusInternalServerError, ce.Message)
		return
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		slog.Error("upstream fetch error", "path", c.Request().URL.Path, "error", ue.Err)
		_ = c.String(http.StatusInternalServerError, "Failed to load blog content")
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Code >= 500 {
			slog.Error("server error", "path", c.Request().URL.Path, "error", err)
		}
		_ = c.String(he.Code, msg)
		return
	}

	slog.Error("unhandled error", "path", c.Request().URL.Path, "error", err)
	_ = c.String(http.StatusInternalServerError, "Internal server error")
}
