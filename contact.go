package vibeflow

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// validateContact returns a human-readable problem with the submission,
// or "" when it is acceptable.
func validateContact(req contactRequest) string {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	switch {
	case name == "" || len(name) > 100:
		return "Name is required and must be at most 100 characters"
	case !emailPattern.MatchString(email):
		return "A valid email address is required"
	case message == "" || len(message) > 5000:
		return "Message is required and must be at most 5000 characters"
	}
	return ""
}

// handleContact accepts contact-form submissions from the SPA. It only
// validates and rate-limits; delivery is logged for the operator rather
// than relayed to a mail provider.
func (a *App) handleContact(c echo.Context) error {
	if !a.contactLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many submissions, try again later"})
	}
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if msg := validateContact(req); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	slog.Info("contact form submission",
		"name", strings.TrimSpace(req.Name),
		"email", strings.TrimSpace(req.Email),
		"length", len(strings.TrimSpace(req.Message)),
	)
	return c.JSON(http.StatusOK, map[string]string{"status": "received"})
}
