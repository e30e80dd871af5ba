// Package vibeflow is the content service behind the Vibe Flow marketing
// site. It resolves blog records from an Airtable base into canonical
// posts and serves four projections of that collection: SEO HTML for the
// blog list and detail pages, a JSON API for the SPA, and an XML sitemap.
package vibeflow

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vibeflow/site/airtable"
)

const gracefulShutdownTimeout = 10 * time.Second

// RecordSource yields the raw record set the resolver pipeline consumes.
// Satisfied by *airtable.Client; tests swap in a fixture source.
type RecordSource interface {
	ListRecords(ctx context.Context) ([]airtable.Record, error)
}

// App wires together config, the record source, middleware and handlers.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Source RecordSource

	contactLimiter *RateLimiter
}

// Option configures additional App behavior.
type Option func(*App)

// WithSource overrides the default Airtable-backed record source.
func WithSource(s RecordSource) Option {
	return func(a *App) {
		a.Source = s
	}
}

// WithClock overrides the clock used by the contact rate limiter.
func WithClock(clock func() time.Time) Option {
	return func(a *App) {
		a.contactLimiter = NewRateLimiter(5, time.Minute, clock)
	}
}

// New creates the application with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:         cfg,
		Echo:           echo.New(),
		Source:         airtable.New(cfg.AirtableAPIKey, cfg.AirtableBaseID, cfg.AirtableTable),
		contactLimiter: NewRateLimiter(5, time.Minute, nil),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func (a *App) setupRoutes() {
	e := a.Echo

	// The content endpoints accept GET, HEAD and OPTIONS only. Echo
	// answers everything else on these paths with 405 plus Allow.
	for path, h := range map[string]echo.HandlerFunc{
		"/api/blog-list-meta": a.handleBlogListMeta,
		"/api/blog-meta":      a.handleBlogMeta,
		"/api/post":           a.handlePost,
		"/sitemap.xml":        a.handleSitemap,
		"/feed.xml":           a.handleFeed,
		"/robots.txt":         a.handleRobots,
	} {
		e.GET(path, h)
		e.HEAD(path, h)
		e.OPTIONS(path, allowOptions)
	}

	e.POST("/api/contact", a.handleContact)
	e.GET("/healthz", handleHealth)
}

// Start runs the HTTP server until SIGINT, then shuts down gracefully.
func (a *App) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}
