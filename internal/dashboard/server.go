// Package dashboard serves the rollout web interface: HTML forms for every
// entity, a JSON API, the reporting dashboard and a plan status stream.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/ativarub/rollout/internal/notify"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DefaultNotifyTimeout bounds delivery of one batch of plan status events.
const DefaultNotifyTimeout = 10 * time.Second

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	DB            *gorm.DB
	Port          int
	Out           io.Writer
	Notifier      notify.Notifier // nil disables plan status notifications
	NotifyTimeout time.Duration
}

// server carries the dependencies shared by every handler.
type server struct {
	db            *gorm.DB
	notifier      notify.Notifier
	notifyTimeout time.Duration
	pollInterval  time.Duration // SSE plan status polling
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("dashboard: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with every route registered. Port and
// Out are ignored.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("dashboard: db is required")
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	s := &server{
		db:            opts.DB,
		notifier:      opts.Notifier,
		notifyTimeout: opts.NotifyTimeout,
		pollInterval:  3 * time.Second,
	}
	registerRoutes(router, s)
	return router, nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
