// Package server serves the dashboard over HTTP: the HTML pages, a JSON view of
// the portfolio and the same-origin relay to the chart API.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"regexp"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/news"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phuslu/log"
)

//go:embed templates/*.html
var templates embed.FS

// symbolPattern matches the tickers accepted by the relay.
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9.=^-]{1,20}$`)

// Charts returns raw chart documents. *yahoo.Client implements it.
type Charts interface {
	Chart(ctx context.Context, ticker string) ([]byte, error)
	ExchangeChart(ctx context.Context) ([]byte, error)
}

// Server holds the dashboard handlers.
type Server struct {
	refresher *folio.Refresher
	charts    Charts
	news      news.Provider
	logger    *log.Logger

	// RefreshTimeout bounds every refresh cycle started by the server.
	RefreshTimeout time.Duration
}

// New returns a Server. A nil provider serves the news placeholder.
func New(refresher *folio.Refresher, charts Charts, provider news.Provider, logger *log.Logger) *Server {
	if provider == nil {
		provider = news.Placeholder{}
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Server{
		refresher:      refresher,
		charts:         charts,
		news:           provider,
		logger:         logger,
		RefreshTimeout: time.Minute,
	}
}

// Handler returns the router serving every route.
func (s *Server) Handler() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogging())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templates, "templates/*.html")))

	router.GET("/", s.dashboard)
	router.POST("/refresh", s.refreshPage)
	router.GET("/news", s.newsPage)

	api := router.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/stock/:symbol", s.stock)
	api.GET("/exchange", s.exchange)
	api.GET("/portfolio", s.portfolio)
	api.POST("/refresh", s.refresh)

	return router
}

// ListenAndServe starts the initial refresh and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.start(folio.Initial)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// start runs a bounded refresh cycle in the background, unless one is running.
func (s *Server) start(trigger folio.Trigger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.RefreshTimeout)
	done, ok := s.refresher.Start(ctx, trigger)
	if !ok {
		cancel()
		return false
	}
	go func() {
		<-done
		cancel()
	}()
	return true
}

// requestLogging logs every request with a request id, also returned in the X-Request-ID header.
func (s *Server) requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
