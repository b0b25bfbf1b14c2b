// Package server exposes dashboard sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"commerce-insights/internal/dashboard"
	"commerce-insights/internal/dataset"
	"commerce-insights/internal/metrics"
	"commerce-insights/internal/runner"
	"commerce-insights/internal/segmentation"
)

const (
	SessionHeader = "X-Session-ID"
	// SessionTTL is how long an idle session is kept.
	SessionTTL = 30 * time.Minute

	// statusClientClosed is the non-standard status nginx logs when the
	// client hangs up before the response is written.
	statusClientClosed = 499
)

type Server struct {
	ds      *dataset.Dataset
	engine  *metrics.Engine
	segOpts segmentation.Options
	logger  *slog.Logger
	router  *gin.Engine

	mu       sync.Mutex
	sessions map[string]*dashboard.Session
	inflight map[string]*refresh
}

// refresh is a report in progress. A newer report request on the same
// session cancels it.
type refresh struct {
	cancel context.CancelFunc
}

func New(ds *dataset.Dataset, engine *metrics.Engine, segOpts segmentation.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ds:       ds,
		engine:   engine,
		segOpts:  segOpts,
		logger:   logger,
		sessions: make(map[string]*dashboard.Session),
		inflight: make(map[string]*refresh),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	r.GET("/health", s.health)
	api := r.Group("/api")
	{
		api.GET("/pages", s.pages)
		api.GET("/panels/:page/:panel", s.panel)
		api.GET("/report", s.report)
	}
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// session returns the caller's session, creating one when the header is
// missing or names an expired session. The id is echoed back either way.
func (s *Server) session(c *gin.Context) *dashboard.Session {
	id := c.GetHeader(SessionHeader)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		s.prune(time.Now())
		sess = dashboard.NewSession(s.ds, s.engine, s.segOpts, s.logger)
		s.sessions[sess.ID] = sess
		s.logger.Info("session started", "session", sess.ID)
	}
	c.Header(SessionHeader, sess.ID)
	return sess
}

// prune must be called with mu held.
func (s *Server) prune(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.LastUsed()) > SessionTTL {
			delete(s.sessions, id)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tables": s.ds.Counts()})
}

func (s *Server) pages(c *gin.Context) {
	c.JSON(http.StatusOK, dashboard.Pages().Layout())
}

func filterFrom(c *gin.Context) (dataset.Filter, error) {
	return dataset.ParseFilter(c.Query("date_from"), c.Query("date_to"), c.Query("state"), c.Query("city"), c.QueryArray("status"))
}

func (s *Server) panel(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := s.session(c)
	page, name := c.Param("page"), c.Param("panel")

	data, err := sess.Panel(c.Request.Context(), page, name, f)
	switch {
	case errors.Is(err, dashboard.ErrUnknownPanel):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.logger.Warn("panel failed", "session", sess.ID, "page", page, "panel", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"page":       page,
		"panel":      name,
		"filter":     f,
		"data":       data,
	})
}

func (s *Server) report(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := s.session(c)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	current := &refresh{cancel: cancel}
	s.supersede(sess.ID, current)
	defer s.finish(sess.ID, current)

	report, err := runner.Run(ctx, sess, f, s.logger)
	if err != nil {
		if s.superseded(sess.ID, current) {
			c.JSON(http.StatusConflict, gin.H{"error": "refresh superseded: " + err.Error(), "report": report})
			return
		}
		s.logger.Warn("refresh aborted", "session", sess.ID, "error", err)
		c.JSON(statusClientClosed, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

// supersede cancels the session's running refresh, if any, and records r
// as the current one.
func (s *Server) supersede(id string, r *refresh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.inflight[id]; ok {
		prev.cancel()
	}
	s.inflight[id] = r
}

// superseded reports whether a newer refresh replaced r.
func (s *Server) superseded(id string, r *refresh) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[id] != r
}

// finish forgets r unless a newer refresh has already replaced it.
func (s *Server) finish(id string, r *refresh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[id] == r {
		delete(s.inflight, id)
	}
}
