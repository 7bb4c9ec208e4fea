// Package web serves the local browser UI and its JSON API. The server
// binds to loopback only; pscan is a local tool, not a network service.
package web

import (
	_ "embed"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harrison/pscan/internal/history"
	"github.com/harrison/pscan/internal/logger"
	"github.com/harrison/pscan/internal/metrics"
	"github.com/harrison/pscan/internal/snapshot"
)

//go:embed ui.html
var uiHTML string

// Server wires the snapshot holder, optional history store, and metrics
// into a gin engine.
type Server struct {
	holder  *snapshot.Holder
	hist    *history.Store // nil when history is disabled
	log     *logger.Console
	metrics *metrics.Metrics
	engine  *gin.Engine
}

// New builds the server and registers all routes.
func New(holder *snapshot.Holder, hist *history.Store, log *logger.Console) *Server {
	gin.SetMode(gin.ReleaseMode)

	reg := prometheus.NewRegistry()
	s := &Server{
		holder:  holder,
		hist:    hist,
		log:     log,
		metrics: metrics.New(reg),
		engine:  gin.New(),
	}

	s.engine.Use(gin.Recovery(), s.countRequests())

	s.engine.GET("/", s.handleUI)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	{
		api.GET("/params", s.handleParams)
		api.GET("/options", s.handleOptions)
		api.GET("/file", s.handleFile)
		api.POST("/refresh", s.handleRefresh)
		api.GET("/history", s.handleHistory)
	}

	return s
}

// Handler exposes the engine for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on 127.0.0.1:port until the listener fails.
func (s *Server) Run(port int) error {
	addr := "127.0.0.1:" + strconv.Itoa(port)
	s.log.Infof("web UI listening on http://%s/", addr)
	return s.engine.Run(addr)
}

// countRequests increments the HTTP request counter per response.
func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			fmt.Sprintf("%d", c.Writer.Status()),
		).Inc()
	}
}

func (s *Server) handleUI(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, uiHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.holder.Current()
	c.JSON(http.StatusOK, gin.H{
		"snapshot_id": snap.ID.String(),
		"built_at":    snap.BuiltAt,
		"records":     snap.Index.Len(),
		"report":      snap.Report,
	})
}
