package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/proclife/internal/metrics"
	"github.com/loykin/proclife/internal/monitor"
	"github.com/loykin/proclife/internal/registry"
)

// Backend is the monitor surface the HTTP API drives. Handlers never touch
// the registry directly: priority overrides go through the monitor's queue
// and status reads come from its published snapshot.
type Backend interface {
	Snapshot() []monitor.ProcessStatus
	RequestPriority(pid int32, priority int) error
}

// Router provides the embeddable HTTP surface.
// Endpoints:
//
//	GET  /api/status       all tracked processes
//	POST /api/priority     body: {"pid": N, "priority": M}
//	GET  /metrics          Prometheus metrics
type Router struct {
	backend Backend
}

func NewRouter(backend Backend) *Router {
	return &Router{backend: backend}
}

// Handler returns an http.Handler that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	api := g.Group("/api")
	api.GET("/status", r.handleStatus)
	api.POST("/priority", r.handlePriority)
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr serving this router.
func NewServer(addr string, backend Backend) *http.Server {
	r := NewRouter(backend)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type priorityReq struct {
	PID      int32 `json:"pid"`
	Priority int   `json:"priority"`
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.backend.Snapshot())
}

func (r *Router) handlePriority(c *gin.Context) {
	var req priorityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.PID <= 0 {
		c.JSON(http.StatusBadRequest, errorResp{Error: "pid required"})
		return
	}
	if err := r.backend.RequestPriority(req.PID, req.Priority); err != nil {
		switch {
		case errors.Is(err, registry.ErrPriorityRange):
			c.JSON(http.StatusBadRequest, errorResp{Error: err.Error()})
		case errors.Is(err, registry.ErrNotFound):
			c.JSON(http.StatusNotFound, errorResp{Error: err.Error()})
		default:
			c.JSON(http.StatusServiceUnavailable, errorResp{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}
