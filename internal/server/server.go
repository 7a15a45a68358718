// Package server exposes the scheduler over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cloudsched/internal/scheduler"
)

// Scheduler is the part of scheduler.Scheduler the HTTP layer uses.
type Scheduler interface {
	Schedule(ctx context.Context) (*scheduler.Dispatch, error)
	Reset()
	RecordCPU(s scheduler.Sample)
	Status() scheduler.Status
}

type cpuReport struct {
	Host   string   `json:"host" binding:"required"`
	AvgCPU *float64 `json:"avgCpu" binding:"required"`
}

// Server routes HTTP requests to the scheduler.
type Server struct {
	sched   Scheduler
	metrics http.Handler
	// fatal aborts the process on an unusable assignment.
	fatal func(args ...interface{})
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithFatal replaces log.Fatal, for tests.
func WithFatal(f func(args ...interface{})) Option {
	return func(s *Server) { s.fatal = f }
}

func New(sched Scheduler, opts ...Option) *Server {
	s := &Server{sched: sched, fatal: log.Fatal}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns a gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.POST("/schedule", s.schedule)
	r.POST("/reset", s.reset)
	r.POST("/cpu-usage-report", s.cpuUsage)
	r.GET("/status", s.status)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}
	return r
}

func (s *Server) schedule(c *gin.Context) {
	d, err := s.sched.Schedule(c.Request.Context())
	if err == nil {
		var result interface{} = json.RawMessage("null")
		if len(d.Outcome.Raw) > 0 {
			result = d.Outcome.Raw
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "sent",
			"task":   d.Task.Name,
			"weight": d.Task.Weight,
			"worker": d.Worker,
			"result": result,
		})
		return
	}

	var (
		ae *scheduler.AssignmentError
		de *scheduler.DispatchError
	)
	switch {
	case err == scheduler.ErrRunComplete:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &ae):
		c.JSON(http.StatusInternalServerError, gin.H{"error": ae.Error()})
		s.fatal(ae)
	case errors.As(err, &de):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "worker unreachable",
			"worker": de.Worker,
			"task":   de.TaskName,
			"weight": de.Weight,
		})
	default:
		log.WithError(err).Error("schedule failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) reset(c *gin.Context) {
	s.sched.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset done"})
}

func (s *Server) cpuUsage(c *gin.Context) {
	var req cpuReport
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.sched.RecordCPU(scheduler.Sample{
		Host:   req.Host,
		AvgCPU: *req.AvgCPU,
		Time:   time.Now(),
	})
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.Status())
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request served")
	}
}
