// Package mockapi serves fixture assignments over the same GET table/
// contract the table fetches from.
package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drexxdk/tanstack-table/internal/assignment"
)

// Options tune the mock's behaviour.
type Options struct {
	// Delay is added before every table response.
	Delay time.Duration
	// Metrics, when set, is fed by every request and served on /metrics.
	Metrics *Metrics
}

type Server struct {
	mu   sync.RWMutex
	list []assignment.Assignment

	opts Options
	log  *zap.Logger
}

func New(list []assignment.Assignment, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	opts.Metrics.SetAssignments(len(list))
	return &Server{list: list, opts: opts, log: log}
}

// Replace swaps the served list in one step.
func (s *Server) Replace(list []assignment.Assignment) {
	s.mu.Lock()
	s.list = list
	s.mu.Unlock()
	s.opts.Metrics.SetAssignments(len(list))
	s.log.Info("fixtures_replaced", zap.Int("count", len(list)))
}

func (s *Server) snapshot() []assignment.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]assignment.Assignment, len(s.list))
	copy(out, s.list)
	return out
}

// Router wires the mock's routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(s.log))
	r.Use(CORS())
	r.Use(Instrument(s.opts.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/table/", s.table)
	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	}
	return r
}

func (s *Server) table(c *gin.Context) {
	if s.opts.Delay > 0 {
		select {
		case <-time.After(s.opts.Delay):
		case <-c.Request.Context().Done():
			c.Status(499)
			return
		}
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, s.snapshot())
}
