// Package server exposes the calculation engine over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edp1096/spkline/internal/logger"
	"github.com/edp1096/spkline/internal/metrics"
	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/project"
	"github.com/edp1096/spkline/pkg/quality"
	"github.com/edp1096/spkline/pkg/report"
)

// LibraryFunc returns the device library requests are calculated against.
type LibraryFunc func() (*catalog.Database, error)

type Config struct {
	Service     *analysis.Service
	Library     LibraryFunc
	Metrics     *metrics.EngineMetrics // nil disables /metrics
	Log         *logger.Logger
	CORSOrigins []string
}

type Server struct {
	Engine *gin.Engine
	cfg    Config
}

func New(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Library == nil {
		cfg.Library = func() (*catalog.Database, error) { return catalog.Default(), nil }
	}
	s := &Server{cfg: cfg}
	s.Engine = s.router()
	return s
}

func (s *Server) Run(address string) error {
	s.cfg.Log.Info("http server listening", "addr", address)
	return s.Engine.Run(address)
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLog())
	if len(s.cfg.CORSOrigins) > 0 {
		cc := cors.DefaultConfig()
		cc.AllowOrigins = s.cfg.CORSOrigins
		r.Use(cors.New(cc))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if s.cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/profiles", s.listProfiles)
		api.POST("/calculate", s.calculate)
		api.POST("/verify", s.verify)
		api.POST("/suggest", s.suggest)
	}
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.ObserveRequest(route, c.Writer.Status())
		}
		s.cfg.Log.Debug("request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

func (s *Server) listProfiles(c *gin.Context) {
	respondOK(c, gin.H{
		"default":  quality.DefaultProfile,
		"profiles": s.cfg.Service.Engine().Profiles().All(),
	})
}

type CalculateResponse struct {
	Project  *project.Project `json:"project"`
	Output   analysis.Output  `json:"output"`
	Schedule []report.Row     `json:"schedule"`
	BOM      []report.Item    `json:"bom"`
}

// input decodes a request-local project; recomputes never touch shared state.
func (s *Server) input(c *gin.Context, p *project.Project) (analysis.Input, bool) {
	library, err := s.cfg.Library()
	if err != nil {
		s.cfg.Log.Error("loading device library", "error", err)
		respondError(c, http.StatusInternalServerError, "library_unavailable", err)
		return analysis.Input{}, false
	}
	if err := p.SyncRack(library); err != nil {
		s.cfg.Log.Warn("rack assignment conflicts", "project", p.Info.ID, "error", err)
	}
	return p.Input(library), true
}

func (s *Server) decodeProject(c *gin.Context) (*project.Project, bool) {
	p, err := project.Decode(c.Request.Body, project.JSON)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_project", err)
		return nil, false
	}
	return p, true
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, quality.ErrUnknownProfile):
		return http.StatusUnprocessableEntity, "unknown_profile"
	case errors.Is(err, network.ErrNodeNotFound):
		return http.StatusNotFound, "node_not_found"
	}
	return http.StatusInternalServerError, "calculation_failed"
}

func (s *Server) calculate(c *gin.Context) {
	p, ok := s.decodeProject(c)
	if !ok {
		return
	}
	in, ok := s.input(c, p)
	if !ok {
		return
	}
	out, err := s.cfg.Service.Recompute(in)
	if err != nil {
		status, code := statusFor(err)
		respondError(c, status, code, err)
		return
	}
	respondOK(c, CalculateResponse{
		Project:  p,
		Output:   out,
		Schedule: report.Schedule(p.LowZ, p.ConstantVoltage),
		BOM:      report.BOM(p.Rack, p.LowZ, p.ConstantVoltage),
	})
}

func (s *Server) verify(c *gin.Context) {
	p, ok := s.decodeProject(c)
	if !ok {
		return
	}
	in, ok := s.input(c, p)
	if !ok {
		return
	}
	rep, err := s.cfg.Service.Verify(in)
	if err != nil {
		status, code := statusFor(err)
		respondError(c, status, code, err)
		return
	}
	respondOK(c, rep)
}

type SuggestRequest struct {
	Project  *project.Project `json:"project" binding:"required"`
	Topology network.Topology `json:"topology"`
	NodeID   string           `json:"node_id" binding:"required"`
	Brand    string           `json:"brand"`
}

func (s *Server) suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Topology == "" {
		req.Topology = network.LowZ
	}
	if req.Topology != network.LowZ && req.Topology != network.ConstantVoltage {
		respondError(c, http.StatusBadRequest, "invalid_topology", errors.New("topology must be low_z or constant_voltage"))
		return
	}

	in, ok := s.input(c, req.Project)
	if !ok {
		return
	}
	suggestions, err := s.cfg.Service.SuggestCables(in, req.Topology, req.NodeID, req.Brand)
	if err != nil {
		status, code := statusFor(err)
		respondError(c, status, code, err)
		return
	}
	respondOK(c, gin.H{"suggestions": suggestions})
}
