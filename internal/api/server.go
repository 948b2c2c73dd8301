// Package api serves the Daleel HTTP API with gin.
//
// Public routes are read-only. Admin routes need a session cookie, an
// ADMIN or EDITOR role and, for writes, a double-submit CSRF token. Every
// write goes through the store and therefore the immutability guard; a
// rejected mutation surfaces as 409 with the violation code.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roach88/daleel/internal/audit"
	"github.com/roach88/daleel/internal/auth"
	"github.com/roach88/daleel/internal/config"
	"github.com/roach88/daleel/internal/metrics"
	"github.com/roach88/daleel/internal/ratelimit"
	"github.com/roach88/daleel/internal/record"
	"github.com/roach88/daleel/internal/store"
)

// Deps are the collaborators of a Server. Store and Sessions are
// required; the rest default to no-op or fresh values.
type Deps struct {
	Config   config.Config
	Store    *store.Store
	Sessions *auth.Manager
	Audit    *audit.Recorder
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Server holds the handlers and the rate limiters they share.
type Server struct {
	cfg         config.Config
	development bool
	store       *store.Store
	sessions    *auth.Manager
	audit       *audit.Recorder
	metrics     *metrics.Metrics
	logger      *zap.Logger
	validate    *validator.Validate

	publicLimit *ratelimit.Limiter
	adminLimit  *ratelimit.Limiter
	authLimit   *ratelimit.Limiter

	engine *gin.Engine
}

// New builds a Server and its routes. Call Close to stop the rate limiter
// sweepers.
func New(d Deps) (*Server, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Audit == nil {
		d.Audit = audit.NewRecorder(d.Store, d.Logger)
	}
	rl := d.Config.RateLimit
	s := &Server{
		cfg:         d.Config,
		development: !d.Config.Production(),
		store:       d.Store,
		sessions:    d.Sessions,
		audit:       d.Audit,
		metrics:     d.Metrics,
		logger:      d.Logger,
		validate:    newValidator(),
	}

	var err error
	if s.publicLimit, err = ratelimit.New("public", rl.Public.Max, rl.Public.Window.D(), 0); err != nil {
		return nil, err
	}
	if s.adminLimit, err = ratelimit.New("admin", rl.Admin.Max, rl.Admin.Window.D(), 0); err != nil {
		s.Close()
		return nil, err
	}
	if s.authLimit, err = ratelimit.New("auth", rl.Auth.Max, rl.Auth.Window.D(), 0); err != nil {
		s.Close()
		return nil, err
	}
	if s.engine, err = s.routes(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Close stops background work. The store and session manager belong to
// the caller.
func (s *Server) Close() {
	for _, l := range []*ratelimit.Limiter{s.publicLimit, s.adminLimit, s.authLimit} {
		if l != nil {
			l.Close()
		}
	}
}

func (s *Server) routes() (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(s.cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), s.observe(), securityHeaders(), s.cors(), limitBody())
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) { failure(c, http.StatusNotFound, "Not found") })
	r.NoMethod(func(c *gin.Context) { failure(c, http.StatusMethodNotAllowed, "Method not allowed") })

	r.GET("/health", s.health)
	r.GET("/api/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	public := r.Group("/api/public", s.rateLimit(s.publicLimit))
	public.GET("/cycles", s.listCycles)
	public.GET("/districts", s.listDistricts)
	public.GET("/districts/:id", s.getDistrict)
	public.GET("/lists", s.listLists)
	public.GET("/lists/:id", s.getList)
	public.GET("/candidates", s.listCandidates)
	public.GET("/candidates/:slug", s.getCandidate)
	public.GET("/centers", s.listCenters)
	public.GET("/parties", s.listParties)
	public.GET("/parties/:slug", s.getParty)

	authGroup := r.Group("/api/auth")
	authGroup.GET("/csrf", s.issueCSRF)
	authGroup.POST("/login", s.rateLimit(s.authLimit), s.login)
	authGroup.POST("/logout", s.requireSession(), s.requireCSRF(), s.logout)
	authGroup.GET("/me", s.requireSession(), s.me)

	admin := r.Group("/api/admin",
		s.rateLimit(s.adminLimit),
		s.requireSession(),
		requireRole(record.RoleAdmin, record.RoleEditor))
	admin.GET("/sources", s.listSources)
	admin.GET("/sources/:id", s.getSource)
	admin.GET("/sources/:id/verify", s.verifySource)
	admin.GET("/candidates/:id/versions", s.listVersions)
	admin.GET("/audit", requireRole(record.RoleAdmin), s.listAudit)

	writes := admin.Group("", s.requireCSRF())
	writes.POST("/sources", s.createSource)
	writes.PATCH("/sources/:id", s.updateSource)
	writes.DELETE("/sources/:id", s.deleteSource)
	writes.POST("/statements", s.createStatement)
	writes.POST("/affiliations", s.createAffiliation)
	writes.POST("/candidates/:id/versions", s.createVersion)

	return r, nil
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)}
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Error("health check", zap.Error(err))
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}
	c.JSON(status, body)
}
