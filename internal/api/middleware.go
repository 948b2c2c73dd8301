package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roach88/daleel/internal/audit"
	"github.com/roach88/daleel/internal/auth"
	"github.com/roach88/daleel/internal/ratelimit"
	"github.com/roach88/daleel/internal/record"
)

const (
	sessionKey   = "daleel_session"
	maxBodyBytes = 1 << 20
)

// observe records request metrics and an access log line.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		route := c.FullPath()
		status := c.Writer.Status()
		s.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed))
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("X-DNS-Prefetch-Control", "on")
		h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'")
		c.Next()
	}
}

// cors allows credentialed requests from the configured frontend origin.
func (s *Server) cors() gin.HandlerFunc {
	allowed := s.cfg.Server.FrontendOrigin
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && origin == allowed {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+csrfHeader)
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}
		c.Next()
	}
}

// rateLimit rejects callers that exhausted l with 429 and Retry-After.
// Callers are keyed by gin's client IP, which reads forwarding headers
// only from configured trusted proxies.
func (s *Server) rateLimit(l *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := l.Allow(c.ClientIP())
		if !ok {
			s.metrics.RateLimited.WithLabelValues(l.Name()).Inc()
			seconds := int(retry.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			failure(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}

// requireSession resolves the session cookie or answers 401.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(s.cfg.Session.CookieName)
		if err != nil || id == "" {
			failure(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		sess, ok := s.sessions.Get(id)
		if !ok {
			failure(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// requireRole answers 403 unless the session role is one of roles.
func requireRole(roles ...record.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := currentSession(c)
		if !ok {
			failure(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !auth.HasRole(sess.Role, roles...) {
			failure(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) (auth.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return auth.Session{}, false
	}
	sess, ok := v.(auth.Session)
	return sess, ok
}

// setCookie writes an HttpOnly, SameSite=Strict cookie, Secure in
// production. A zero ttl deletes the cookie.
func (s *Server) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if ttl == 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", "", s.cfg.Production(), true)
}

func clientInfo(c *gin.Context) audit.Client {
	return audit.Client{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
