package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/daleel/internal/audit"
	"github.com/roach88/daleel/internal/auth"
	"github.com/roach88/daleel/internal/record"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	sess, err := s.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		failure(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.setCookie(c, s.cfg.Session.CookieName, sess.ID, s.sessions.TTL())
	s.audit.Record(c.Request.Context(), audit.Event{
		Actor:      sess.UserID,
		Action:     record.AuditLogin,
		EntityType: "User",
		EntityID:   sess.UserID,
		Client:     clientInfo(c),
	})
	success(c, http.StatusOK, sess)
}

func (s *Server) logout(c *gin.Context) {
	sess, _ := currentSession(c)
	s.sessions.Logout(sess.ID)
	s.setCookie(c, s.cfg.Session.CookieName, "", 0)
	s.audit.Record(c.Request.Context(), audit.Event{
		Actor:      sess.UserID,
		Action:     record.AuditLogout,
		EntityType: "User",
		EntityID:   sess.UserID,
		Client:     clientInfo(c),
	})
	success(c, http.StatusOK, gin.H{"loggedOut": true})
}

func (s *Server) me(c *gin.Context) {
	sess, _ := currentSession(c)
	success(c, http.StatusOK, sess)
}
