package api

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	csrfCookie    = "csrf-token"
	csrfHeader    = "X-CSRF-Token"
	csrfBodyField = "csrfToken"
)

// issueCSRF sets a fresh double-submit token cookie and returns the token
// so the client can echo it back.
func (s *Server) issueCSRF(c *gin.Context) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		s.respondError(c, err)
		return
	}
	token := hex.EncodeToString(b)
	s.setCookie(c, csrfCookie, token, s.cfg.CSRF.TTL.D())
	success(c, http.StatusOK, gin.H{"csrfToken": token})
}

// requireCSRF compares the csrf-token cookie with the X-CSRF-Token header,
// or with the csrfToken field of a JSON body when the header is absent.
func (s *Server) requireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(csrfCookie)
		if err != nil || cookie == "" {
			failure(c, http.StatusForbidden, "Invalid CSRF token")
			return
		}
		token := c.GetHeader(csrfHeader)
		if token == "" {
			token = bodyCSRFToken(c)
		}
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cookie)) != 1 {
			failure(c, http.StatusForbidden, "Invalid CSRF token")
			return
		}
		c.Next()
	}
}

// bodyCSRFToken peeks at the JSON body and restores it for the handler.
func bodyCSRFToken(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.CSRFToken
}
