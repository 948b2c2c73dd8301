package api

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/store"
)

// errorBody is the failure envelope.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// violationDetails describes a rejected mutation to API clients.
type violationDetails struct {
	Kind      guard.RecordKind `json:"kind"`
	Operation guard.Operation  `json:"operation"`
	Fields    []string         `json:"fields,omitempty"`
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func paginated(c *gin.Context, data any, total int, page store.Page) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"total":      total,
		"page":       page.Number,
		"pageSize":   page.Size,
		"totalPages": int(math.Ceil(float64(total) / float64(page.Size))),
	})
}

func failure(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: message})
}

// respondError maps err onto a status code and the failure envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	if v, ok := guard.AsViolation(err); ok {
		c.AbortWithStatusJSON(http.StatusConflict, errorBody{
			Error:   v.Error(),
			Code:    string(v.Code),
			Details: violationDetails{Kind: v.Kind, Operation: v.Operation, Fields: v.Fields},
		})
		return
	}

	var verrs validator.ValidationErrors
	var bad *badRequest
	switch {
	case errors.As(err, &verrs):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "Validation error", Details: fieldErrors(verrs)})
	case errors.As(err, &bad):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "Validation error", Details: bad.Error()})
	case errors.Is(err, store.ErrNotFound):
		failure(c, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrConflict):
		failure(c, http.StatusConflict, "Conflict")
	case errors.Is(err, store.ErrUnknownField), errors.Is(err, store.ErrReadOnlyField),
		errors.Is(err, store.ErrNoChanges), errors.Is(err, store.ErrInvalidReference),
		errors.Is(err, store.ErrInvalidValue):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "Validation error", Details: err.Error()})
	default:
		s.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()))
		message := "An error occurred"
		if s.development {
			message = err.Error()
		}
		failure(c, http.StatusInternalServerError, message)
	}
}
