package api

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/roach88/daleel/internal/store"
)

// badRequest is a malformed body or query that never reached validation.
type badRequest struct{ err error }

func (b *badRequest) Error() string { return b.err.Error() }
func (b *badRequest) Unwrap() error { return b.err }

// fieldError is one entry of a validation error's details.
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func fieldErrors(errs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// newValidator reports fields by their JSON or query names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindJSON decodes the request body into dst and validates it.
func (s *Server) bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return &badRequest{fmt.Errorf("invalid JSON body: %w", err)}
	}
	return s.validate.Struct(dst)
}

// bindQuery decodes the query string into dst and validates it.
func (s *Server) bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return &badRequest{fmt.Errorf("invalid query: %w", err)}
	}
	return s.validate.Struct(dst)
}

// pageQuery is the pagination part of list queries.
type pageQuery struct {
	Page     int `form:"page" validate:"gte=1"`
	PageSize int `form:"pageSize" validate:"gte=1,lte=100"`
}

func defaultPage() pageQuery {
	return pageQuery{Page: 1, PageSize: store.DefaultPageSize}
}

func (q pageQuery) page() store.Page {
	return store.Page{Number: q.Page, Size: q.PageSize}
}

// decodeChanges reads a JSON object of field changes. Numbers stay
// json.Number so no precision is lost before the store sees them.
func decodeChanges(c *gin.Context) (map[string]any, error) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var changes map[string]any
	if err := dec.Decode(&changes); err != nil {
		return nil, &badRequest{fmt.Errorf("invalid JSON body: %w", err)}
	}
	delete(changes, csrfBodyField)
	return changes, nil
}
