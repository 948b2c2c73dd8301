package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a list result. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps p into the accepted range, filling defaults.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryAll runs query and scans every row with scan.
// Returns an empty slice (not nil) when nothing matches.
func queryAll[T any](ctx context.Context, db *sql.DB, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// count runs SELECT COUNT(*) over from+where.
func (s *Store) count(ctx context.Context, from string, where conditions) (int, error) {
	clause, args := where.sql()
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+from+clause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", from, err)
	}
	return n, nil
}

// conditions accumulates AND-ed WHERE terms for read queries.
type conditions struct {
	terms []string
	args  []any
}

func (c *conditions) eq(column, value string) {
	if value == "" {
		return
	}
	c.terms = append(c.terms, column+" = ?")
	c.args = append(c.args, value)
}

func (c *conditions) add(term string, args ...any) {
	c.terms = append(c.terms, term)
	c.args = append(c.args, args...)
}

func (c conditions) sql() (string, []any) {
	if len(c.terms) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(c.terms, " AND "), c.args
}

// likePattern builds a LIKE pattern matching q anywhere, escaping LIKE
// metacharacters with a backslash.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
