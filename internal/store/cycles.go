package store

import (
	"context"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateCycle inserts an election cycle. ID and CreatedAt are assigned.
func (s *Store) CreateCycle(ctx context.Context, c record.Cycle) (record.Cycle, error) {
	c.ID = record.NewID()
	c.CreatedAt = s.now()
	err := s.insert(ctx, guard.KindElectionCycle, Changes{
		"id":        c.ID,
		"name":      c.Name,
		"year":      c.Year,
		"isActive":  c.IsActive,
		"createdAt": c.CreatedAt,
	})
	if err != nil {
		return record.Cycle{}, err
	}
	return c, nil
}

// ListCycles returns every cycle, most recent year first.
func (s *Store) ListCycles(ctx context.Context) ([]record.Cycle, error) {
	cycles, err := queryAll(ctx, s.db, scanCycle, `
		SELECT id, name, year, is_active, created_at
		FROM election_cycles
		ORDER BY year DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

func scanCycle(row scanner) (record.Cycle, error) {
	var c record.Cycle
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Year, &c.IsActive, &createdAt); err != nil {
		return record.Cycle{}, fmt.Errorf("scan cycle: %w", err)
	}
	t, err := record.ParseTime(createdAt)
	if err != nil {
		return record.Cycle{}, fmt.Errorf("scan cycle: %w", err)
	}
	c.CreatedAt = t
	return c, nil
}
