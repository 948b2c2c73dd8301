package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateList inserts an electoral list. ID is assigned; an empty Status
// becomes DRAFT.
func (s *Store) CreateList(ctx context.Context, l record.ElectoralList) (record.ElectoralList, error) {
	l.ID = record.NewID()
	if l.Status == "" {
		l.Status = record.ListDraft
	}
	err := s.insert(ctx, guard.KindElectoralList, Changes{
		"id":          l.ID,
		"cycleId":     l.CycleID,
		"districtId":  l.DistrictID,
		"nameAr":      l.NameAr,
		"nameEn":      l.NameEn,
		"nameFr":      l.NameFr,
		"status":      l.Status,
		"announcedAt": l.AnnouncedAt,
		"notes":       l.Notes,
	})
	if err != nil {
		return record.ElectoralList{}, err
	}
	return l, nil
}

// ListFilter narrows ListLists. Empty fields are ignored.
type ListFilter struct {
	CycleID    string
	DistrictID string
	Status     record.ListStatus
}

const listColumns = `
	l.id, l.cycle_id, l.district_id, l.name_ar, l.name_en, l.name_fr, l.status, l.announced_at, l.notes,
	d.id, d.name_ar, d.name_en, d.name_fr, d.seat_count, c.year,
	(SELECT COUNT(*) FROM candidates x WHERE x.current_list_id = l.id)`

// ListLists returns a page of electoral lists ordered by Arabic name.
func (s *Store) ListLists(ctx context.Context, f ListFilter, page Page) ([]record.ElectoralList, int, error) {
	page = page.Normalize()
	var where conditions
	where.eq("l.cycle_id", f.CycleID)
	where.eq("l.district_id", f.DistrictID)
	where.eq("l.status", string(f.Status))
	clause, args := where.sql()

	total, err := s.count(ctx, "electoral_lists l", where)
	if err != nil {
		return nil, 0, fmt.Errorf("list lists: %w", err)
	}

	lists, err := queryAll(ctx, s.db, scanList, `
		SELECT`+listColumns+`
		FROM electoral_lists l
		JOIN districts d ON d.id = l.district_id
		JOIN election_cycles c ON c.id = l.cycle_id`+clause+`
		ORDER BY l.name_ar ASC, l.id ASC
		LIMIT ? OFFSET ?
	`, append(args, page.Size, page.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lists: %w", err)
	}
	for i := range lists {
		lists[i].Cycle = nil
		lists[i].District.SeatCount = nil
	}
	return lists, total, nil
}

// GetList returns a list with its district, cycle year and candidates.
func (s *Store) GetList(ctx context.Context, id string) (record.ListDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+listColumns+`
		FROM electoral_lists l
		JOIN districts d ON d.id = l.district_id
		JOIN election_cycles c ON c.id = l.cycle_id
		WHERE l.id = ?
	`, id)
	l, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.ListDetail{}, fmt.Errorf("get list %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.ListDetail{}, fmt.Errorf("get list: %w", err)
	}
	l.Count = nil

	candidates, err := queryAll(ctx, s.db, scanCandidateSummary, `
		SELECT `+candidateSummaryColumns+`
		FROM candidates WHERE current_list_id = ?
		ORDER BY full_name_ar ASC, id ASC
	`, id)
	if err != nil {
		return record.ListDetail{}, fmt.Errorf("get list candidates: %w", err)
	}
	return record.ListDetail{ElectoralList: l, Candidates: candidates}, nil
}

func scanList(row scanner) (record.ElectoralList, error) {
	var l record.ElectoralList
	var announcedAt, notes sql.NullString
	var d record.Ref
	var seats, year, candidates int
	if err := row.Scan(&l.ID, &l.CycleID, &l.DistrictID, &l.NameAr, &l.NameEn, &l.NameFr, &l.Status,
		&announcedAt, &notes, &d.ID, &d.NameAr, &d.NameEn, &d.NameFr, &seats, &year, &candidates); err != nil {
		return record.ElectoralList{}, err
	}
	at, err := nullTime(announcedAt)
	if err != nil {
		return record.ElectoralList{}, fmt.Errorf("scan list: %w", err)
	}
	l.AnnouncedAt = at
	l.Notes = nullString(notes)
	d.SeatCount = &seats
	l.District = &d
	l.Cycle = &record.CycleRef{Year: year}
	l.Count = &record.Counts{Candidates: &candidates}
	return l, nil
}
