package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateDistrict inserts a district. ID is assigned.
func (s *Store) CreateDistrict(ctx context.Context, d record.District) (record.District, error) {
	d.ID = record.NewID()
	err := s.insert(ctx, guard.KindDistrict, Changes{
		"id":        d.ID,
		"cycleId":   d.CycleID,
		"nameAr":    d.NameAr,
		"nameEn":    d.NameEn,
		"nameFr":    d.NameFr,
		"seatCount": d.SeatCount,
		"notes":     d.Notes,
	})
	if err != nil {
		return record.District{}, err
	}
	return d, nil
}

const districtColumns = `
	d.id, d.cycle_id, d.name_ar, d.name_en, d.name_fr, d.seat_count, d.notes, c.year,
	(SELECT COUNT(*) FROM candidates x WHERE x.district_id = d.id),
	(SELECT COUNT(*) FROM electoral_lists x WHERE x.district_id = d.id)`

// ListDistricts returns a page of districts ordered by Arabic name, with
// candidate and list counts and the cycle year. cycleID may be empty.
func (s *Store) ListDistricts(ctx context.Context, cycleID string, page Page) ([]record.District, int, error) {
	page = page.Normalize()
	var where conditions
	where.eq("d.cycle_id", cycleID)
	clause, args := where.sql()

	total, err := s.count(ctx, "districts d", where)
	if err != nil {
		return nil, 0, fmt.Errorf("list districts: %w", err)
	}

	districts, err := queryAll(ctx, s.db, scanDistrict, `
		SELECT`+districtColumns+`
		FROM districts d JOIN election_cycles c ON c.id = d.cycle_id`+clause+`
		ORDER BY d.name_ar ASC, d.id ASC
		LIMIT ? OFFSET ?
	`, append(args, page.Size, page.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list districts: %w", err)
	}
	return districts, total, nil
}

// GetDistrict returns a district with its candidates and lists.
func (s *Store) GetDistrict(ctx context.Context, id string) (record.DistrictDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+districtColumns+`
		FROM districts d JOIN election_cycles c ON c.id = d.cycle_id
		WHERE d.id = ?
	`, id)
	d, err := scanDistrict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.DistrictDetail{}, fmt.Errorf("get district %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.DistrictDetail{}, fmt.Errorf("get district: %w", err)
	}
	d.Count = nil

	candidates, err := queryAll(ctx, s.db, scanCandidateSummary, `
		SELECT `+candidateSummaryColumns+`
		FROM candidates WHERE district_id = ?
		ORDER BY full_name_ar ASC, id ASC
	`, id)
	if err != nil {
		return record.DistrictDetail{}, fmt.Errorf("get district candidates: %w", err)
	}

	lists, err := queryAll(ctx, s.db, scanList, `
		SELECT`+listColumns+`
		FROM electoral_lists l
		JOIN districts d ON d.id = l.district_id
		JOIN election_cycles c ON c.id = l.cycle_id
		WHERE l.district_id = ?
		ORDER BY l.name_ar ASC, l.id ASC
	`, id)
	if err != nil {
		return record.DistrictDetail{}, fmt.Errorf("get district lists: %w", err)
	}
	for i := range lists {
		lists[i].District = nil
		lists[i].Cycle = nil
	}

	return record.DistrictDetail{District: d, Candidates: candidates, Lists: lists}, nil
}

func scanDistrict(row scanner) (record.District, error) {
	var d record.District
	var notes sql.NullString
	var year, candidates, lists int
	if err := row.Scan(&d.ID, &d.CycleID, &d.NameAr, &d.NameEn, &d.NameFr, &d.SeatCount, &notes,
		&year, &candidates, &lists); err != nil {
		return record.District{}, err
	}
	d.Notes = nullString(notes)
	d.Cycle = &record.CycleRef{Year: year}
	d.Count = &record.Counts{Candidates: &candidates, Lists: &lists}
	return d, nil
}
