package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateCandidate inserts a candidate. ID and timestamps are assigned; an
// empty Slug is derived from the English name.
func (s *Store) CreateCandidate(ctx context.Context, c record.Candidate) (record.Candidate, error) {
	c.ID = record.NewID()
	if c.Slug == "" {
		c.Slug = record.SanitizeSlug(c.FullNameEn)
	}
	if c.Status == "" {
		c.Status = record.CandidatePotential
	}
	if c.PlaceholderPhotoStyle == "" {
		c.PlaceholderPhotoStyle = record.PhotoGeometric
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now

	err := s.insert(ctx, guard.KindCandidate, Changes{
		"id":                    c.ID,
		"cycleId":               c.CycleID,
		"districtId":            c.DistrictID,
		"currentListId":         c.CurrentListID,
		"fullNameAr":            c.FullNameAr,
		"fullNameEn":            c.FullNameEn,
		"fullNameFr":            c.FullNameFr,
		"slug":                  c.Slug,
		"status":                c.Status,
		"placeholderPhotoStyle": c.PlaceholderPhotoStyle,
		"createdAt":             c.CreatedAt,
		"updatedAt":             c.UpdatedAt,
	})
	if err != nil {
		return record.Candidate{}, err
	}
	return c, nil
}

// UpdateCandidateStatus changes a candidate's electoral status.
func (s *Store) UpdateCandidateStatus(ctx context.Context, id string, status record.CandidateStatus) error {
	return s.Update(ctx, guard.KindCandidate, id, Changes{"status": status})
}

// AssignCandidateToList moves a candidate onto a list. An empty listID
// clears the assignment.
func (s *Store) AssignCandidateToList(ctx context.Context, id, listID string) error {
	var list *string
	if listID != "" {
		list = &listID
	}
	return s.Update(ctx, guard.KindCandidate, id, Changes{"currentListId": list})
}

// CandidateFilter narrows ListCandidates. Empty fields are ignored. Query
// matches any of the three names or the slug, ignoring case (Unicode
// folding, see foldText).
type CandidateFilter struct {
	CycleID    string
	DistrictID string
	ListID     string
	Status     record.CandidateStatus
	Query      string
}

const candidateSummaryColumns = `id, slug, full_name_ar, full_name_en, full_name_fr, status, placeholder_photo_style`

const candidateColumns = `
	k.id, k.cycle_id, k.district_id, k.current_list_id, k.full_name_ar, k.full_name_en, k.full_name_fr,
	k.slug, k.status, k.placeholder_photo_style, k.created_at, k.updated_at,
	d.id, d.name_ar, d.name_en, d.name_fr, d.seat_count,
	l.id, l.name_ar, l.name_en, l.name_fr, l.status`

const candidateFrom = `
	FROM candidates k
	JOIN districts d ON d.id = k.district_id
	LEFT JOIN electoral_lists l ON l.id = k.current_list_id`

// ListCandidates returns a page of candidates ordered by Arabic name.
func (s *Store) ListCandidates(ctx context.Context, f CandidateFilter, page Page) ([]record.Candidate, int, error) {
	page = page.Normalize()
	var where conditions
	where.eq("k.cycle_id", f.CycleID)
	where.eq("k.district_id", f.DistrictID)
	where.eq("k.current_list_id", f.ListID)
	where.eq("k.status", string(f.Status))
	if q := strings.TrimSpace(f.Query); q != "" {
		p := likePattern(foldText(q))
		where.add(`(fold(k.full_name_ar) LIKE ? ESCAPE '\' OR fold(k.full_name_en) LIKE ? ESCAPE '\'
			OR fold(k.full_name_fr) LIKE ? ESCAPE '\' OR fold(k.slug) LIKE ? ESCAPE '\')`, p, p, p, p)
	}
	clause, args := where.sql()

	total, err := s.count(ctx, "candidates k", where)
	if err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}

	candidates, err := queryAll(ctx, s.db, scanCandidate, `
		SELECT`+candidateColumns+candidateFrom+clause+`
		ORDER BY k.full_name_ar ASC, k.id ASC
		LIMIT ? OFFSET ?
	`, append(args, page.Size, page.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}
	for i := range candidates {
		candidates[i].District.SeatCount = nil
		if candidates[i].CurrentList != nil {
			candidates[i].CurrentList.Status = ""
		}
	}
	return candidates, total, nil
}

// GetCandidate returns a candidate by id.
func (s *Store) GetCandidate(ctx context.Context, id string) (record.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `SELECT`+candidateColumns+candidateFrom+` WHERE k.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Candidate{}, fmt.Errorf("get candidate %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

// GetCandidateBySlug returns the public profile of a candidate: district,
// current list, affiliations (newest start first), statements (newest
// first) and every source they cite.
func (s *Store) GetCandidateBySlug(ctx context.Context, slug string) (record.CandidateProfile, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `SELECT`+candidateColumns+candidateFrom+` WHERE k.slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return record.CandidateProfile{}, fmt.Errorf("get candidate %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return record.CandidateProfile{}, fmt.Errorf("get candidate: %w", err)
	}
	return s.profile(ctx, c)
}

func (s *Store) profile(ctx context.Context, c record.Candidate) (record.CandidateProfile, error) {
	affiliations, err := s.candidateAffiliations(ctx, c.ID)
	if err != nil {
		return record.CandidateProfile{}, err
	}
	statements, err := s.candidateStatements(ctx, c.ID)
	if err != nil {
		return record.CandidateProfile{}, err
	}

	sources, err := queryAll(ctx, s.db, scanSource, `
		SELECT `+sourceColumns+` FROM sources WHERE id IN (
			SELECT source_id FROM affiliations WHERE candidate_id = ?
			UNION
			SELECT source_id FROM statements WHERE candidate_id = ?
		)
		ORDER BY archived_at DESC, id ASC
	`, c.ID, c.ID)
	if err != nil {
		return record.CandidateProfile{}, fmt.Errorf("get candidate sources: %w", err)
	}

	return record.CandidateProfile{
		Candidate:    c,
		Affiliations: affiliations,
		Statements:   statements,
		Sources:      sources,
	}, nil
}

func scanCandidateSummary(row scanner) (record.CandidateSummary, error) {
	var c record.CandidateSummary
	if err := row.Scan(&c.ID, &c.Slug, &c.FullNameAr, &c.FullNameEn, &c.FullNameFr, &c.Status,
		&c.PlaceholderPhotoStyle); err != nil {
		return record.CandidateSummary{}, err
	}
	return c, nil
}

func scanCandidate(row scanner) (record.Candidate, error) {
	var c record.Candidate
	var createdAt, updatedAt string
	var currentList sql.NullString
	var d record.Ref
	var seats int
	var lID, lAr, lEn, lFr, lStatus sql.NullString
	if err := row.Scan(&c.ID, &c.CycleID, &c.DistrictID, &currentList, &c.FullNameAr, &c.FullNameEn,
		&c.FullNameFr, &c.Slug, &c.Status, &c.PlaceholderPhotoStyle, &createdAt, &updatedAt,
		&d.ID, &d.NameAr, &d.NameEn, &d.NameFr, &seats,
		&lID, &lAr, &lEn, &lFr, &lStatus); err != nil {
		return record.Candidate{}, err
	}

	var err error
	if c.CreatedAt, err = record.ParseTime(createdAt); err != nil {
		return record.Candidate{}, fmt.Errorf("scan candidate: %w", err)
	}
	if c.UpdatedAt, err = record.ParseTime(updatedAt); err != nil {
		return record.Candidate{}, fmt.Errorf("scan candidate: %w", err)
	}
	c.CurrentListID = nullString(currentList)
	d.SeatCount = &seats
	c.District = &d
	if lID.Valid {
		c.CurrentList = &record.Ref{ID: lID.String, NameAr: lAr.String, NameEn: lEn.String, NameFr: lFr.String,
			Status: lStatus.String}
	}
	return c, nil
}
