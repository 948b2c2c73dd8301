package store

import (
	"context"
	"fmt"

	"github.com/roach88/daleel/internal/record"
)

// ListParties groups PARTY affiliations by name. CandidateCount counts the
// affiliation rows of each group, and Slug is derived from the English
// name.
func (s *Store) ListParties(ctx context.Context) ([]record.Party, error) {
	parties, err := queryAll(ctx, s.db, func(row scanner) (record.Party, error) {
		var p record.Party
		if err := row.Scan(&p.NameAr, &p.NameEn, &p.NameFr, &p.CandidateCount); err != nil {
			return record.Party{}, err
		}
		p.Slug = record.SanitizeSlug(p.NameEn)
		return p, nil
	}, `
		SELECT name_ar, name_en, name_fr, COUNT(candidate_id)
		FROM affiliations
		WHERE type = ?
		GROUP BY name_ar, name_en, name_fr
		ORDER BY name_ar ASC
	`, string(record.AffiliationParty))
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	return parties, nil
}

// GetParty returns the party whose English name slugs to slug, with every
// candidate holding a PARTY affiliation under that name.
func (s *Store) GetParty(ctx context.Context, slug string) (record.PartyDetail, error) {
	names, err := queryAll(ctx, s.db, func(row scanner) (record.Party, error) {
		var p record.Party
		err := row.Scan(&p.NameAr, &p.NameEn, &p.NameFr)
		return p, err
	}, `
		SELECT name_ar, name_en, name_fr
		FROM affiliations
		WHERE type = ?
		GROUP BY name_en
		ORDER BY name_en ASC
	`, string(record.AffiliationParty))
	if err != nil {
		return record.PartyDetail{}, fmt.Errorf("get party: %w", err)
	}

	var party *record.Party
	for i := range names {
		if record.SanitizeSlug(names[i].NameEn) == slug {
			party = &names[i]
			break
		}
	}
	if party == nil {
		return record.PartyDetail{}, fmt.Errorf("get party %s: %w", slug, ErrNotFound)
	}
	party.Slug = slug

	candidates, err := queryAll(ctx, s.db, scanCandidate, `
		SELECT`+candidateColumns+candidateFrom+`
		WHERE EXISTS (
			SELECT 1 FROM affiliations a
			WHERE a.candidate_id = k.id AND a.type = ? AND a.name_en = ?
		)
		ORDER BY k.full_name_ar ASC, k.id ASC
	`, string(record.AffiliationParty), party.NameEn)
	if err != nil {
		return record.PartyDetail{}, fmt.Errorf("get party candidates: %w", err)
	}
	for i := range candidates {
		candidates[i].District.SeatCount = nil
		if candidates[i].CurrentList != nil {
			candidates[i].CurrentList.Status = ""
		}
	}
	party.CandidateCount = len(candidates)

	return record.PartyDetail{Party: *party, Candidates: candidates}, nil
}
