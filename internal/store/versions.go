package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateProfileVersion freezes the current public profile of a candidate
// (candidate, affiliations, statements, cited sources) as canonical JSON
// and appends it with the next version number for that candidate.
func (s *Store) CreateProfileVersion(ctx context.Context, candidateID string, changeNote *string, actor string) (record.ProfileVersion, error) {
	c, err := s.GetCandidate(ctx, candidateID)
	if err != nil {
		return record.ProfileVersion{}, fmt.Errorf("create profile version: %w", err)
	}
	profile, err := s.profile(ctx, c)
	if err != nil {
		return record.ProfileVersion{}, fmt.Errorf("create profile version: %w", err)
	}

	v, err := record.CanonicalValue(profile)
	if err != nil {
		return record.ProfileVersion{}, fmt.Errorf("create profile version: %w", err)
	}
	snapshot, err := record.MarshalCanonical(v)
	if err != nil {
		return record.ProfileVersion{}, fmt.Errorf("create profile version: %w", err)
	}

	var last int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version_number), 0) FROM profile_versions WHERE candidate_id = ?
	`, candidateID).Scan(&last); err != nil {
		return record.ProfileVersion{}, fmt.Errorf("create profile version: %w", err)
	}

	pv := record.ProfileVersion{
		ID:            record.NewID(),
		CandidateID:   candidateID,
		VersionNumber: last + 1,
		Snapshot:      json.RawMessage(snapshot),
		SnapshotHash:  record.SnapshotHash(snapshot),
		ChangeNote:    changeNote,
		CreatedBy:     actor,
		CreatedAt:     s.now(),
	}
	err = s.insert(ctx, guard.KindProfileVersion, Changes{
		"id":            pv.ID,
		"candidateId":   pv.CandidateID,
		"versionNumber": pv.VersionNumber,
		"snapshot":      pv.Snapshot,
		"snapshotHash":  pv.SnapshotHash,
		"changeNote":    pv.ChangeNote,
		"createdBy":     pv.CreatedBy,
		"createdAt":     pv.CreatedAt,
	})
	if err != nil {
		return record.ProfileVersion{}, err
	}
	return pv, nil
}

// ListProfileVersions returns a candidate's versions, newest first.
func (s *Store) ListProfileVersions(ctx context.Context, candidateID string) ([]record.ProfileVersion, error) {
	versions, err := queryAll(ctx, s.db, scanProfileVersion, `
		SELECT id, candidate_id, version_number, snapshot, snapshot_hash, change_note, created_by, created_at
		FROM profile_versions
		WHERE candidate_id = ?
		ORDER BY version_number DESC
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list profile versions: %w", err)
	}
	return versions, nil
}

func scanProfileVersion(row scanner) (record.ProfileVersion, error) {
	var pv record.ProfileVersion
	var snapshot, createdAt string
	var note sql.NullString
	if err := row.Scan(&pv.ID, &pv.CandidateID, &pv.VersionNumber, &snapshot, &pv.SnapshotHash, &note,
		&pv.CreatedBy, &createdAt); err != nil {
		return record.ProfileVersion{}, err
	}
	t, err := record.ParseTime(createdAt)
	if err != nil {
		return record.ProfileVersion{}, fmt.Errorf("scan profile version: %w", err)
	}
	pv.CreatedAt = t
	pv.Snapshot = json.RawMessage(snapshot)
	pv.ChangeNote = nullString(note)
	return pv, nil
}
