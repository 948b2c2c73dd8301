package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateSource inserts an archived source. ID, timestamps and the archival
// fingerprint are assigned.
func (s *Store) CreateSource(ctx context.Context, src record.Source) (record.Source, error) {
	src.ID = record.NewID()
	src.ArchivedAt = src.ArchivedAt.UTC()
	fp, err := record.SourceFingerprint(src)
	if err != nil {
		return record.Source{}, fmt.Errorf("create source: %w", err)
	}
	src.Fingerprint = fp
	now := s.now()
	src.CreatedAt, src.UpdatedAt = now, now

	err = s.insert(ctx, guard.KindSource, Changes{
		"id":            src.ID,
		"title":         src.Title,
		"publisher":     src.Publisher,
		"originUrl":     src.OriginURL,
		"archivedUrl":   src.ArchivedURL,
		"archivedAt":    src.ArchivedAt,
		"archiveMethod": src.ArchiveMethod,
		"contentType":   src.ContentType,
		"checksum":      src.Checksum,
		"notes":         src.Notes,
		"fingerprint":   src.Fingerprint,
		"createdAt":     src.CreatedAt,
		"updatedAt":     src.UpdatedAt,
	})
	if err != nil {
		return record.Source{}, err
	}
	return src, nil
}

// UpdateSourceMetadata applies changes to a source and returns the result.
// Changes touching the archive fields are rejected by the guard with a
// FINGERPRINT_FIELD_MUTATION violation.
func (s *Store) UpdateSourceMetadata(ctx context.Context, id string, changes Changes) (record.Source, error) {
	if err := s.Update(ctx, guard.KindSource, id, changes); err != nil {
		return record.Source{}, err
	}
	return s.GetSource(ctx, id)
}

// VerifySource recomputes the archival fingerprint of a stored source and
// reports whether it still matches the stored one. A mismatch means the
// archive fields were changed outside the store.
func (s *Store) VerifySource(ctx context.Context, id string) (record.Source, bool, error) {
	src, err := s.GetSource(ctx, id)
	if err != nil {
		return record.Source{}, false, err
	}
	ok, err := record.VerifySourceFingerprint(src)
	if err != nil {
		return src, false, fmt.Errorf("verify source %s: %w", id, err)
	}
	return src, ok, nil
}

// DeleteSource asks to remove a source. Sources are append-only, so under
// the default policy this always returns a DELETE_OF_IMMUTABLE_RECORD
// violation.
func (s *Store) DeleteSource(ctx context.Context, id string) error {
	return s.Delete(ctx, guard.KindSource, id)
}

const sourceColumns = `id, title, publisher, origin_url, archived_url, archived_at, archive_method,
	content_type, checksum, notes, fingerprint, created_at, updated_at`

// GetSource returns a source by id.
func (s *Store) GetSource(ctx context.Context, id string) (record.Source, error) {
	src, err := scanSource(s.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Source{}, fmt.Errorf("get source %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.Source{}, fmt.Errorf("get source: %w", err)
	}
	return src, nil
}

// ListSources returns a page of sources, most recently archived first.
func (s *Store) ListSources(ctx context.Context, page Page) ([]record.Source, int, error) {
	page = page.Normalize()
	total, err := s.count(ctx, "sources", conditions{})
	if err != nil {
		return nil, 0, fmt.Errorf("list sources: %w", err)
	}
	sources, err := queryAll(ctx, s.db, scanSource, `
		SELECT `+sourceColumns+` FROM sources
		ORDER BY archived_at DESC, id ASC
		LIMIT ? OFFSET ?
	`, page.Size, page.offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list sources: %w", err)
	}
	return sources, total, nil
}

func scanSource(row scanner) (record.Source, error) {
	var src record.Source
	var archivedAt, createdAt, updatedAt string
	var contentType, checksum, notes sql.NullString
	if err := row.Scan(&src.ID, &src.Title, &src.Publisher, &src.OriginURL, &src.ArchivedURL, &archivedAt,
		&src.ArchiveMethod, &contentType, &checksum, &notes, &src.Fingerprint, &createdAt, &updatedAt); err != nil {
		return record.Source{}, err
	}
	var err error
	if src.ArchivedAt, err = record.ParseTime(archivedAt); err != nil {
		return record.Source{}, fmt.Errorf("scan source: %w", err)
	}
	if src.CreatedAt, err = record.ParseTime(createdAt); err != nil {
		return record.Source{}, fmt.Errorf("scan source: %w", err)
	}
	if src.UpdatedAt, err = record.ParseTime(updatedAt); err != nil {
		return record.Source{}, fmt.Errorf("scan source: %w", err)
	}
	src.ContentType, src.Checksum, src.Notes = nullString(contentType), nullString(checksum), nullString(notes)
	return src, nil
}
