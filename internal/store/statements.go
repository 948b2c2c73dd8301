package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateStatement appends a statement. ID and CreatedAt are assigned.
// Statements cannot be edited or removed afterwards.
func (s *Store) CreateStatement(ctx context.Context, st record.Statement) (record.Statement, error) {
	st.ID = record.NewID()
	st.CreatedAt = s.now()
	err := s.insert(ctx, guard.KindStatement, Changes{
		"id":          st.ID,
		"candidateId": st.CandidateID,
		"topicId":     st.TopicID,
		"kind":        st.Kind,
		"summaryAr":   st.SummaryAr,
		"summaryEn":   st.SummaryEn,
		"summaryFr":   st.SummaryFr,
		"occurredAt":  st.OccurredAt,
		"sourceId":    st.SourceID,
		"createdAt":   st.CreatedAt,
	})
	if err != nil {
		return record.Statement{}, err
	}
	return st, nil
}

// CreateAffiliation appends an affiliation. ID and CreatedAt are assigned.
// Affiliations cannot be edited or removed afterwards; a change of party is
// recorded as a new affiliation.
func (s *Store) CreateAffiliation(ctx context.Context, a record.Affiliation) (record.Affiliation, error) {
	a.ID = record.NewID()
	a.CreatedAt = s.now()
	err := s.insert(ctx, guard.KindAffiliation, Changes{
		"id":          a.ID,
		"candidateId": a.CandidateID,
		"type":        a.Type,
		"nameAr":      a.NameAr,
		"nameEn":      a.NameEn,
		"nameFr":      a.NameFr,
		"startDate":   a.StartDate,
		"endDate":     a.EndDate,
		"notes":       a.Notes,
		"sourceId":    a.SourceID,
		"createdAt":   a.CreatedAt,
	})
	if err != nil {
		return record.Affiliation{}, err
	}
	return a, nil
}

// candidateStatements returns a candidate's statements with topic and
// source citation, newest first. Undated statements sort last.
func (s *Store) candidateStatements(ctx context.Context, candidateID string) ([]record.Statement, error) {
	statements, err := queryAll(ctx, s.db, scanStatement, `
		SELECT st.id, st.candidate_id, st.topic_id, st.kind, st.summary_ar, st.summary_en, st.summary_fr,
			st.occurred_at, st.source_id, st.created_at,
			t.id, t.slug, t.name_ar, t.name_en, t.name_fr,
			src.id, src.title, src.archived_url, src.archived_at
		FROM statements st
		JOIN topics t ON t.id = st.topic_id
		JOIN sources src ON src.id = st.source_id
		WHERE st.candidate_id = ?
		ORDER BY st.occurred_at IS NULL, st.occurred_at DESC, st.id ASC
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	return statements, nil
}

// candidateAffiliations returns a candidate's affiliations with source
// citation, latest start date first.
func (s *Store) candidateAffiliations(ctx context.Context, candidateID string) ([]record.Affiliation, error) {
	affiliations, err := queryAll(ctx, s.db, scanAffiliation, `
		SELECT a.id, a.candidate_id, a.type, a.name_ar, a.name_en, a.name_fr, a.start_date, a.end_date,
			a.notes, a.source_id, a.created_at,
			src.id, src.title, src.archived_url, src.archived_at
		FROM affiliations a
		JOIN sources src ON src.id = a.source_id
		WHERE a.candidate_id = ?
		ORDER BY a.start_date DESC, a.id ASC
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list affiliations: %w", err)
	}
	return affiliations, nil
}

func scanStatement(row scanner) (record.Statement, error) {
	var st record.Statement
	var ar, en, fr, occurredAt sql.NullString
	var createdAt, archivedAt string
	var topic record.Topic
	var ref record.SourceRef
	if err := row.Scan(&st.ID, &st.CandidateID, &st.TopicID, &st.Kind, &ar, &en, &fr, &occurredAt,
		&st.SourceID, &createdAt, &topic.ID, &topic.Slug, &topic.NameAr, &topic.NameEn, &topic.NameFr,
		&ref.ID, &ref.Title, &ref.ArchivedURL, &archivedAt); err != nil {
		return record.Statement{}, err
	}
	st.SummaryAr, st.SummaryEn, st.SummaryFr = nullString(ar), nullString(en), nullString(fr)

	var err error
	if st.OccurredAt, err = nullTime(occurredAt); err != nil {
		return record.Statement{}, fmt.Errorf("scan statement: %w", err)
	}
	if st.CreatedAt, err = record.ParseTime(createdAt); err != nil {
		return record.Statement{}, fmt.Errorf("scan statement: %w", err)
	}
	if ref.ArchivedAt, err = record.ParseTime(archivedAt); err != nil {
		return record.Statement{}, fmt.Errorf("scan statement: %w", err)
	}
	st.Topic = &topic
	st.Source = &ref
	return st, nil
}

func scanAffiliation(row scanner) (record.Affiliation, error) {
	var a record.Affiliation
	var startDate, createdAt, archivedAt string
	var endDate, notes sql.NullString
	var ref record.SourceRef
	if err := row.Scan(&a.ID, &a.CandidateID, &a.Type, &a.NameAr, &a.NameEn, &a.NameFr, &startDate, &endDate,
		&notes, &a.SourceID, &createdAt, &ref.ID, &ref.Title, &ref.ArchivedURL, &archivedAt); err != nil {
		return record.Affiliation{}, err
	}
	a.Notes = nullString(notes)

	var err error
	if a.StartDate, err = record.ParseTime(startDate); err != nil {
		return record.Affiliation{}, fmt.Errorf("scan affiliation: %w", err)
	}
	if a.EndDate, err = nullTime(endDate); err != nil {
		return record.Affiliation{}, fmt.Errorf("scan affiliation: %w", err)
	}
	if a.CreatedAt, err = record.ParseTime(createdAt); err != nil {
		return record.Affiliation{}, fmt.Errorf("scan affiliation: %w", err)
	}
	if ref.ArchivedAt, err = record.ParseTime(archivedAt); err != nil {
		return record.Affiliation{}, fmt.Errorf("scan affiliation: %w", err)
	}
	a.Source = &ref
	return a, nil
}
