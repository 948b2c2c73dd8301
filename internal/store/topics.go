package store

import (
	"context"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateTopic inserts a topic. ID is assigned; an empty Slug is derived
// from the English name.
func (s *Store) CreateTopic(ctx context.Context, t record.Topic) (record.Topic, error) {
	t.ID = record.NewID()
	if t.Slug == "" {
		t.Slug = record.SanitizeSlug(t.NameEn)
	}
	err := s.insert(ctx, guard.KindTopic, Changes{
		"id":     t.ID,
		"slug":   t.Slug,
		"nameAr": t.NameAr,
		"nameEn": t.NameEn,
		"nameFr": t.NameFr,
	})
	if err != nil {
		return record.Topic{}, err
	}
	return t, nil
}

// ListTopics returns every topic ordered by slug.
func (s *Store) ListTopics(ctx context.Context) ([]record.Topic, error) {
	topics, err := queryAll(ctx, s.db, scanTopic, `
		SELECT id, slug, name_ar, name_en, name_fr FROM topics ORDER BY slug ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

func scanTopic(row scanner) (record.Topic, error) {
	var t record.Topic
	if err := row.Scan(&t.ID, &t.Slug, &t.NameAr, &t.NameEn, &t.NameFr); err != nil {
		return record.Topic{}, err
	}
	return t, nil
}
