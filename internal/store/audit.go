package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// AppendAudit appends an audit log entry. ID and CreatedAt are assigned.
// Metadata is stored as canonical JSON when it has no floats, compacted
// otherwise; nil metadata becomes {}.
func (s *Store) AppendAudit(ctx context.Context, e record.AuditLog) (record.AuditLog, error) {
	e.ID = record.NewID()
	e.CreatedAt = s.now()

	meta, err := normalizeMetadata(e.Metadata)
	if err != nil {
		return record.AuditLog{}, fmt.Errorf("append audit: %w", err)
	}
	e.Metadata = meta

	err = s.insert(ctx, guard.KindAuditLog, Changes{
		"id":          e.ID,
		"actorUserId": e.ActorUserID,
		"action":      e.Action,
		"entityType":  e.EntityType,
		"entityId":    e.EntityID,
		"metadata":    e.Metadata,
		"ip":          e.IP,
		"userAgent":   e.UserAgent,
		"createdAt":   e.CreatedAt,
	})
	if err != nil {
		return record.AuditLog{}, err
	}
	return e, nil
}

func normalizeMetadata(raw json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if v, err := record.CanonicalValue(raw); err == nil {
		if canonical, err := record.MarshalCanonical(v); err == nil {
			return canonical, nil
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return buf.Bytes(), nil
}

// ListAudit returns a page of audit entries, newest first.
func (s *Store) ListAudit(ctx context.Context, page Page) ([]record.AuditLog, int, error) {
	page = page.Normalize()
	total, err := s.count(ctx, "audit_logs", conditions{})
	if err != nil {
		return nil, 0, fmt.Errorf("list audit: %w", err)
	}
	entries, err := queryAll(ctx, s.db, scanAudit, `
		SELECT id, actor_user_id, action, entity_type, entity_id, metadata, ip, user_agent, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, page.Size, page.offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list audit: %w", err)
	}
	return entries, total, nil
}

func scanAudit(row scanner) (record.AuditLog, error) {
	var e record.AuditLog
	var entityID, ip, userAgent sql.NullString
	var metadata, createdAt string
	if err := row.Scan(&e.ID, &e.ActorUserID, &e.Action, &e.EntityType, &entityID, &metadata, &ip,
		&userAgent, &createdAt); err != nil {
		return record.AuditLog{}, err
	}
	t, err := record.ParseTime(createdAt)
	if err != nil {
		return record.AuditLog{}, fmt.Errorf("scan audit: %w", err)
	}
	e.CreatedAt = t
	e.EntityID, e.IP, e.UserAgent = nullString(entityID), nullString(ip), nullString(userAgent)
	e.Metadata = json.RawMessage(metadata)
	return e, nil
}
