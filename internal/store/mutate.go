package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// Changes maps camelCase field names to new values.
type Changes map[string]any

// Filter selects rows for bulk operations by field equality. All entries
// must match; a nil value matches NULL. An empty Filter matches every row.
type Filter map[string]any

// Fields returns the sorted field names of c.
func (c Changes) Fields() guard.FieldSet {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	return guard.NewFieldSet(names...)
}

type table struct {
	name      string
	columns   map[string]string
	readOnly  map[string]bool
	updatedAt bool
}

func newTable(name string, fields []string, readOnly ...string) table {
	t := table{
		name:     name,
		columns:  make(map[string]string, len(fields)),
		readOnly: map[string]bool{"id": true, "createdAt": true},
	}
	for _, f := range fields {
		t.columns[f] = snakeCase(f)
		if f == "updatedAt" {
			// Written only by stamp.
			t.updatedAt = true
			t.readOnly[f] = true
		}
	}
	for _, f := range readOnly {
		t.readOnly[f] = true
	}
	return t
}

var tables = map[guard.RecordKind]table{
	guard.KindElectionCycle: newTable("election_cycles",
		[]string{"id", "name", "year", "isActive", "createdAt"}),
	guard.KindDistrict: newTable("districts",
		[]string{"id", "cycleId", "nameAr", "nameEn", "nameFr", "seatCount", "notes"}),
	guard.KindElectoralList: newTable("electoral_lists",
		[]string{"id", "cycleId", "districtId", "nameAr", "nameEn", "nameFr", "status", "announcedAt", "notes"}),
	guard.KindCandidate: newTable("candidates",
		[]string{"id", "cycleId", "districtId", "currentListId", "fullNameAr", "fullNameEn", "fullNameFr",
			"slug", "status", "placeholderPhotoStyle", "createdAt", "updatedAt"}),
	guard.KindElectoralCenter: newTable("electoral_centers",
		[]string{"id", "districtId", "nameAr", "nameEn", "nameFr", "latitude", "longitude",
			"addressAr", "addressEn", "addressFr", "notes"}),
	guard.KindTopic: newTable("topics",
		[]string{"id", "slug", "nameAr", "nameEn", "nameFr"}),
	guard.KindUser: newTable("users",
		[]string{"id", "email", "passwordHash", "role", "isActive", "lastLoginAt", "createdAt"}),
	guard.KindSource: newTable("sources",
		[]string{"id", "title", "publisher", "originUrl", "archivedUrl", "archivedAt", "archiveMethod",
			"contentType", "checksum", "notes", "fingerprint", "createdAt", "updatedAt"},
		"fingerprint"),
	guard.KindStatement: newTable("statements",
		[]string{"id", "candidateId", "topicId", "kind", "summaryAr", "summaryEn", "summaryFr",
			"occurredAt", "sourceId", "createdAt"}),
	guard.KindAffiliation: newTable("affiliations",
		[]string{"id", "candidateId", "type", "nameAr", "nameEn", "nameFr", "startDate", "endDate",
			"notes", "sourceId", "createdAt"}),
	guard.KindAuditLog: newTable("audit_logs",
		[]string{"id", "actorUserId", "action", "entityType", "entityId", "metadata", "ip",
			"userAgent", "createdAt"}),
	guard.KindProfileVersion: newTable("profile_versions",
		[]string{"id", "candidateId", "versionNumber", "snapshot", "snapshotHash", "changeNote",
			"createdBy", "createdAt"}),
}

// snakeCase converts a camelCase field name to its column name.
func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// check asks the guard about req and notifies observers.
func (s *Store) check(req guard.MutationRequest) error {
	d := s.guard.Evaluate(req)
	for _, o := range s.observers {
		o.ObserveDecision(req, d)
	}
	return d.Err()
}

func lookupTable(kind guard.RecordKind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("no table for kind %q", kind)
	}
	return t, nil
}

// insert creates a row of kind from values.
func (s *Store) insert(ctx context.Context, kind guard.RecordKind, values Changes) error {
	fields := values.Fields()
	if err := s.check(guard.MutationRequest{Kind: kind, Operation: guard.OpCreate, Fields: fields}); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}

	t, err := lookupTable(kind)
	if err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}

	cols := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		col, ok := t.columns[f]
		if !ok {
			return fmt.Errorf("create %s: %w: %s", kind, ErrUnknownField, f)
		}
		v, err := sqlValue(values[f])
		if err != nil {
			return fmt.Errorf("create %s: field %s: %w", kind, f, err)
		}
		cols = append(cols, col)
		args = append(args, v)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create %s: %w", kind, classify(err))
	}
	return nil
}

// Update applies changes to the row of kind with the given id. Kinds with
// an updatedAt column get it stamped, and the stamp counts as a changed
// field for the guard. Callers cannot set updatedAt themselves.
func (s *Store) Update(ctx context.Context, kind guard.RecordKind, id string, changes Changes) error {
	stamped := s.stamp(kind, changes)
	if err := s.check(guard.MutationRequest{Kind: kind, Operation: guard.OpUpdate, Fields: stamped.Fields()}); err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}

	t, err := lookupTable(kind)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	if err := t.writable(changes); err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	set, args, err := t.setClause(stamped)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, set)
	res, err := s.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// UpdateMany applies changes to every row of kind matching filter and
// returns the number of rows changed.
func (s *Store) UpdateMany(ctx context.Context, kind guard.RecordKind, filter Filter, changes Changes) (int64, error) {
	stamped := s.stamp(kind, changes)
	if err := s.check(guard.MutationRequest{Kind: kind, Operation: guard.OpUpdateMany, Fields: stamped.Fields()}); err != nil {
		return 0, fmt.Errorf("update many %s: %w", kind, err)
	}

	t, err := lookupTable(kind)
	if err != nil {
		return 0, fmt.Errorf("update many %s: %w", kind, err)
	}
	if err := t.writable(changes); err != nil {
		return 0, fmt.Errorf("update many %s: %w", kind, err)
	}
	set, args, err := t.setClause(stamped)
	if err != nil {
		return 0, fmt.Errorf("update many %s: %w", kind, err)
	}
	where, whereArgs, err := t.whereClause(filter)
	if err != nil {
		return 0, fmt.Errorf("update many %s: %w", kind, err)
	}

	query := fmt.Sprintf("UPDATE %s SET %s%s", t.name, set, where)
	res, err := s.db.ExecContext(ctx, query, append(args, whereArgs...)...)
	if err != nil {
		return 0, fmt.Errorf("update many %s: %w", kind, classify(err))
	}
	return res.RowsAffected()
}

// Delete removes the row of kind with the given id.
func (s *Store) Delete(ctx context.Context, kind guard.RecordKind, id string) error {
	if err := s.check(guard.MutationRequest{Kind: kind, Operation: guard.OpDelete}); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	t, err := lookupTable(kind)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.name), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// DeleteMany removes every row of kind matching filter and returns the
// number of rows removed.
func (s *Store) DeleteMany(ctx context.Context, kind guard.RecordKind, filter Filter) (int64, error) {
	if err := s.check(guard.MutationRequest{Kind: kind, Operation: guard.OpDeleteMany}); err != nil {
		return 0, fmt.Errorf("delete many %s: %w", kind, err)
	}

	t, err := lookupTable(kind)
	if err != nil {
		return 0, fmt.Errorf("delete many %s: %w", kind, err)
	}
	where, args, err := t.whereClause(filter)
	if err != nil {
		return 0, fmt.Errorf("delete many %s: %w", kind, err)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s%s", t.name, where), args...)
	if err != nil {
		return 0, fmt.Errorf("delete many %s: %w", kind, classify(err))
	}
	return res.RowsAffected()
}

// stamp returns changes with updatedAt set to now for kinds that track it,
// replacing any caller value. The caller's map is not modified.
func (s *Store) stamp(kind guard.RecordKind, changes Changes) Changes {
	t, ok := tables[kind]
	if !ok || !t.updatedAt {
		return changes
	}
	out := make(Changes, len(changes)+1)
	for k, v := range changes {
		out[k] = v
	}
	out["updatedAt"] = s.now()
	return out
}

// writable checks the fields a caller asked to change.
func (t table) writable(changes Changes) error {
	fields := changes.Fields()
	if fields.Empty() {
		return ErrNoChanges
	}
	for _, f := range fields {
		if _, ok := t.columns[f]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		if t.readOnly[f] {
			return fmt.Errorf("%w: %s", ErrReadOnlyField, f)
		}
	}
	return nil
}

// setClause builds the SET list for changes already passed by writable.
func (t table) setClause(changes Changes) (string, []any, error) {
	fields := changes.Fields()
	parts := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		col, ok := t.columns[f]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		v, err := sqlValue(changes[f])
		if err != nil {
			return "", nil, fmt.Errorf("field %s: %w", f, err)
		}
		parts = append(parts, col+" = ?")
		args = append(args, v)
	}
	return strings.Join(parts, ", "), args, nil
}

func (t table) whereClause(filter Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	var args []any
	for _, f := range fields {
		col, ok := t.columns[f]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		v, err := sqlValue(filter[f])
		if err != nil {
			return "", nil, fmt.Errorf("filter %s: %w", f, err)
		}
		if v == nil {
			parts = append(parts, col+" IS NULL")
			continue
		}
		parts = append(parts, col+" = ?")
		args = append(args, v)
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// sqlValue converts a field value to what the driver stores.
func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return record.FormatTime(x), nil
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		return record.FormatTime(*x), nil
	case *string:
		if x == nil {
			return nil, nil
		}
		return *x, nil
	case json.RawMessage:
		if x == nil {
			return nil, nil
		}
		return string(x), nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case string, int, int64, float64:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	}
	if s, ok := stringKind(v); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
}

// stringKind unwraps named string types such as record.ArchiveMethod.
func stringKind(v any) (string, bool) {
	switch x := v.(type) {
	case record.ArchiveMethod:
		return string(x), true
	case record.CandidateStatus:
		return string(x), true
	case record.ListStatus:
		return string(x), true
	case record.PhotoStyle:
		return string(x), true
	case record.AffiliationType:
		return string(x), true
	case record.StatementKind:
		return string(x), true
	case record.AuditAction:
		return string(x), true
	case record.Role:
		return string(x), true
	}
	return "", false
}

// nullString converts a scanned NULL-able column to a pointer.
func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullTime parses a scanned NULL-able timestamp column.
func nullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := record.ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
