// Package audit appends admin actions to the audit log.
package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/roach88/daleel/internal/record"
)

// Appender persists audit entries. *store.Store implements it.
type Appender interface {
	AppendAudit(ctx context.Context, e record.AuditLog) (record.AuditLog, error)
}

// Event is one admin action.
type Event struct {
	Actor      string
	Action     record.AuditAction
	EntityType string
	EntityID   string
	Metadata   map[string]any
	Client     Client
}

// Client identifies the caller of a request. The HTTP layer fills it from
// the resolved client address, so forwarding headers are only honoured
// from trusted proxies.
type Client struct {
	IP        string
	UserAgent string
}

// Recorder writes events through an Appender.
type Recorder struct {
	store  Appender
	logger *zap.Logger
}

// NewRecorder returns a Recorder. A nil logger discards failures.
func NewRecorder(store Appender, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// Record appends e. Failures are logged and never returned: a lost audit
// entry must not fail the request that produced it.
func (r *Recorder) Record(ctx context.Context, e Event) {
	entry := record.AuditLog{
		ActorUserID: e.Actor,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    optional(e.EntityID),
		IP:          optional(e.Client.IP),
		UserAgent:   optional(e.Client.UserAgent),
	}
	if len(e.Metadata) > 0 {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			r.logger.Error("audit metadata", zap.Error(err), zap.String("action", string(e.Action)))
		} else {
			entry.Metadata = meta
		}
	}

	if _, err := r.store.AppendAudit(ctx, entry); err != nil {
		r.logger.Error("failed to write audit log",
			zap.Error(err),
			zap.String("action", string(e.Action)),
			zap.String("entityType", e.EntityType),
			zap.String("entityId", e.EntityID))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
