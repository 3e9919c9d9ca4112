package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

// InsertAuditEvent appends an event to the audit log.
func (q queries) InsertAuditEvent(ctx context.Context, e model.AuditEvent) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO audit_log (id, kind, entity, entity_id, before_state, after_state, actor_id, actor_name, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Entity, e.EntityID, e.Before, e.After, e.ActorID, e.ActorName, e.OccurredAt,
	)
	return errs.Storage("recording audit event", err)
}

// ListAuditEvents returns the most recent events, newest first, optionally for
// a single entity.
func (q queries) ListAuditEvents(ctx context.Context, entity string, entityID int64, limit uint) ([]model.AuditEvent, error) {
	ds := dialect.From("audit_log").
		Select("id", "kind", "entity", "entity_id", "before_state", "after_state",
			"actor_id", "actor_name", "occurred_at").
		Order(goqu.C("occurred_at").Desc(), goqu.C("rowid").Desc())

	if entity != "" {
		ds = ds.Where(goqu.C("entity").Eq(entity))
	}
	if entityID > 0 {
		ds = ds.Where(goqu.C("entity_id").Eq(entityID))
	}
	if limit > 0 {
		ds = ds.Limit(limit)
	}

	var events []model.AuditEvent
	if err := q.selectDataset(ctx, &events, "listing audit events", ds); err != nil {
		return nil, err
	}
	return events, nil
}
