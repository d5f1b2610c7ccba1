package db

import (
	"context"
	"time"
)

const createAuditEvent = `
INSERT INTO audit_events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// CreateAuditEventParams はCreateAuditEventのパラメータ。
type CreateAuditEventParams struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Data          []byte
	Version       int64
	CreatedAt     time.Time
}

// CreateAuditEvent は監査イベントを挿入する。
func (q *Queries) CreateAuditEvent(ctx context.Context, arg CreateAuditEventParams) error {
	_, err := q.db.ExecContext(ctx, createAuditEvent,
		arg.ID,
		arg.AggregateID,
		arg.AggregateType,
		arg.EventType,
		arg.Data,
		arg.Version,
		arg.CreatedAt,
	)
	return err
}

const listAuditEventsByAggregate = `
SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at
FROM audit_events
WHERE aggregate_id = ?
ORDER BY version ASC
`

// ListAuditEventsByAggregate は指定されたAggregateの監査イベントをバージョン順に取得する。
func (q *Queries) ListAuditEventsByAggregate(ctx context.Context, aggregateID string) ([]AuditEvent, error) {
	rows, err := q.db.QueryContext(ctx, listAuditEventsByAggregate, aggregateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		if err := rows.Scan(
			&e.ID,
			&e.AggregateID,
			&e.AggregateType,
			&e.EventType,
			&e.Data,
			&e.Version,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const nextAuditVersion = `
SELECT COALESCE(MAX(version), 0) + 1 FROM audit_events WHERE aggregate_id = ?
`

// NextAuditVersion は指定されたAggregateの次のイベントバージョン番号を返す。
func (q *Queries) NextAuditVersion(ctx context.Context, aggregateID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, nextAuditVersion, aggregateID)
	var version int64
	err := row.Scan(&version)
	return version, err
}
