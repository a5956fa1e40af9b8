package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

type AccessLogRepository struct {
	pool PgxPool
}

func NewAccessLogRepository(pool PgxPool) *AccessLogRepository {
	return &AccessLogRepository{pool: pool}
}

// Exists reports whether an event with this id was already ingested.
func (r *AccessLogRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM access_logs WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check event exists: %w", err)
	}

	return exists, nil
}

// Insert appends the event to the ledger. The existence check and the insert
// run in one transaction; the unique constraint on id is the source of truth
// and the pre-check only saves a doomed insert.
func (r *AccessLogRepository) Insert(ctx context.Context, event *domain.AccessEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert event: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM access_logs WHERE id = $1)`, event.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check event exists: %w", err)
	}
	if exists {
		return domain.ErrDuplicateEvent
	}

	query := `
		INSERT INTO access_logs (id, access_user_id, device_id, event, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = tx.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.DeviceID,
		string(event.Kind),
		event.OccurredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEvent
		}
		return fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert event: %w", err)
	}

	return nil
}

// CountDenied counts denied events for a device with occurred_at in
// [from, to]. Both bounds are inclusive.
func (r *AccessLogRepository) CountDenied(ctx context.Context, deviceID string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM access_logs
		WHERE device_id = $1
		  AND event = $2
		  AND occurred_at BETWEEN $3 AND $4
	`

	var count int
	err := r.pool.QueryRow(ctx, query, deviceID, string(domain.EventDenied), from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count denied events: %w", err)
	}

	return count, nil
}

// ListRecent returns the newest events, optionally filtered by user and
// device. Feeds the operator log endpoint only; the ingest path never reads
// through it.
func (r *AccessLogRepository) ListRecent(ctx context.Context, userID *int64, deviceID *string, limit int) ([]domain.AccessEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, access_user_id, device_id, event, occurred_at
		FROM access_logs
		WHERE ($1::bigint IS NULL OR access_user_id = $1)
		  AND ($2::varchar IS NULL OR device_id = $2)
		ORDER BY occurred_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.AccessEvent
	for rows.Next() {
		var ev domain.AccessEvent
		var kind string

		err := rows.Scan(&ev.ID, &ev.UserID, &ev.DeviceID, &kind, &ev.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		ev.Kind = domain.EventKind(kind)
		events = append(events, ev)
	}

	return events, rows.Err()
}
