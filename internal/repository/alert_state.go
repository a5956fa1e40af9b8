package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// AlertStateRepository records when a device last raised an alert, backing
// the optional cooldown. Kept in the database so suppression survives
// restarts, like every other guarantee here.
type AlertStateRepository struct {
	pool PgxPool
}

func NewAlertStateRepository(pool PgxPool) *AlertStateRepository {
	return &AlertStateRepository{pool: pool}
}

func (r *AlertStateRepository) LastRaisedAt(ctx context.Context, deviceID string) (*time.Time, error) {
	query := `SELECT last_raised_at FROM alert_state WHERE device_id = $1`

	var t time.Time
	err := r.pool.QueryRow(ctx, query, deviceID).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert state: %w", err)
	}

	return &t, nil
}

func (r *AlertStateRepository) MarkRaised(ctx context.Context, deviceID string, raisedAt time.Time) error {
	query := `
		INSERT INTO alert_state (device_id, last_raised_at)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE SET last_raised_at = EXCLUDED.last_raised_at
	`

	if _, err := r.pool.Exec(ctx, query, deviceID, raisedAt); err != nil {
		return fmt.Errorf("mark alert raised: %w", err)
	}

	return nil
}
