package repository

import (
	"context"
	"fmt"
)

// DeviceRef pairs a device id with its location for notification targeting.
type DeviceRef struct {
	ID       string
	Location string
}

type DeviceUserMappingRepository struct {
	pool PgxPool
}

func NewDeviceUserMappingRepository(pool PgxPool) *DeviceUserMappingRepository {
	return &DeviceUserMappingRepository{pool: pool}
}

// BulkUpdate applies mapping additions and removals for one user in a single
// transaction and returns the locations that actually changed. Re-adding an
// existing mapping is a no-op and is not reported as added.
func (r *DeviceUserMappingRepository) BulkUpdate(ctx context.Context, userID int64, add, remove []DeviceRef) (added, removed []string, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin mapping update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertQuery := `
		INSERT INTO device_user_mappings (access_user_id, device_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, ref := range add {
		tag, err := tx.Exec(ctx, insertQuery, userID, ref.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("add mapping %s: %w", ref.Location, err)
		}
		if tag.RowsAffected() > 0 {
			added = append(added, ref.Location)
		}
	}

	deleteQuery := `
		DELETE FROM device_user_mappings
		WHERE access_user_id = $1 AND device_id = $2
	`
	for _, ref := range remove {
		tag, err := tx.Exec(ctx, deleteQuery, userID, ref.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("remove mapping %s: %w", ref.Location, err)
		}
		if tag.RowsAffected() > 0 {
			removed = append(removed, ref.Location)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit mapping update: %w", err)
	}

	return added, removed, nil
}

// LocationsForUser lists the locations of every device the user is enrolled
// on.
func (r *DeviceUserMappingRepository) LocationsForUser(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT d.location
		FROM device_user_mappings m
		JOIN devices d ON d.id_device = m.device_id
		WHERE m.access_user_id = $1
		ORDER BY d.location
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query user devices: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}

	return locations, rows.Err()
}
