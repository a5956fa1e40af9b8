package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

type DeviceRepository struct {
	pool PgxPool
}

func NewDeviceRepository(pool PgxPool) *DeviceRepository {
	return &DeviceRepository{pool: pool}
}

// GetIDByLocation resolves the location edge devices report to the internal
// device id.
func (r *DeviceRepository) GetIDByLocation(ctx context.Context, location string) (string, error) {
	query := `SELECT id_device FROM devices WHERE location = $1`

	var id string
	err := r.pool.QueryRow(ctx, query, location).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrDeviceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get device id by location: %w", err)
	}

	return id, nil
}

func (r *DeviceRepository) GetByLocation(ctx context.Context, location string) (*domain.Device, error) {
	query := `
		SELECT id_device, location, COALESCE(status, ''), last_sync
		FROM devices
		WHERE location = $1
	`

	var device domain.Device
	err := r.pool.QueryRow(ctx, query, location).Scan(
		&device.ID,
		&device.Location,
		&device.Status,
		&device.LastSync,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get device by location: %w", err)
	}

	return &device, nil
}

func (r *DeviceRepository) List(ctx context.Context) ([]domain.Device, error) {
	query := `
		SELECT id_device, location, COALESCE(status, ''), last_sync
		FROM devices
		ORDER BY location
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(&d.ID, &d.Location, &d.Status, &d.LastSync); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, d)
	}

	return devices, rows.Err()
}
