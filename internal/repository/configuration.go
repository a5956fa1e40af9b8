package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type ConfigurationRepository struct {
	pool PgxPool
}

func NewConfigurationRepository(pool PgxPool) *ConfigurationRepository {
	return &ConfigurationRepository{pool: pool}
}

// Get returns the value for a named setting, preferring the device-scoped
// row and falling back to the global one. ok is false when neither scope has
// the setting.
func (r *ConfigurationRepository) Get(ctx context.Context, name string, deviceID *string) (string, bool, error) {
	query := `
		SELECT value FROM configurations
		WHERE name_config = $1
		  AND (device_id = $2 OR device_id IS NULL)
		ORDER BY device_id NULLS LAST
		LIMIT 1
	`

	var value string
	err := r.pool.QueryRow(ctx, query, name, deviceID).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get configuration %s: %w", name, err)
	}

	return value, true, nil
}

// UpdateValue updates the setting in the given scope. Returns false when no
// row exists in that scope.
func (r *ConfigurationRepository) UpdateValue(ctx context.Context, name, value string, deviceID *string) (bool, error) {
	query := `
		UPDATE configurations
		SET value = $2
		WHERE name_config = $1
		  AND (($3::varchar IS NULL AND device_id IS NULL) OR device_id = $3)
	`

	tag, err := r.pool.Exec(ctx, query, name, value, deviceID)
	if err != nil {
		return false, fmt.Errorf("update configuration %s: %w", name, err)
	}

	return tag.RowsAffected() > 0, nil
}
