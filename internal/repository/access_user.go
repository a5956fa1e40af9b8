package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

type AccessUserRepository struct {
	pool PgxPool
}

func NewAccessUserRepository(pool PgxPool) *AccessUserRepository {
	return &AccessUserRepository{pool: pool}
}

// GetIDByDocument resolves the external identity a device reported to the
// internal user id.
func (r *AccessUserRepository) GetIDByDocument(ctx context.Context, document string) (int64, error) {
	query := `SELECT id FROM access_users WHERE document = $1`

	var id int64
	err := r.pool.QueryRow(ctx, query, document).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get user id by document: %w", err)
	}

	return id, nil
}

func (r *AccessUserRepository) GetByID(ctx context.Context, id int64) (*domain.AccessUser, error) {
	query := `
		SELECT id, COALESCE(first_name, ''), COALESCE(last_name, ''), document,
		       COALESCE(rfid, ''), COALESCE(image_ref, ''), COALESCE(face_embedding, ''), created_at
		FROM access_users
		WHERE id = $1
	`

	var user domain.AccessUser
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Document,
		&user.RFID,
		&user.ImageRef,
		&user.FaceEmbedding,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// Delete removes the user row. Mappings and ledger entries go with it via
// the cascading foreign keys.
func (r *AccessUserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM access_users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}
