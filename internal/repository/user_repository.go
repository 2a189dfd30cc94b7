package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wabiz/internal/entities"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, tenant_id)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid)
		RETURNING id, created_at
	`, user.Username, user.PasswordHash, user.Role, user.TenantID).
		Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	var tenantID *string
	err := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, role, tenant_id, is_active, created_at
		FROM users WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&tenantID, &user.IsActive, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if tenantID != nil {
		user.TenantID = *tenantID
	}
	return &user, nil
}

// ListByTenant returns the dashboard accounts of one tenant.
func (r *UserRepository) ListByTenant(ctx context.Context, tenantID string) ([]entities.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, password_hash, role, tenant_id, is_active, created_at
		FROM users WHERE tenant_id = $1 ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []entities.User{}
	for rows.Next() {
		var u entities.User
		var tid *string
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role,
			&tid, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		if tid != nil {
			u.TenantID = *tid
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) SetActive(ctx context.Context, id int, active bool) error {
	tag, err := r.db.Exec(ctx, "UPDATE users SET is_active=$2 WHERE id=$1", id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}
