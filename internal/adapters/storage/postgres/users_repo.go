package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"civil-registry/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			user_id, username, password_hash,
			full_name, role, kebele_id, created_at
		) VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7)
	`,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.FullName,
		string(u.Role),
		u.Kebele,
		u.CreatedAt,
	)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getBy(ctx, "user_id", id)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UsersRepo) getBy(ctx context.Context, column, value string) (users.User, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return users.User{}, users.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, username, password_hash, full_name, role, kebele_id, created_at
		FROM users
		WHERE `+column+` = $1
	`, value)

	var u users.User
	var role string
	var kebele sql.NullString

	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &role, &kebele, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}

	u.Role = users.Role(role)
	u.Kebele = kebele.String
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, username, password_hash, full_name, role, kebele_id, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		var role string
		var kebele sql.NullString

		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &role, &kebele, &u.CreatedAt); err != nil {
			return nil, err
		}

		u.Role = users.Role(role)
		u.Kebele = kebele.String
		out = append(out, u)
	}

	return out, rows.Err()
}
