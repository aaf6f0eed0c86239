package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/ports/auth"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, name, username, email, password_hash, role,
	COALESCE(vet_id::text, ''), COALESCE(owner_id::text, ''), created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO users (name, username, email, password_hash, role, vet_id, owner_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+userColumns,
		u.Name, u.Username, u.Email, u.PasswordHash, string(u.Role),
		nullString(u.VetID), nullString(u.OwnerID),
	)
	return scanUser(row)
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) (users.User, error) {
	if !validID(u.ID) {
		return users.User{}, users.ErrUserNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE users
		SET name = $2, username = $3, email = $4, password_hash = $5, role = $6,
			vet_id = $7, owner_id = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Name, u.Username, u.Email, u.PasswordHash, string(u.Role),
		nullString(u.VetID), nullString(u.OwnerID),
	)
	return scanUser(row)
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return users.ErrUserNotFound
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	if !validID(id) {
		return users.User{}, users.ErrUserNotFound
	}
	return r.one(ctx, `WHERE id = $1`, id)
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (users.User, error) {
	return r.one(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *UsersRepo) FindByUsername(ctx context.Context, username string) (users.User, error) {
	return r.one(ctx, `WHERE username = $1`, username)
}

func (r *UsersRepo) FindByOwnerID(ctx context.Context, ownerID string) (users.User, error) {
	if !validID(ownerID) {
		return users.User{}, users.ErrUserNotFound
	}
	return r.one(ctx, `WHERE owner_id = $1`, ownerID)
}

func (r *UsersRepo) FindByVetID(ctx context.Context, vetID string) (users.User, error) {
	if !validID(vetID) {
		return users.User{}, users.ErrUserNotFound
	}
	return r.one(ctx, `WHERE vet_id = $1`, vetID)
}

func (r *UsersRepo) one(ctx context.Context, where string, arg any) (users.User, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where+` LIMIT 1`, arg)
	return scanUser(row)
}

func scanUser(s scanner) (users.User, error) {
	var u users.User
	var role string
	err := s.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &role,
		&u.VetID, &u.OwnerID, &u.CreatedAt, &u.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return users.User{}, users.ErrUserNotFound
	case isUniqueViolation(err):
		return users.User{}, users.ErrUserAlreadyExists
	case err != nil:
		return users.User{}, err
	}
	u.Role = auth.ParseRole(role)
	return u, nil
}
