package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/owners"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

const ownerColumns = `id, name, email, username, phone, address, created_at, updated_at`

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) (owners.Owner, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO owners (name, email, username, phone, address)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+ownerColumns,
		o.Name, o.Email, o.Username, o.Phone, o.Address,
	)
	return scanOwner(row)
}

func (r *OwnersRepo) Update(ctx context.Context, o owners.Owner) (owners.Owner, error) {
	if !validID(o.ID) {
		return owners.Owner{}, owners.ErrOwnerNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE owners
		SET name = $2, email = $3, username = $4, phone = $5, address = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+ownerColumns,
		o.ID, o.Name, o.Email, o.Username, o.Phone, o.Address,
	)
	return scanOwner(row)
}

func (r *OwnersRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return owners.ErrOwnerNotFound
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM owners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return owners.ErrOwnerNotFound
	}
	return nil
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	if !validID(id) {
		return owners.Owner{}, owners.ErrOwnerNotFound
	}
	return scanOwner(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+ownerColumns+` FROM owners WHERE id = $1`, id))
}

func (r *OwnersRepo) List(ctx context.Context) ([]owners.Owner, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+ownerColumns+` FROM owners ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]owners.Owner, 0)
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OwnersRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "owners", id)
}

func scanOwner(s scanner) (owners.Owner, error) {
	var o owners.Owner
	err := s.Scan(&o.ID, &o.Name, &o.Email, &o.Username, &o.Phone, &o.Address, &o.CreatedAt, &o.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return owners.Owner{}, owners.ErrOwnerNotFound
	case isUniqueViolation(err):
		return owners.Owner{}, owners.ErrOwnerAlreadyExists
	case err != nil:
		return owners.Owner{}, err
	}
	return o, nil
}

// exists: table viene de código, nunca del request.
func exists(ctx context.Context, db *sql.DB, table, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var ok bool
	err := conn(ctx, db).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}
