package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/vets"
)

type VetsRepo struct {
	db *sql.DB
}

func NewVetsRepo(db *sql.DB) *VetsRepo {
	return &VetsRepo{db: db}
}

const vetColumns = `id, name, email, username, specialty, created_at, updated_at`

func (r *VetsRepo) Create(ctx context.Context, v vets.Vet) (vets.Vet, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO vets (name, email, username, specialty)
		VALUES ($1,$2,$3,$4)
		RETURNING `+vetColumns,
		v.Name, v.Email, v.Username, string(v.Specialty),
	)
	return scanVet(row)
}

func (r *VetsRepo) Update(ctx context.Context, v vets.Vet) (vets.Vet, error) {
	if !validID(v.ID) {
		return vets.Vet{}, vets.ErrVetNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE vets
		SET name = $2, email = $3, username = $4, specialty = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+vetColumns,
		v.ID, v.Name, v.Email, v.Username, string(v.Specialty),
	)
	return scanVet(row)
}

func (r *VetsRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return vets.ErrVetNotFound
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM vets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return vets.ErrVetNotFound
	}
	return nil
}

func (r *VetsRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	if !validID(id) {
		return vets.Vet{}, vets.ErrVetNotFound
	}
	return scanVet(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+vetColumns+` FROM vets WHERE id = $1`, id))
}

func (r *VetsRepo) List(ctx context.Context) ([]vets.Vet, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+vetColumns+` FROM vets ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vets.Vet, 0)
	for rows.Next() {
		v, err := scanVet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VetsRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "vets", id)
}

func scanVet(s scanner) (vets.Vet, error) {
	var v vets.Vet
	var specialty string
	err := s.Scan(&v.ID, &v.Name, &v.Email, &v.Username, &specialty, &v.CreatedAt, &v.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return vets.Vet{}, vets.ErrVetNotFound
	case isUniqueViolation(err):
		return vets.Vet{}, vets.ErrVetAlreadyExists
	case err != nil:
		return vets.Vet{}, err
	}
	v.Specialty = vets.Specialty(specialty)
	return v, nil
}
