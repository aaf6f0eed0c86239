package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"vet-clinic-api/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `id, owner_id, name, type, breed, color, age, weight, created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO pets (owner_id, name, type, breed, color, age, weight)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+petColumns,
		p.OwnerID,
		p.Name,
		string(p.Type),
		p.Breed,
		p.Color,
		p.Age,
		p.Weight,
	)
	return scanPet(row)
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	if !validID(p.ID) {
		return pets.Pet{}, pets.ErrPetNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE pets
		SET
			owner_id = $2,
			name = $3,
			type = $4,
			breed = $5,
			color = $6,
			age = $7,
			weight = $8,
			updated_at = now()
		WHERE id = $1
		RETURNING `+petColumns,
		p.ID,
		p.OwnerID,
		p.Name,
		string(p.Type),
		p.Breed,
		p.Color,
		p.Age,
		p.Weight,
	)
	return scanPet(row)
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pets.ErrPetNotFound
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrPetNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if !validID(id) {
		return pets.Pet{}, pets.ErrPetNotFound
	}
	return scanPet(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id))
}

func (r *PetsRepo) List(ctx context.Context) ([]pets.Pet, error) {
	return r.query(ctx, `SELECT `+petColumns+` FROM pets ORDER BY created_at ASC`)
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	if !validID(ownerID) {
		return []pets.Pet{}, nil
	}
	return r.query(ctx, `SELECT `+petColumns+` FROM pets WHERE owner_id = $1 ORDER BY created_at ASC`, ownerID)
}

func (r *PetsRepo) FindByOwnerNameType(ctx context.Context, ownerID, name string, t pets.Type) (pets.Pet, error) {
	if !validID(ownerID) {
		return pets.Pet{}, pets.ErrPetNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+petColumns+` FROM pets
		WHERE owner_id = $1 AND lower(name) = lower($2) AND type = $3
		LIMIT 1`, ownerID, name, string(t))
	return scanPet(row)
}

func (r *PetsRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "pets", id)
}

func (r *PetsRepo) query(ctx context.Context, q string, args ...any) ([]pets.Pet, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPet(s scanner) (pets.Pet, error) {
	var p pets.Pet
	var typ string
	err := s.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&typ,
		&p.Breed,
		&p.Color,
		&p.Age,
		&p.Weight,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return pets.Pet{}, pets.ErrPetNotFound
	case isUniqueViolation(err):
		return pets.Pet{}, pets.ErrPetAlreadyExists
	case err != nil:
		return pets.Pet{}, err
	}
	p.Type = pets.Type(typ)
	return p, nil
}
