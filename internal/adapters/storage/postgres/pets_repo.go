package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-visits/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (id, owner_id, name, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		toNullDate(p.BirthDate),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, birth_date, created_at, updated_at
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err == sql.ErrNoRows {
		return pets.Pet{}, ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, birth_date, created_at, updated_at
		FROM pets
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, ownerID)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var bd sql.NullTime
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&bd,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	if bd.Valid {
		t := bd.Time
		p.BirthDate = &t
	}
	return p, nil
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
