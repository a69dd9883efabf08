package postgres

import (
	"context"
	"database/sql"

	"pet-visits/internal/domain/owners"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (id, first_name, last_name, city, telephone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		o.ID,
		o.FirstName,
		o.LastName,
		o.City,
		o.Telephone,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, city, telephone, created_at, updated_at
		FROM owners
		WHERE id = $1
	`, id)

	var o owners.Owner
	if err := row.Scan(
		&o.ID,
		&o.FirstName,
		&o.LastName,
		&o.City,
		&o.Telephone,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return owners.Owner{}, ErrNotFound
		}
		return owners.Owner{}, err
	}
	return o, nil
}

func (r *OwnersRepo) List(ctx context.Context) ([]owners.Owner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, city, telephone, created_at, updated_at
		FROM owners
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]owners.Owner, 0)
	for rows.Next() {
		var o owners.Owner
		if err := rows.Scan(
			&o.ID,
			&o.FirstName,
			&o.LastName,
			&o.City,
			&o.Telephone,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
