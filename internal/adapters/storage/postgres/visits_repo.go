package postgres

import (
	"context"
	"database/sql"

	"pet-visits/internal/domain/visits"
)

type VisitsRepo struct {
	db *sql.DB
}

func NewVisitsRepo(db *sql.DB) *VisitsRepo {
	return &VisitsRepo{db: db}
}

func (r *VisitsRepo) EnsureSchema(ctx context.Context) error {
	return visitsTable.ensure(ctx, r.db)
}

func (r *VisitsRepo) FindAll(ctx context.Context) (visits.Rows, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pet_id, visit_id, visit_date, description
		FROM visits_by_pet
	`)
	if err != nil {
		return nil, err
	}
	return &visitRows{rows: rows}, nil
}

func (r *VisitsRepo) FindAllForPet(ctx context.Context, petID string) (visits.Rows, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pet_id, visit_id, visit_date, description
		FROM visits_by_pet
		WHERE pet_id = $1
		ORDER BY visit_id ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	return &visitRows{rows: rows}, nil
}

// FindByID resuelve por el índice secundario sobre visit_id; si el
// índice todavía no existe el planner degrada a seq scan y la query
// sigue siendo correcta.
func (r *VisitsRepo) FindByID(ctx context.Context, visitID string) (visits.Rows, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pet_id, visit_id, visit_date, description
		FROM visits_by_pet
		WHERE visit_id = $1
	`, visitID)
	if err != nil {
		return nil, err
	}
	return &visitRows{rows: rows}, nil
}

// Upsert escribe con semántica last-write-wins sobre la clave
// (pet_id, visit_id).
func (r *VisitsRepo) Upsert(ctx context.Context, v visits.Visit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO visits_by_pet (pet_id, visit_id, visit_date, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pet_id, visit_id) DO UPDATE SET
			visit_date = EXCLUDED.visit_date,
			description = EXCLUDED.description
	`,
		v.PetID,
		v.VisitID,
		v.VisitDate,
		v.Description,
	)
	return err
}

func (r *VisitsRepo) Delete(ctx context.Context, v visits.Visit) error {
	// Borrar una fila ausente no es error: ExecContext con 0 filas
	// afectadas es éxito.
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM visits_by_pet
		WHERE pet_id = $1 AND visit_id = $2
	`,
		v.PetID,
		v.VisitID,
	)
	return err
}

// visitRows adapta sql.Rows a la secuencia lazy del dominio: cada Next
// avanza el cursor y escanea una sola fila.
type visitRows struct {
	rows *sql.Rows
	cur  visits.Row
	err  error
}

func (vr *visitRows) Next() bool {
	if vr.err != nil {
		return false
	}
	if !vr.rows.Next() {
		return false
	}

	var row visits.Row
	if err := vr.rows.Scan(&row.PetID, &row.VisitID, &row.VisitDate, &row.Description); err != nil {
		vr.err = err
		return false
	}
	vr.cur = row
	return true
}

func (vr *visitRows) Row() visits.Row { return vr.cur }

func (vr *visitRows) Err() error {
	if vr.err != nil {
		return vr.err
	}
	return vr.rows.Err()
}

func (vr *visitRows) Close() error { return vr.rows.Close() }
