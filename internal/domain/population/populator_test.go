package population_test

import (
	"context"
	"errors"
	"testing"
	"time"

	mem "pet-visits/internal/adapters/storage/memory"
	"pet-visits/internal/domain/owners"
	"pet-visits/internal/domain/pets"
	"pet-visits/internal/domain/population"
	"pet-visits/internal/domain/visits"

	"github.com/google/uuid"
)

func TestPopulateVisitsForPet(t *testing.T) {
	repo := mem.NewVisitRepo()
	petID := uuid.NewString()

	v1 := visits.Visit{PetID: petID, VisitID: uuid.NewString(), VisitDate: date(2023, 1, 1), Description: "checkup"}
	v2 := visits.Visit{PetID: petID, VisitID: uuid.NewString(), VisitDate: date(2023, 3, 5), Description: "vaccine"}
	mustUpsert(t, repo, v1, v2)

	pet := &pets.Pet{ID: petID}
	got, err := population.New(repo).PopulateVisitsForPet(context.Background(), pet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != pet {
		t.Fatalf("expected the same pet handle back")
	}
	if len(pet.Visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(pet.Visits))
	}
	if !pet.Visits.Contains(v1) || !pet.Visits.Contains(v2) {
		t.Fatalf("expected set to contain both visits, got %v", pet.Visits)
	}
}

func TestPopulateVisitsForPet_ReplacesWholesale(t *testing.T) {
	repo := mem.NewVisitRepo()
	petID := uuid.NewString()

	current := visits.Visit{PetID: petID, VisitID: uuid.NewString(), VisitDate: date(2023, 6, 1), Description: "current"}
	mustUpsert(t, repo, current)

	stale := visits.Visit{PetID: petID, VisitID: uuid.NewString(), VisitDate: date(2020, 1, 1), Description: "stale"}
	pet := &pets.Pet{ID: petID, Visits: visits.NewSet(stale)}

	if _, err := population.New(repo).PopulateVisitsForPet(context.Background(), pet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Swap, nunca merge: lo viejo desaparece.
	if !pet.Visits.Equal(visits.NewSet(current)) {
		t.Fatalf("expected wholesale replacement, got %v", pet.Visits)
	}
}

func TestPopulateVisitsForOwner_WaitsForEveryPet(t *testing.T) {
	repo := mem.NewVisitRepo()

	p1 := &pets.Pet{ID: uuid.NewString()}
	p2 := &pets.Pet{ID: uuid.NewString()}

	mustUpsert(t, repo,
		visits.Visit{PetID: p1.ID, VisitID: uuid.NewString(), VisitDate: date(2023, 1, 1), Description: "checkup"},
		visits.Visit{PetID: p1.ID, VisitID: uuid.NewString(), VisitDate: date(2023, 3, 5), Description: "vaccine"},
	)

	owner := &owners.Owner{ID: uuid.NewString(), Pets: []*pets.Pet{p1, p2}}
	got, err := population.New(repo).PopulateVisitsForOwner(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != owner {
		t.Fatalf("expected the same owner handle back")
	}

	// Al retornar, TODAS las mascotas están pobladas: la que no tiene
	// visitas queda con set vacío, no nil.
	if len(p1.Visits) != 2 {
		t.Fatalf("expected 2 visits on p1, got %d", len(p1.Visits))
	}
	if p2.Visits == nil {
		t.Fatalf("expected empty set on p2, got nil")
	}
	if len(p2.Visits) != 0 {
		t.Fatalf("expected 0 visits on p2, got %d", len(p2.Visits))
	}
}

func TestPopulateVisitsForPet_FailureLeavesCollectionUntouched(t *testing.T) {
	petID := uuid.NewString()
	prior := visits.Visit{PetID: petID, VisitID: uuid.NewString(), VisitDate: date(2022, 12, 1), Description: "prior"}
	pet := &pets.Pet{ID: petID, Visits: visits.NewSet(prior)}

	repo := &failingRepo{
		rows: []visits.Row{
			{PetID: petID, VisitID: uuid.NewString(), VisitDate: date(2023, 1, 1), Description: "lost"},
		},
		err: errors.New("storage unavailable"),
	}

	_, err := population.New(repo).PopulateVisitsForPet(context.Background(), pet)
	if err == nil {
		t.Fatalf("expected error")
	}

	// Sin población parcial: la colección previa queda intacta.
	if !pet.Visits.Equal(visits.NewSet(prior)) {
		t.Fatalf("expected prior collection untouched, got %v", pet.Visits)
	}
}

func TestPopulateVisitsForOwner_FailAll(t *testing.T) {
	okRepo := mem.NewVisitRepo()
	p1 := &pets.Pet{ID: uuid.NewString()}

	boom := errors.New("partition query failed")
	repo := &failingRepo{err: boom, failFor: p1.ID, fallback: okRepo}

	p2 := &pets.Pet{ID: uuid.NewString()}
	mustUpsert(t, okRepo, visits.Visit{PetID: p2.ID, VisitID: uuid.NewString(), VisitDate: date(2023, 1, 1), Description: "x"})

	owner := &owners.Owner{ID: uuid.NewString(), Pets: []*pets.Pet{p1, p2}}
	if _, err := population.New(repo).PopulateVisitsForOwner(context.Background(), owner); !errors.Is(err, boom) {
		t.Fatalf("expected fail-all with %v, got %v", boom, err)
	}

	// La mascota fallida conserva su estado previo (nil).
	if p1.Visits != nil {
		t.Fatalf("expected failed pet untouched, got %v", p1.Visits)
	}
}

func TestPopulateVisitsForPet_DuplicateRowsCollapse(t *testing.T) {
	petID := uuid.NewString()
	row := visits.Row{PetID: petID, VisitID: uuid.NewString(), VisitDate: date(2023, 1, 1), Description: "dup"}
	repo := &failingRepo{rows: []visits.Row{row, row}}

	pet := &pets.Pet{ID: petID}
	if _, err := population.New(repo).PopulateVisitsForPet(context.Background(), pet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pet.Visits) != 1 {
		t.Fatalf("expected duplicates to collapse into 1 visit, got %d", len(pet.Visits))
	}
}

// failingRepo entrega filas fijas para cualquier pet y, si err está
// seteado, lo dispara al final del stream (fallo a mitad de consumo).
// Con failFor/fallback solo falla para ese pet y delega el resto.
type failingRepo struct {
	rows     []visits.Row
	err      error
	failFor  string
	fallback visits.Repository
}

func (r *failingRepo) EnsureSchema(ctx context.Context) error { return nil }

func (r *failingRepo) FindAll(ctx context.Context) (visits.Rows, error) {
	return &errRows{rows: r.rows, err: r.err}, nil
}

func (r *failingRepo) FindAllForPet(ctx context.Context, petID string) (visits.Rows, error) {
	if r.failFor != "" && petID != r.failFor {
		return r.fallback.FindAllForPet(ctx, petID)
	}
	return &errRows{rows: r.rows, err: r.err}, nil
}

func (r *failingRepo) FindByID(ctx context.Context, visitID string) (visits.Rows, error) {
	return &errRows{rows: nil, err: r.err}, nil
}

func (r *failingRepo) Upsert(ctx context.Context, v visits.Visit) error { return r.err }
func (r *failingRepo) Delete(ctx context.Context, v visits.Visit) error { return r.err }

type errRows struct {
	rows []visits.Row
	i    int
	err  error
}

func (e *errRows) Next() bool {
	if e.i < len(e.rows) {
		e.i++
		return true
	}
	return false
}

func (e *errRows) Row() visits.Row { return e.rows[e.i-1] }

func (e *errRows) Err() error {
	if e.i >= len(e.rows) {
		return e.err
	}
	return nil
}

func (e *errRows) Close() error { return nil }

func mustUpsert(t *testing.T, repo visits.Repository, vs ...visits.Visit) {
	t.Helper()
	for _, v := range vs {
		if err := repo.Upsert(context.Background(), v); err != nil {
			t.Fatalf("upsert %s: %v", v.VisitID, err)
		}
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
