// Package population reconstruye el árbol owner → pets → visits
// componiendo lecturas independientes por entidad. El árbol no es
// transaccional: pets y visits se leen por separado y pueden ser
// mutuamente inconsistentes en el instante de lectura.
package population

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pet-visits/internal/domain/owners"
	"pet-visits/internal/domain/pets"
	"pet-visits/internal/domain/visits"
)

type Populator struct {
	repo visits.Repository
}

func New(repo visits.Repository) *Populator {
	return &Populator{repo: repo}
}

// PopulateVisitsForPet carga todas las visitas de la mascota (orden de
// clustering), las colapsa en un set por igualdad de registro y
// reemplaza la colección al completo.
//
// Si el stream falla a mitad no hay población parcial: la colección
// previa queda intacta y se devuelve el error. El swap ocurre recién
// tras consumir el stream limpio.
func (pop *Populator) PopulateVisitsForPet(ctx context.Context, pet *pets.Pet) (*pets.Pet, error) {
	rows, err := pop.repo.FindAllForPet(ctx, pet.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := visits.NewSet()
	for rows.Next() {
		set.Add(visits.FromRow(rows.Row()))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pet.Visits = set
	return pet, nil
}

// PopulateVisitsForOwner lanza una población por cada mascota del
// owner y espera el join completo: la completitud a nivel owner se
// señala recién cuando TODAS las poblaciones por mascota terminaron.
// Lanzar las N llamadas y retornar sin esperar ninguna reportaría el
// owner como poblado mientras las mascotas siguen cargando.
//
// Política ante fallo: fail-all. El primer error cancela el contexto
// del grupo (abortando las queries hermanas en curso) y falla la
// operación completa; cada mascota fallida conserva su colección
// previa.
func (pop *Populator) PopulateVisitsForOwner(ctx context.Context, owner *owners.Owner) (*owners.Owner, error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, pet := range owner.Pets {
		g.Go(func() error {
			_, err := pop.PopulateVisitsForPet(gctx, pet)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return owner, nil
}
