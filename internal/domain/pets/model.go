package pets

import (
	"time"

	"pet-visits/internal/domain/visits"
)

// Pet es el contenedor mutable de visitas dentro del árbol
// owner → pets → visits.
//
// Visits se reemplaza al completo en cada población (swap, nunca
// merge) y solo la llamada de población que posee el pet escribe la
// colección. Si dos poblaciones concurrentes tocaran el mismo pet el
// resultado es last-writer-wins sobre el swap; las rutas expuestas por
// este servicio pueblan cada pet una sola vez por request.
type Pet struct {
	ID      string
	OwnerID string

	Name      string
	BirthDate *time.Time

	Visits visits.Set

	CreatedAt time.Time
	UpdatedAt time.Time
}
