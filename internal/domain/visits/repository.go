package visits

import "context"

// Rows es una secuencia lazy de filas: el I/O avanza con cada Next.
// No es reiniciable (una nueva llamada al repo re-consulta) y el
// caller debe cerrarla siempre.
type Rows interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

// Repository define las operaciones primitivas contra la tabla de
// visitas.
//
// Garantías de orden: FindAllForPet entrega en orden de clustering
// (visit_id ascendente); FindAll no garantiza orden entre particiones.
// FindByID resuelve por el índice secundario sobre visit_id y debe
// funcionar también antes de que el índice exista (scan con filtro,
// más lento). Puede entregar más de una fila: el caller lo maneja de
// forma defensiva.
//
// Upsert y Delete son idempotentes: la misma clave sobreescribe
// (last-write-wins) y borrar una fila ausente no es error.
type Repository interface {
	EnsureSchema(ctx context.Context) error

	FindAll(ctx context.Context) (Rows, error)
	FindAllForPet(ctx context.Context, petID string) (Rows, error)
	FindByID(ctx context.Context, visitID string) (Rows, error)

	Upsert(ctx context.Context, v Visit) error
	Delete(ctx context.Context, v Visit) error
}
