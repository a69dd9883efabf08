package owners

import (
	"time"

	"pet-visits/internal/domain/pets"
)

// Owner es la raíz del árbol owner → pets → visits. La población de
// visitas no muta la colección Pets, solo las visitas anidadas en cada
// pet; por eso los pets se mantienen por puntero.
type Owner struct {
	ID string

	FirstName string
	LastName  string
	City      string
	Telephone string

	Pets []*pets.Pet

	CreatedAt time.Time
	UpdatedAt time.Time
}
