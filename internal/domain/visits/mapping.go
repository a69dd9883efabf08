package visits

// FromRow convierte una fila almacenada en una visita de dominio.
// Función pura, sin side effects: una fila malformada es una violación
// de contrato del adapter, no un error recuperable.
func FromRow(r Row) Visit {
	return Visit{
		PetID:       r.PetID,
		VisitID:     r.VisitID,
		VisitDate:   NormalizeDate(r.VisitDate),
		Description: r.Description,
	}
}
