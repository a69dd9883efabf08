package visits

import "time"

// Visit representa una visita clínica almacenada para una mascota.
// La identidad de fila es (PetID, VisitID): pet_id es la clave de
// partición y visit_id la columna de clustering (orden ascendente
// dentro de la partición).
type Visit struct {
	PetID       string
	VisitID     string
	VisitDate   time.Time // solo fecha, normalizada a medianoche UTC
	Description string
}

// Row es la fila cruda tal como la entrega el storage, antes del mapeo
// a dominio.
type Row struct {
	PetID       string
	VisitID     string
	VisitDate   time.Time
	Description string
}

// Set es una colección de visitas sin orden, con igualdad por valor:
// dos visitas idénticas colapsan en un único elemento. Se reemplaza al
// completo en cada población (swap, nunca merge).
type Set map[Visit]struct{}

func NewSet(vs ...Visit) Set {
	s := make(Set, len(vs))
	for _, v := range vs {
		s.Add(v)
	}
	return s
}

func (s Set) Add(v Visit) {
	s[v] = struct{}{}
}

func (s Set) Contains(v Visit) bool {
	_, ok := s[v]
	return ok
}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// NormalizeDate descarta la parte horaria: las visitas se guardan como
// fecha de calendario.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
