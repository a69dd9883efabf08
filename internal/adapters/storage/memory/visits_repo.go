package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-visits/internal/domain/visits"
)

// visitRepo emula el layout wide-column en memoria: particiones por
// pet_id con orden de clustering por visit_id, y un índice secundario
// sobre visit_id que existe recién tras EnsureSchema. Antes de eso,
// FindByID cae a un scan completo con filtro (más lento pero correcto),
// igual que el storage real durante el arranque.
type visitRepo struct {
	mu         sync.RWMutex
	partitions map[string]map[string]visits.Row // pet_id -> visit_id -> fila
	index      map[string][]string              // visit_id -> pet_ids
	indexed    bool
}

func NewVisitRepo() visits.Repository {
	return &visitRepo{
		partitions: make(map[string]map[string]visits.Row),
	}
}

// EnsureSchema materializa el índice secundario. Idempotente.
func (r *visitRepo) EnsureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed {
		return nil
	}

	r.index = make(map[string][]string)
	for petID, part := range r.partitions {
		for visitID := range part {
			r.index[visitID] = append(r.index[visitID], petID)
		}
	}
	r.indexed = true
	return nil
}

func (r *visitRepo) FindAll(ctx context.Context) (visits.Rows, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]visits.Row, 0)
	for _, part := range r.partitions {
		out = append(out, partitionRows(part)...)
	}
	return newSliceRows(out), nil
}

func (r *visitRepo) FindAllForPet(ctx context.Context, petID string) (visits.Rows, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return newSliceRows(partitionRows(r.partitions[petID])), nil
}

func (r *visitRepo) FindByID(ctx context.Context, visitID string) (visits.Rows, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]visits.Row, 0, 1)
	if r.indexed {
		for _, petID := range r.index[visitID] {
			if row, ok := r.partitions[petID][visitID]; ok {
				out = append(out, row)
			}
		}
	} else {
		// Fallback pre-índice: scan completo con filtro.
		for _, part := range r.partitions {
			if row, ok := part[visitID]; ok {
				out = append(out, row)
			}
		}
	}
	return newSliceRows(out), nil
}

func (r *visitRepo) Upsert(ctx context.Context, v visits.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.PetID) == "" || strings.TrimSpace(v.VisitID) == "" {
		return errors.New("visit key required")
	}

	part := r.partitions[v.PetID]
	if part == nil {
		part = make(map[string]visits.Row)
		r.partitions[v.PetID] = part
	}

	_, existed := part[v.VisitID]
	part[v.VisitID] = visits.Row{
		PetID:       v.PetID,
		VisitID:     v.VisitID,
		VisitDate:   v.VisitDate,
		Description: v.Description,
	}

	if r.indexed && !existed {
		r.index[v.VisitID] = append(r.index[v.VisitID], v.PetID)
	}
	return nil
}

// Delete borra por clave completa; borrar una fila ausente no es error.
func (r *visitRepo) Delete(ctx context.Context, v visits.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	part, ok := r.partitions[v.PetID]
	if !ok {
		return nil
	}
	if _, ok := part[v.VisitID]; !ok {
		return nil
	}
	delete(part, v.VisitID)

	if r.indexed {
		refs := r.index[v.VisitID]
		for i, petID := range refs {
			if petID == v.PetID {
				r.index[v.VisitID] = append(refs[:i], refs[i+1:]...)
				break
			}
		}
	}
	return nil
}

// partitionRows devuelve las filas de una partición en orden de
// clustering (visit_id ascendente).
func partitionRows(part map[string]visits.Row) []visits.Row {
	out := make([]visits.Row, 0, len(part))
	for _, row := range part {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitID < out[j].VisitID })
	return out
}

// sliceRows implementa la secuencia lazy sobre un snapshot en memoria.
type sliceRows struct {
	rows []visits.Row
	i    int
}

func newSliceRows(rows []visits.Row) *sliceRows {
	return &sliceRows{rows: rows, i: -1}
}

func (s *sliceRows) Next() bool {
	s.i++
	return s.i < len(s.rows)
}

func (s *sliceRows) Row() visits.Row { return s.rows[s.i] }
func (s *sliceRows) Err() error      { return nil }
func (s *sliceRows) Close() error    { return nil }
