package visits

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("visit not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	VisitDate   time.Time
	Description string
}

// Create registra una visita nueva generando su visit_id.
func (s *Service) Create(ctx context.Context, petID string, in CreateInput) (Visit, error) {
	petID = strings.TrimSpace(petID)
	if _, err := uuid.Parse(petID); err != nil {
		return Visit{}, ErrInvalidInput
	}
	if in.VisitDate.IsZero() {
		return Visit{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Description) == "" {
		return Visit{}, ErrInvalidInput
	}

	v := Visit{
		PetID:       petID,
		VisitID:     uuid.NewString(),
		VisitDate:   NormalizeDate(in.VisitDate),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.repo.Upsert(ctx, v); err != nil {
		return Visit{}, err
	}
	return v, nil
}

// Upsert escribe o sobreescribe la fila (pet_id, visit_id). Idempotente.
func (s *Service) Upsert(ctx context.Context, v Visit) (Visit, error) {
	v.PetID = strings.TrimSpace(v.PetID)
	v.VisitID = strings.TrimSpace(v.VisitID)
	if _, err := uuid.Parse(v.PetID); err != nil {
		return Visit{}, ErrInvalidInput
	}
	if _, err := uuid.Parse(v.VisitID); err != nil {
		return Visit{}, ErrInvalidInput
	}
	if v.VisitDate.IsZero() {
		return Visit{}, ErrInvalidInput
	}
	if strings.TrimSpace(v.Description) == "" {
		return Visit{}, ErrInvalidInput
	}

	v.VisitDate = NormalizeDate(v.VisitDate)
	v.Description = strings.TrimSpace(v.Description)

	if err := s.repo.Upsert(ctx, v); err != nil {
		return Visit{}, err
	}
	return v, nil
}

// Delete borra por clave completa. Borrar una fila ausente no es error.
func (s *Service) Delete(ctx context.Context, petID, visitID string) error {
	petID = strings.TrimSpace(petID)
	visitID = strings.TrimSpace(visitID)
	if _, err := uuid.Parse(petID); err != nil {
		return ErrInvalidInput
	}
	if _, err := uuid.Parse(visitID); err != nil {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, Visit{PetID: petID, VisitID: visitID})
}

func (s *Service) ListAll(ctx context.Context) ([]Visit, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListForPet entrega las visitas de una mascota en orden de clustering
// (visit_id ascendente).
func (s *Service) ListForPet(ctx context.Context, petID string) ([]Visit, error) {
	petID = strings.TrimSpace(petID)
	if _, err := uuid.Parse(petID); err != nil {
		return nil, ErrInvalidInput
	}
	rows, err := s.repo.FindAllForPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// FindByID resuelve por índice secundario. El contrato del repo no
// garantiza unicidad, así que se consume el stream de forma defensiva
// y se devuelve el primer resultado.
func (s *Service) FindByID(ctx context.Context, visitID string) (Visit, error) {
	visitID = strings.TrimSpace(visitID)
	if _, err := uuid.Parse(visitID); err != nil {
		return Visit{}, ErrInvalidInput
	}

	rows, err := s.repo.FindByID(ctx, visitID)
	if err != nil {
		return Visit{}, err
	}
	defer rows.Close()

	if rows.Next() {
		return FromRow(rows.Row()), nil
	}
	if err := rows.Err(); err != nil {
		return Visit{}, err
	}
	return Visit{}, ErrNotFound
}

func collect(rows Rows) ([]Visit, error) {
	defer rows.Close()

	out := make([]Visit, 0)
	for rows.Next() {
		out = append(out, FromRow(rows.Row()))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
