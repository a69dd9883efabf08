package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	OwnerID   string
	Name      string
	BirthDate *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	ownerID := strings.TrimSpace(in.OwnerID)
	if _, err := uuid.Parse(ownerID); err != nil {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		BirthDate: in.BirthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}
