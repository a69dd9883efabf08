package owners

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
	FirstName string
	LastName  string
	City      string
	Telephone string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Owner, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return Owner{}, ErrInvalidInput
	}

	now := s.now()
	o := Owner{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		City:      strings.TrimSpace(in.City),
		Telephone: strings.TrimSpace(in.Telephone),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Owner{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Owner, error) {
	return s.repo.List(ctx)
}
