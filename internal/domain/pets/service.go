package pets

import (
	"context"
	"errors"
	"strings"

	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/platform/logger"
)

type Service struct {
	repo   Repository
	owners OwnerDirectory
	log    logger.Logger
}

func NewService(repo Repository, owners OwnerDirectory, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		owners: owners,
		log:    log.With(map[string]any{"module": "pets"}),
	}
}

type Input struct {
	OwnerID string
	Name    string
	Type    string
	Breed   string
	Color   string
	Age     int
	Weight  float64
}

// Create: validación -> owner existe -> (owner, name, type) libre -> persistencia.
func (s *Service) Create(ctx context.Context, in Input) (Pet, error) {
	p, err := validate(in)
	if err != nil {
		return Pet{}, err
	}
	if err := s.ensureOwner(ctx, p.OwnerID); err != nil {
		return Pet{}, s.fail("create", err)
	}
	if err := s.ensureUnique(ctx, p, ""); err != nil {
		return Pet{}, s.fail("create", err)
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Pet{}, s.fail("create", err)
	}
	s.log.Info("pet.create", map[string]any{"pet_id": created.ID, "owner_id": created.OwnerID})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Pet, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	p, err := validate(in)
	if err != nil {
		return Pet{}, err
	}
	if err := s.ensureOwner(ctx, p.OwnerID); err != nil {
		return Pet{}, s.fail("update", err)
	}
	if err := s.ensureUnique(ctx, p, current.ID); err != nil {
		return Pet{}, s.fail("update", err)
	}

	p.ID = current.ID
	p.CreatedAt = current.CreatedAt
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Pet{}, s.fail("update", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (Pet, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return Pet{}, s.fail("delete", err)
	}
	return current, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrPetNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, s.fail("get", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Pet, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail("list", err)
	}
	return items, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return nil, s.fail("list_by_owner", err)
	}
	items, err := s.repo.ListByOwner(ctx, strings.TrimSpace(ownerID))
	if err != nil {
		return nil, s.fail("list_by_owner", err)
	}
	return items, nil
}

// ExistsPetByID satisface appointments.PetDirectory.
func (s *Service) ExistsPetByID(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, strings.TrimSpace(id))
}

func (s *Service) ensureOwner(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrOwnerNotFound
	}
	ok, err := s.owners.ExistsOwnerByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOwnerNotFound
	}
	return nil
}

func (s *Service) ensureUnique(ctx context.Context, p Pet, exceptID string) error {
	existing, err := s.repo.FindByOwnerNameType(ctx, p.OwnerID, p.Name, p.Type)
	if errors.Is(err, ErrPetNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		return ErrPetAlreadyExists
	}
	return nil
}

func validate(in Input) (Pet, error) {
	p := Pet{
		OwnerID: strings.TrimSpace(in.OwnerID),
		Name:    strings.TrimSpace(in.Name),
		Type:    CoerceType(in.Type),
		Breed:   strings.TrimSpace(in.Breed),
		Color:   strings.TrimSpace(in.Color),
		Age:     in.Age,
		Weight:  in.Weight,
	}
	switch {
	case p.Name == "":
		return Pet{}, ErrPetValidation.Withf("the pet name is required")
	case p.Breed == "":
		return Pet{}, ErrPetValidation.Withf("the pet breed is required")
	case p.Age < 1:
		return Pet{}, ErrPetValidation.Withf("the pet age must be at least 1")
	case p.Weight < 0:
		return Pet{}, ErrPetValidation.Withf("the pet weight cannot be negative")
	}
	return p, nil
}

func (s *Service) fail(op string, err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	s.log.Error("pet."+op+".failed", map[string]any{"error": err})
	return apperr.Unknown(err)
}
