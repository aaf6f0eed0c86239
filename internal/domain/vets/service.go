package vets

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/auth"
)

// Accounts lo implementa *users.Service.
type Accounts interface {
	EnsureAvailable(ctx context.Context, email, username, exceptID string) error
	Create(ctx context.Context, in users.Input) (users.User, error)
	Update(ctx context.Context, id string, in users.Input) (users.User, error)
	Delete(ctx context.Context, id string) (users.User, error)
	LinkedTo(ctx context.Context, role auth.Role, profileID string) (users.User, error)
}

type Service struct {
	repo     Repository
	accounts Accounts
	log      logger.Logger
}

func NewService(repo Repository, accounts Accounts, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		accounts: accounts,
		log:      log.With(map[string]any{"module": "vets"}),
	}
}

type Input struct {
	Name      string
	Email     string
	Username  string
	Password  string
	Specialty string
}

// Create registra el vet y su cuenta VET; si la cuenta falla se borra el vet.
func (s *Service) Create(ctx context.Context, in Input) (Vet, error) {
	v, err := validate(in)
	if err != nil {
		return Vet{}, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return Vet{}, users.ErrUserPasswordField
	}
	if err := s.accounts.EnsureAvailable(ctx, v.Email, v.Username, ""); err != nil {
		return Vet{}, err
	}

	created, err := s.repo.Create(ctx, v)
	if err != nil {
		return Vet{}, s.fail("create", err)
	}
	if _, err := s.accounts.Create(ctx, accountInput(created, in.Password)); err != nil {
		if derr := s.repo.Delete(ctx, created.ID); derr != nil {
			s.log.Error("vet.create.rollback_failed", map[string]any{"vet_id": created.ID, "error": derr})
		}
		return Vet{}, s.fail("create", err)
	}

	s.log.Info("vet.create", map[string]any{"vet_id": created.ID, "specialty": string(created.Specialty)})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Vet, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Vet{}, err
	}
	v, err := validate(in)
	if err != nil {
		return Vet{}, err
	}

	account, err := s.accounts.LinkedTo(ctx, auth.RoleVet, current.ID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return Vet{}, s.fail("update", err)
	}
	if err := s.accounts.EnsureAvailable(ctx, v.Email, v.Username, account.ID); err != nil {
		return Vet{}, err
	}

	v.ID = current.ID
	v.CreatedAt = current.CreatedAt
	updated, err := s.repo.Update(ctx, v)
	if err != nil {
		return Vet{}, s.fail("update", err)
	}
	if account.ID != "" {
		if _, err := s.accounts.Update(ctx, account.ID, accountInput(updated, in.Password)); err != nil {
			return Vet{}, s.fail("update", err)
		}
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (Vet, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Vet{}, err
	}

	account, err := s.accounts.LinkedTo(ctx, auth.RoleVet, current.ID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return Vet{}, s.fail("delete", err)
	}

	// primero la fila: si falla, la cuenta sigue intacta.
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return Vet{}, s.fail("delete", err)
	}
	if account.ID != "" {
		if _, err := s.accounts.Delete(ctx, account.ID); err != nil {
			s.log.Error("vet.delete.account_orphaned", map[string]any{"vet_id": current.ID, "user_id": account.ID, "error": err})
			return Vet{}, s.fail("delete", err)
		}
	}
	return current, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Vet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Vet{}, ErrVetNotFound
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Vet{}, s.fail("get", err)
	}
	return v, nil
}

func (s *Service) List(ctx context.Context) ([]Vet, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail("list", err)
	}
	return items, nil
}

// ExistsVetByID satisface appointments.VetDirectory.
func (s *Service) ExistsVetByID(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, strings.TrimSpace(id))
}

func accountInput(v Vet, password string) users.Input {
	return users.Input{
		Name:     v.Name,
		Username: v.Username,
		Email:    v.Email,
		Password: password,
		Role:     string(auth.RoleVet),
		VetID:    v.ID,
	}
}

func validate(in Input) (Vet, error) {
	v := Vet{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Username:  strings.TrimSpace(in.Username),
		Specialty: CoerceSpecialty(in.Specialty),
	}
	if v.Name == "" {
		return Vet{}, ErrVetValidation.Withf("the vet name is required")
	}
	if _, err := mail.ParseAddress(v.Email); err != nil {
		return Vet{}, ErrVetValidation.Withf("the vet email is invalid")
	}
	if v.Username == "" {
		return Vet{}, ErrVetValidation.Withf("the vet username is required")
	}
	return v, nil
}

func (s *Service) fail(op string, err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	s.log.Error("vet."+op+".failed", map[string]any{"error": err})
	return apperr.Unknown(err)
}
