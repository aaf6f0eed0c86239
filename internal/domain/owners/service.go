package owners

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

// Accounts es lo que owners necesita de users (lo implementa *users.Service).
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
		log:      log.With(map[string]any{"module": "owners"}),
	}
}

type Input struct {
	Name     string
	Email    string
	Username string
	Password string
	Phone    string
	Address  string
}

// Create registra el owner y su cuenta OWNER. Si la cuenta falla, se revierte el owner.
func (s *Service) Create(ctx context.Context, in Input) (Owner, error) {
	o, err := validate(in)
	if err != nil {
		return Owner{}, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return Owner{}, users.ErrUserPasswordField
	}
	if err := s.accounts.EnsureAvailable(ctx, o.Email, o.Username, ""); err != nil {
		return Owner{}, err
	}

	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return Owner{}, s.fail("create", err)
	}

	if _, err := s.accounts.Create(ctx, s.accountInput(created, in.Password)); err != nil {
		if derr := s.repo.Delete(ctx, created.ID); derr != nil {
			s.log.Error("owner.create.rollback_failed", map[string]any{"owner_id": created.ID, "error": derr})
		}
		return Owner{}, s.fail("create", err)
	}

	s.log.Info("owner.create", map[string]any{"owner_id": created.ID})
	return created, nil
}

// Update: password vacío conserva el de la cuenta vinculada.
func (s *Service) Update(ctx context.Context, id string, in Input) (Owner, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Owner{}, err
	}
	o, err := validate(in)
	if err != nil {
		return Owner{}, err
	}

	account, err := s.accounts.LinkedTo(ctx, auth.RoleOwner, current.ID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return Owner{}, s.fail("update", err)
	}
	if err := s.accounts.EnsureAvailable(ctx, o.Email, o.Username, account.ID); err != nil {
		return Owner{}, err
	}

	o.ID = current.ID
	o.CreatedAt = current.CreatedAt
	updated, err := s.repo.Update(ctx, o)
	if err != nil {
		return Owner{}, s.fail("update", err)
	}

	if account.ID != "" {
		if _, err := s.accounts.Update(ctx, account.ID, s.accountInput(updated, in.Password)); err != nil {
			return Owner{}, s.fail("update", err)
		}
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (Owner, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Owner{}, err
	}

	account, err := s.accounts.LinkedTo(ctx, auth.RoleOwner, current.ID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return Owner{}, s.fail("delete", err)
	}

	// primero la fila: si falla, la cuenta sigue intacta.
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return Owner{}, s.fail("delete", err)
	}
	if account.ID != "" {
		if _, err := s.accounts.Delete(ctx, account.ID); err != nil {
			s.log.Error("owner.delete.account_orphaned", map[string]any{"owner_id": current.ID, "user_id": account.ID, "error": err})
			return Owner{}, s.fail("delete", err)
		}
	}
	s.log.Info("owner.delete", map[string]any{"owner_id": current.ID})
	return current, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Owner{}, ErrOwnerNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Owner{}, s.fail("get", err)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context) ([]Owner, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail("list", err)
	}
	return items, nil
}

// ExistsOwnerByID satisface appointments.OwnerDirectory y pets.OwnerDirectory.
func (s *Service) ExistsOwnerByID(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, strings.TrimSpace(id))
}

func (s *Service) accountInput(o Owner, password string) users.Input {
	return users.Input{
		Name:     o.Name,
		Username: o.Username,
		Email:    o.Email,
		Password: password,
		Role:     string(auth.RoleOwner),
		OwnerID:  o.ID,
	}
}

func validate(in Input) (Owner, error) {
	o := Owner{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Username: strings.TrimSpace(in.Username),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
	}
	if o.Name == "" {
		return Owner{}, ErrOwnerValidation.Withf("the owner name is required")
	}
	if _, err := mail.ParseAddress(o.Email); err != nil {
		return Owner{}, ErrOwnerValidation.Withf("the owner email is invalid")
	}
	if o.Username == "" {
		return Owner{}, ErrOwnerValidation.Withf("the owner username is required")
	}
	return o, nil
}

func (s *Service) fail(op string, err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	s.log.Error("owner."+op+".failed", map[string]any{"error": err})
	return apperr.Unknown(err)
}
