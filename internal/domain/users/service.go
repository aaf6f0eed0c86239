package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/auth"
)

type Service struct {
	repo Repository
	cost int
	now  func() time.Time
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		cost: bcrypt.DefaultCost,
		now:  time.Now,
		log:  log.With(map[string]any{"module": "users"}),
	}
}

// WithHashCost baja el costo de bcrypt (tests).
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

type Input struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     string

	VetID   string
	OwnerID string
}

func (s *Service) Create(ctx context.Context, in Input) (User, error) {
	u, err := s.normalize(in)
	if err != nil {
		return User{}, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return User{}, ErrUserPasswordField
	}
	if err := s.EnsureAvailable(ctx, u.Email, u.Username, ""); err != nil {
		return User{}, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, s.fail("create", err)
	}
	u.PasswordHash = hash

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return User{}, s.fail("create", err)
	}
	s.log.Info("user.create", map[string]any{"user_id": created.ID, "role": string(created.Role)})
	return created, nil
}

// Update reemplaza datos de perfil; password vacío conserva el hash actual.
func (s *Service) Update(ctx context.Context, id string, in Input) (User, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	u, err := s.normalize(in)
	if err != nil {
		return User{}, err
	}
	if err := s.EnsureAvailable(ctx, u.Email, u.Username, current.ID); err != nil {
		return User{}, err
	}

	u.ID = current.ID
	u.CreatedAt = current.CreatedAt
	u.PasswordHash = current.PasswordHash
	if strings.TrimSpace(in.Password) != "" {
		if u.PasswordHash, err = s.hash(in.Password); err != nil {
			return User{}, s.fail("update", err)
		}
	}

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, s.fail("update", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.repo.Delete(ctx, u.ID); err != nil {
		return User{}, s.fail("delete", err)
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrUserNotFound
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, s.fail("get", err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail("list", err)
	}
	return items, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, ErrUserNotFound
	}
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return User{}, s.fail("find_by_email", err)
	}
	return u, nil
}

// LinkedTo devuelve la cuenta vinculada a un owner (role OWNER) o vet (role VET).
func (s *Service) LinkedTo(ctx context.Context, role auth.Role, profileID string) (User, error) {
	var (
		u   User
		err error
	)
	switch role {
	case auth.RoleOwner:
		u, err = s.repo.FindByOwnerID(ctx, profileID)
	case auth.RoleVet:
		u, err = s.repo.FindByVetID(ctx, profileID)
	default:
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, s.fail("linked_to", err)
	}
	return u, nil
}

// EnsureAvailable falla con el 409 que corresponda si email o username ya están tomados
// por otra cuenta distinta de exceptID.
func (s *Service) EnsureAvailable(ctx context.Context, email, username, exceptID string) error {
	lookups := []func(context.Context, string) (User, error){s.repo.FindByEmail, s.repo.FindByUsername}
	values := []string{strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(username)}

	for i, find := range lookups {
		if values[i] == "" {
			continue
		}
		existing, err := find(ctx, values[i])
		if errors.Is(err, ErrUserNotFound) {
			continue
		}
		if err != nil {
			return s.fail("ensure_available", err)
		}
		if existing.ID != exceptID {
			return ConflictError(existing)
		}
	}
	return nil
}

// CheckPassword compara contra el hash; vacío => UserPasswordField, distinto => UserUnauthorized.
func (s *Service) CheckPassword(u User, password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrUserPasswordField
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrUserUnauthorized
	}
	return nil
}

func (s *Service) normalize(in Input) (User, error) {
	u := User{
		Name:     strings.TrimSpace(in.Name),
		Username: strings.TrimSpace(in.Username),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Role:     auth.ParseRole(in.Role),
		VetID:    strings.TrimSpace(in.VetID),
		OwnerID:  strings.TrimSpace(in.OwnerID),
	}
	if u.Name == "" {
		return User{}, ErrUserValidation.Withf("the user name is required")
	}
	if u.Username == "" {
		return User{}, ErrUserValidation.Withf("the user username is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return User{}, ErrUserValidation.Withf("the user email is invalid")
	}
	return u, nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Service) fail(op string, err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	s.log.Error("user."+op+".failed", map[string]any{"error": err})
	return apperr.Unknown(err)
}
