package authentication

import (
	"context"
	"net/http"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/auth"
)

var (
	ErrLoginUnavailable = apperr.New("LOGIN_UNAVAILABLE", http.StatusNotImplemented,
		"login is handled by the external identity provider")
	ErrTokenMissing = apperr.New("TOKEN_MISSING", http.StatusUnauthorized,
		"a bearer token is required")
)

// TokenIssuer lo implementa adapters/auth/jwt.Manager.
type TokenIssuer interface {
	Issue(c auth.Claims) (string, time.Time, error)
}

// Accounts lo implementa *users.Service.
type Accounts interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
	CheckPassword(u users.User, password string) error
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      users.User
}

type Service struct {
	accounts Accounts
	issuer   TokenIssuer
	revoker  auth.TokenRevoker
	log      logger.Logger
}

// NewService: issuer nil => login deshabilitado (AUTH_MODE=remote).
func NewService(accounts Accounts, issuer TokenIssuer, revoker auth.TokenRevoker, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		accounts: accounts,
		issuer:   issuer,
		revoker:  revoker,
		log:      log.With(map[string]any{"module": "authentication"}),
	}
}

// Login: email desconocido => UserNotFound, password vacío => UserPasswordField,
// password incorrecto => UserUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	if s.issuer == nil {
		return Session{}, ErrLoginUnavailable
	}

	u, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if err := s.accounts.CheckPassword(u, password); err != nil {
		s.log.Warn("auth.login.rejected", map[string]any{"user_id": u.ID})
		return Session{}, err
	}

	token, exp, err := s.issuer.Issue(u.Claims())
	if err != nil {
		s.log.Error("auth.login.failed", map[string]any{"user_id": u.ID, "error": err})
		return Session{}, apperr.Unknown(err)
	}

	s.log.Info("auth.login", map[string]any{"user_id": u.ID, "role": string(u.Role)})
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Logout revoca el token hasta que expire.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenMissing
	}
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, token); err != nil {
		s.log.Error("auth.logout.failed", map[string]any{"error": err})
		return apperr.Unknown(err)
	}
	return nil
}
