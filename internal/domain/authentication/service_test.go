package authentication_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vet-clinic-api/internal/adapters/auth/jwt"
	"vet-clinic-api/internal/adapters/auth/revocation"
	mem "vet-clinic-api/internal/adapters/storage/memory"
	"vet-clinic-api/internal/domain/authentication"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/ports/auth"
)

func setup(t *testing.T) (*authentication.Service, *jwt.Manager) {
	t.Helper()
	accounts := users.NewService(mem.NewUserRepo(), nil).WithHashCost(bcrypt.MinCost)
	if _, err := accounts.Create(context.Background(), users.Input{
		Name: "Vera", Username: "vera", Email: "vera@clinic.io", Password: "s3cret", Role: "VET", VetID: "v-1",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := revocation.New(100, time.Hour)
	manager := jwt.NewManager(jwt.Config{Secret: "test-secret", Issuer: "test", TTL: time.Hour}, store)
	return authentication.NewService(accounts, manager, store, nil), manager
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	svc, manager := setup(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "VERA@clinic.io", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || session.ExpiresAt.IsZero() {
		t.Fatalf("unexpected session: %+v", session)
	}

	claims, err := manager.Verify(ctx, session.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Role != auth.RoleVet || claims.VetID != "v-1" || claims.UserID != session.User.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLogin_Errors(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "ghost@clinic.io", "x"); !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Login(ctx, "vera@clinic.io", ""); !errors.Is(err, users.ErrUserPasswordField) {
		t.Fatalf("expected password field, got %v", err)
	}
	if _, err := svc.Login(ctx, "vera@clinic.io", "wrong"); !errors.Is(err, users.ErrUserUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogin_UnavailableWithoutIssuer(t *testing.T) {
	accounts := users.NewService(mem.NewUserRepo(), nil)
	svc := authentication.NewService(accounts, nil, nil, nil)

	if _, err := svc.Login(context.Background(), "a@b.co", "x"); !errors.Is(err, authentication.ErrLoginUnavailable) {
		t.Fatalf("expected login unavailable, got %v", err)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, manager := setup(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "vera@clinic.io", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := manager.Verify(ctx, session.Token); !errors.Is(err, jwt.ErrTokenRevoked) {
		t.Fatalf("expected revoked, got %v", err)
	}

	if err := svc.Logout(ctx, ""); !errors.Is(err, authentication.ErrTokenMissing) {
		t.Fatalf("expected token missing, got %v", err)
	}
}

func TestLogout_FailsWhenRevocationsAreFull(t *testing.T) {
	accounts := users.NewService(mem.NewUserRepo(), nil).WithHashCost(bcrypt.MinCost)
	if _, err := accounts.Create(context.Background(), users.Input{
		Name: "Vera", Username: "vera", Email: "vera@clinic.io", Password: "s3cret", Role: "VET", VetID: "v-1",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := revocation.New(1, time.Hour)
	manager := jwt.NewManager(jwt.Config{Secret: "test-secret", Issuer: "test", TTL: time.Hour}, store)
	svc := authentication.NewService(accounts, manager, store, nil)
	ctx := context.Background()

	first, err := svc.Login(ctx, "vera@clinic.io", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	second, err := svc.Login(ctx, "vera@clinic.io", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, first.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	err = svc.Logout(ctx, second.Token)
	if apperr.KindOf(err) != apperr.KindUnknown || !errors.Is(err, revocation.ErrStoreFull) {
		t.Fatalf("expected unknown wrapping ErrStoreFull, got %v", err)
	}

	if _, err := manager.Verify(ctx, first.Token); !errors.Is(err, jwt.ErrTokenRevoked) {
		t.Fatalf("first token must stay revoked, got %v", err)
	}
}
