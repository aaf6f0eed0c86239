package users_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	mem "vet-clinic-api/internal/adapters/storage/memory"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/ports/auth"
)

func newService() *users.Service {
	return users.NewService(mem.NewUserRepo(), nil).WithHashCost(bcrypt.MinCost)
}

func TestCreate_HashesPasswordAndNormalizes(t *testing.T) {
	svc := newService()

	u, err := svc.Create(context.Background(), users.Input{
		Name:     " Ana ",
		Username: "ana",
		Email:    "Ana@Example.COM",
		Password: "secret",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "ana@example.com" || u.Name != "Ana" || u.Role != auth.RoleAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret" {
		t.Fatalf("password must be hashed")
	}
	if err := svc.CheckPassword(u, "secret"); err != nil {
		t.Fatalf("check password: %v", err)
	}
	if err := svc.CheckPassword(u, "nope"); !errors.Is(err, users.ErrUserUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := svc.CheckPassword(u, ""); !errors.Is(err, users.ErrUserPasswordField) {
		t.Fatalf("expected password field error, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   users.Input
		want error
	}{
		{"no name", users.Input{Username: "a", Email: "a@b.co", Password: "x"}, users.ErrUserValidation},
		{"no username", users.Input{Name: "A", Email: "a@b.co", Password: "x"}, users.ErrUserValidation},
		{"bad email", users.Input{Name: "A", Username: "a", Email: "nope", Password: "x"}, users.ErrUserValidation},
		{"no password", users.Input{Name: "A", Username: "a", Email: "a@b.co"}, users.ErrUserPasswordField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreate_ConflictKindFollowsLinkedProfile(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, users.Input{Name: "O", Username: "owner", Email: "o@x.io", Password: "p", Role: "OWNER", OwnerID: "o-1"}); err != nil {
		t.Fatalf("seed owner account: %v", err)
	}
	if _, err := svc.Create(ctx, users.Input{Name: "V", Username: "vet", Email: "v@x.io", Password: "p", Role: "VET", VetID: "v-1"}); err != nil {
		t.Fatalf("seed vet account: %v", err)
	}
	if _, err := svc.Create(ctx, users.Input{Name: "A", Username: "admin", Email: "a@x.io", Password: "p", Role: "ADMIN"}); err != nil {
		t.Fatalf("seed admin account: %v", err)
	}

	_, err := svc.Create(ctx, users.Input{Name: "X", Username: "x", Email: "O@x.io", Password: "p"})
	if !errors.Is(err, users.ErrOwnerAlreadyExists) {
		t.Fatalf("expected owner conflict, got %v", err)
	}
	_, err = svc.Create(ctx, users.Input{Name: "X", Username: "vet", Email: "new@x.io", Password: "p"})
	if !errors.Is(err, users.ErrVetAlreadyExists) {
		t.Fatalf("expected vet conflict, got %v", err)
	}
	_, err = svc.Create(ctx, users.Input{Name: "X", Username: "admin", Email: "new@x.io", Password: "p"})
	if !errors.Is(err, users.ErrUserAlreadyExists) {
		t.Fatalf("expected user conflict, got %v", err)
	}
}

func TestUpdate_EmptyPasswordKeepsHash(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Create(ctx, users.Input{Name: "A", Username: "a", Email: "a@x.io", Password: "first"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, u.ID, users.Input{Name: "B", Username: "a", Email: "a@x.io"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "B" || updated.PasswordHash != u.PasswordHash {
		t.Fatalf("expected name change and same hash: %+v", updated)
	}

	updated, err = svc.Update(ctx, u.ID, users.Input{Name: "B", Username: "a", Email: "a@x.io", Password: "second"})
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
	if err := svc.CheckPassword(updated, "second"); err != nil {
		t.Fatalf("new password should match: %v", err)
	}

	if _, err := svc.Update(ctx, "missing", users.Input{Name: "B", Username: "a", Email: "a@x.io"}); !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLinkedToAndDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Create(ctx, users.Input{Name: "O", Username: "o", Email: "o@x.io", Password: "p", Role: "OWNER", OwnerID: "o-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.LinkedTo(ctx, auth.RoleOwner, "o-1")
	if err != nil || got.ID != u.ID {
		t.Fatalf("linked to: %+v %v", got, err)
	}
	if _, err := svc.LinkedTo(ctx, auth.RoleVet, "o-1"); !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected not found for vet link, got %v", err)
	}
	if _, err := svc.LinkedTo(ctx, auth.RoleAdmin, "o-1"); !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected not found for admin link, got %v", err)
	}

	if _, err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, u.ID); !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestUserClaims(t *testing.T) {
	u := users.User{ID: "u1", Email: "v@x.io", Role: auth.RoleVet, VetID: "v-1"}
	c := u.Claims()
	if c.UserID != "u1" || c.Role != auth.RoleVet || c.VetID != "v-1" || c.OwnerID != "" {
		t.Fatalf("unexpected claims: %+v", c)
	}
}
