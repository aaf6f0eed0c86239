package owners_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	mem "vet-clinic-api/internal/adapters/storage/memory"
	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/ports/auth"
)

// failingAccounts delega en users.Service pero puede romper Create.
type failingAccounts struct {
	*users.Service
	createErr error
}

func (a *failingAccounts) Create(ctx context.Context, in users.Input) (users.User, error) {
	if a.createErr != nil {
		return users.User{}, a.createErr
	}
	return a.Service.Create(ctx, in)
}

func setup() (*owners.Service, *failingAccounts) {
	accounts := &failingAccounts{Service: users.NewService(mem.NewUserRepo(), nil).WithHashCost(bcrypt.MinCost)}
	return owners.NewService(mem.NewOwnerRepo(), accounts, nil), accounts
}

func validOwner() owners.Input {
	return owners.Input{
		Name:     "Laura",
		Email:    "laura@example.com",
		Username: "laura",
		Password: "secret",
		Phone:    "555-0101",
		Address:  "Calle 1",
	}
}

func TestCreate_ProvisionsOwnerAccount(t *testing.T) {
	svc, accounts := setup()
	ctx := context.Background()

	o, err := svc.Create(ctx, validOwner())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	acc, err := accounts.LinkedTo(ctx, auth.RoleOwner, o.ID)
	if err != nil {
		t.Fatalf("linked account: %v", err)
	}
	if acc.Role != auth.RoleOwner || acc.Email != "laura@example.com" {
		t.Fatalf("unexpected account: %+v", acc)
	}

	ok, err := svc.ExistsOwnerByID(ctx, o.ID)
	if err != nil || !ok {
		t.Fatalf("expected owner to exist: %v %v", ok, err)
	}
}

func TestCreate_RequiresPassword(t *testing.T) {
	svc, _ := setup()
	in := validOwner()
	in.Password = ""

	if _, err := svc.Create(context.Background(), in); !errors.Is(err, users.ErrUserPasswordField) {
		t.Fatalf("expected password field error, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := setup()

	for name, mutate := range map[string]func(*owners.Input){
		"no name":     func(in *owners.Input) { in.Name = "" },
		"bad email":   func(in *owners.Input) { in.Email = "laura" },
		"no username": func(in *owners.Input) { in.Username = " " },
	} {
		t.Run(name, func(t *testing.T) {
			in := validOwner()
			mutate(&in)
			if _, err := svc.Create(context.Background(), in); !errors.Is(err, owners.ErrOwnerValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreate_DuplicateEmailIsOwnerConflict(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	if _, err := svc.Create(ctx, validOwner()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	in := validOwner()
	in.Username = "other"

	_, err := svc.Create(ctx, in)
	if !errors.Is(err, owners.ErrOwnerAlreadyExists) {
		t.Fatalf("expected owner conflict, got %v", err)
	}
	if apperr.StatusOf(err) != 409 {
		t.Fatalf("expected 409, got %d", apperr.StatusOf(err))
	}
}

func TestCreate_RollsBackWhenAccountFails(t *testing.T) {
	svc, accounts := setup()
	accounts.createErr = errors.New("users store down")
	ctx := context.Background()

	_, err := svc.Create(ctx, validOwner())
	if apperr.KindOf(err) != apperr.KindUnknown {
		t.Fatalf("expected unknown, got %v", err)
	}

	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("owner should be rolled back, found %d", len(list))
	}
}

func TestUpdate_SyncsAccountAndKeepsPassword(t *testing.T) {
	svc, accounts := setup()
	ctx := context.Background()

	o, err := svc.Create(ctx, validOwner())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := accounts.LinkedTo(ctx, auth.RoleOwner, o.ID)

	in := validOwner()
	in.Email = "laura.new@example.com"
	in.Password = ""
	updated, err := svc.Update(ctx, o.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "laura.new@example.com" {
		t.Fatalf("unexpected email: %s", updated.Email)
	}

	after, _ := accounts.LinkedTo(ctx, auth.RoleOwner, o.ID)
	if after.Email != "laura.new@example.com" {
		t.Fatalf("account email not synced: %s", after.Email)
	}
	if after.PasswordHash != before.PasswordHash {
		t.Fatalf("empty password must keep hash")
	}

	if _, err := svc.Update(ctx, "missing", in); !errors.Is(err, owners.ErrOwnerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete_RemovesAccount(t *testing.T) {
	svc, accounts := setup()
	ctx := context.Background()

	o, err := svc.Create(ctx, validOwner())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Delete(ctx, o.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := accounts.LinkedTo(ctx, auth.RoleOwner, o.ID); !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected account removed, got %v", err)
	}
	if _, err := svc.GetByID(ctx, o.ID); !errors.Is(err, owners.ErrOwnerNotFound) {
		t.Fatalf("expected owner removed, got %v", err)
	}

	// El email queda libre otra vez.
	if _, err := svc.Create(ctx, validOwner()); err != nil {
		t.Fatalf("recreate: %v", err)
	}
}

// failingRepo delega en el repo en memoria pero puede romper Delete.
type failingRepo struct {
	owners.Repository
	deleteErr error
}

func (r *failingRepo) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.Repository.Delete(ctx, id)
}

func TestDelete_KeepsAccountWhenOwnerDeleteFails(t *testing.T) {
	accounts := &failingAccounts{Service: users.NewService(mem.NewUserRepo(), nil).WithHashCost(bcrypt.MinCost)}
	repo := &failingRepo{Repository: mem.NewOwnerRepo()}
	svc := owners.NewService(repo, accounts, nil)
	ctx := context.Background()

	o, err := svc.Create(ctx, validOwner())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repo.deleteErr = errors.New("owners store down")
	if _, err := svc.Delete(ctx, o.ID); apperr.KindOf(err) != apperr.KindUnknown {
		t.Fatalf("expected unknown, got %v", err)
	}

	if _, err := accounts.LinkedTo(ctx, auth.RoleOwner, o.ID); err != nil {
		t.Fatalf("account must survive a failed owner delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, o.ID); err != nil {
		t.Fatalf("owner must still exist: %v", err)
	}
}
