package vets_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	mem "vet-clinic-api/internal/adapters/storage/memory"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/domain/vets"
	"vet-clinic-api/internal/ports/auth"
)

func setup() (*vets.Service, *users.Service) {
	accounts := users.NewService(mem.NewUserRepo(), nil).WithHashCost(bcrypt.MinCost)
	return vets.NewService(mem.NewVetRepo(), accounts, nil), accounts
}

func TestCreate_CoercesSpecialtyAndLinksAccount(t *testing.T) {
	svc, accounts := setup()
	ctx := context.Background()

	v, err := svc.Create(ctx, vets.Input{
		Name: "Dr. Pérez", Email: "perez@clinic.io", Username: "perez", Password: "pw", Specialty: "reptiles",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.Specialty != vets.SpecialtyCatDog {
		t.Fatalf("expected CAT_DOG, got %s", v.Specialty)
	}

	acc, err := accounts.LinkedTo(ctx, auth.RoleVet, v.ID)
	if err != nil || acc.Role != auth.RoleVet || acc.VetID != v.ID {
		t.Fatalf("unexpected linked account: %+v %v", acc, err)
	}
}

func TestCreate_ConflictWithOwnerAccount(t *testing.T) {
	svc, accounts := setup()
	ctx := context.Background()

	if _, err := accounts.Create(ctx, users.Input{
		Name: "O", Username: "shared", Email: "o@x.io", Password: "p", Role: "OWNER", OwnerID: "o-1",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Create(ctx, vets.Input{Name: "V", Email: "v@x.io", Username: "shared", Password: "p"})
	if !errors.Is(err, users.ErrOwnerAlreadyExists) {
		t.Fatalf("expected owner conflict, got %v", err)
	}
}

func TestCoerceSpecialty(t *testing.T) {
	cases := map[string]vets.Specialty{
		"cat":     vets.SpecialtyCat,
		" DOG ":   vets.SpecialtyDog,
		"cat_dog": vets.SpecialtyCatDog,
		"":        vets.SpecialtyCatDog,
		"bird":    vets.SpecialtyCatDog,
	}
	for in, want := range cases {
		if got := vets.CoerceSpecialty(in); got != want {
			t.Fatalf("CoerceSpecialty(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := setup()
	if _, err := svc.Delete(context.Background(), "missing"); !errors.Is(err, vets.ErrVetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type failingRepo struct {
	vets.Repository
	deleteErr error
}

func (r *failingRepo) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.Repository.Delete(ctx, id)
}

func TestDelete_RowFirstThenAccount(t *testing.T) {
	accounts := users.NewService(mem.NewUserRepo(), nil).WithHashCost(bcrypt.MinCost)
	repo := &failingRepo{Repository: mem.NewVetRepo()}
	svc := vets.NewService(repo, accounts, nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, vets.Input{Name: "V", Email: "v@x.io", Username: "vv", Password: "p"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repo.deleteErr = errors.New("vets store down")
	if _, err := svc.Delete(ctx, v.ID); err == nil {
		t.Fatalf("expected delete to fail")
	}
	if _, err := accounts.LinkedTo(ctx, auth.RoleVet, v.ID); err != nil {
		t.Fatalf("account must survive a failed vet delete: %v", err)
	}

	repo.deleteErr = nil
	if _, err := svc.Delete(ctx, v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := accounts.LinkedTo(ctx, auth.RoleVet, v.ID); !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected account removed, got %v", err)
	}
}
