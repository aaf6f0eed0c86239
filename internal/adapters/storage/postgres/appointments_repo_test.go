package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"vet-clinic-api/internal/domain/appointments"
)

func TestReferenceError_MapsBrokenForeignKeys(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"appointments_owner_id_fkey", appointments.ErrOwnerNotFound},
		{"appointments_vet_id_fkey", appointments.ErrVetNotFound},
		{"appointments_pet_id_fkey", appointments.ErrPetNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: tc.constraint})
			if got := referenceError(err); !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestReferenceError_PassesOtherErrors(t *testing.T) {
	if referenceError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}

	unique := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "appointments_pkey"}
	if got := referenceError(unique); got != error(unique) {
		t.Fatalf("expected unique violation untouched, got %v", got)
	}

	other := &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: "pets_owner_id_fkey"}
	if got := referenceError(other); got != error(other) {
		t.Fatalf("expected unknown constraint untouched, got %v", got)
	}
}
