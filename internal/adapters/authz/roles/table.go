package roles

import (
	"context"
	"sort"

	"vet-clinic-api/internal/ports/auth"
	"vet-clinic-api/internal/ports/authz"
)

// Table es la tabla estática rol -> permisos.
// ADMIN pasa siempre; ANONYMOUS (o rol vacío) nunca.
type Table struct {
	byRole map[auth.Role]map[string]struct{}
}

func NewTable(perms map[auth.Role][]string) *Table {
	t := &Table{byRole: make(map[auth.Role]map[string]struct{}, len(perms))}
	for role, list := range perms {
		set := make(map[string]struct{}, len(list))
		for _, p := range list {
			set[p] = struct{}{}
		}
		t.byRole[role] = set
	}
	return t
}

// Default es la tabla de la clínica.
func Default() *Table {
	return NewTable(map[auth.Role][]string{
		auth.RoleVet: {
			authz.PermAllAppointment,
			authz.PermViewOwners, authz.PermViewOwner,
			authz.PermViewVets, authz.PermViewVet, authz.PermUpdateVet,
			authz.PermViewPets, authz.PermViewPet, authz.PermUpdatePet,
		},
		auth.RoleOwner: {
			authz.PermViewAppointments, authz.PermViewAppointment,
			authz.PermCreateAppointment, authz.PermUpdateAppointment,
			authz.PermViewVets, authz.PermViewVet,
			authz.PermViewOwner, authz.PermUpdateOwner,
			authz.PermAllPet,
		},
	})
}

func (t *Table) Allowed(ctx context.Context, claims auth.Claims, permissions ...string) (bool, error) {
	switch claims.Role {
	case auth.RoleAdmin:
		return true, nil
	case auth.RoleAnonymous, "":
		return false, nil
	}

	set := t.byRole[claims.Role]
	for _, p := range permissions {
		if _, ok := set[p]; ok {
			return true, nil
		}
	}
	return false, nil
}

// PermissionsOf lista los permisos de un rol (ordenados, para debug/admin).
func (t *Table) PermissionsOf(role auth.Role) []string {
	set := t.byRole[role]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
