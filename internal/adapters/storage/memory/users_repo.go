package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vet-clinic-api/internal/domain/users"
)

type userRepo struct {
	mu   sync.RWMutex
	byID map[string]users.User
	now  func() time.Time
}

func NewUserRepo() users.Repository {
	return &userRepo{
		byID: make(map[string]users.User),
		now:  time.Now,
	}
}

func (r *userRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(u, "") {
		return users.User{}, users.ErrUserAlreadyExists
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.byID[u.ID] = u
	return u, nil
}

func (r *userRepo) Update(ctx context.Context, u users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[u.ID]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	if r.taken(u, u.ID) {
		return users.User{}, users.ErrUserAlreadyExists
	}
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = r.now().UTC()
	r.byID[u.ID] = u
	return u, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return users.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.findOne(func(u users.User) bool { return u.ID == id })
}

func (r *userRepo) List(ctx context.Context) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (users.User, error) {
	return r.findOne(func(u users.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (users.User, error) {
	return r.findOne(func(u users.User) bool { return u.Username == username })
}

func (r *userRepo) FindByOwnerID(ctx context.Context, ownerID string) (users.User, error) {
	return r.findOne(func(u users.User) bool { return ownerID != "" && u.OwnerID == ownerID })
}

func (r *userRepo) FindByVetID(ctx context.Context, vetID string) (users.User, error) {
	return r.findOne(func(u users.User) bool { return vetID != "" && u.VetID == vetID })
}

func (r *userRepo) findOne(match func(users.User) bool) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if match(u) {
			return u, nil
		}
	}
	return users.User{}, users.ErrUserNotFound
}

// taken: mismas reglas que los índices únicos de Postgres (email, username).
func (r *userRepo) taken(u users.User, exceptID string) bool {
	for id, other := range r.byID {
		if id == exceptID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) || other.Username == u.Username {
			return true
		}
	}
	return false
}
