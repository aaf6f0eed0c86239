package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vet-clinic-api/internal/domain/vets"
)

type vetRepo struct {
	mu   sync.RWMutex
	byID map[string]vets.Vet
	now  func() time.Time
}

func NewVetRepo() vets.Repository {
	return &vetRepo{
		byID: make(map[string]vets.Vet),
		now:  time.Now,
	}
}

func (r *vetRepo) Create(ctx context.Context, v vets.Vet) (vets.Vet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	v.ID = uuid.NewString()
	v.CreatedAt = now
	v.UpdatedAt = now
	r.byID[v.ID] = v
	return v, nil
}

func (r *vetRepo) Update(ctx context.Context, v vets.Vet) (vets.Vet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[v.ID]
	if !ok {
		return vets.Vet{}, vets.ErrVetNotFound
	}
	v.CreatedAt = current.CreatedAt
	v.UpdatedAt = r.now().UTC()
	r.byID[v.ID] = v
	return v, nil
}

func (r *vetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return vets.ErrVetNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *vetRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return vets.Vet{}, vets.ErrVetNotFound
	}
	return v, nil
}

func (r *vetRepo) List(ctx context.Context) ([]vets.Vet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vets.Vet, 0, len(r.byID))
	for _, v := range r.byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *vetRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok, nil
}
