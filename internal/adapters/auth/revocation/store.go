package revocation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrStoreFull: no se admite una revocación más sin desalojar otra todavía vigente.
var ErrStoreFull = errors.New("revocation store is full")

// Store guarda tokens revocados hasta que expiran por TTL.
// Nunca desaloja una revocación vigente: lleno => Revoke falla.
// Es por proceso: con varias réplicas cada una tiene su lista.
type Store struct {
	mu    sync.Mutex
	size  int
	cache *expirable.LRU[string, struct{}]
}

// New: ttl debería ser >= la vida máxima de un token. size <= 0 => sin límite.
func New(size int, ttl time.Duration) *Store {
	if size < 0 {
		size = 0
	}
	// el LRU va sin límite; el tope lo controla Revoke para no desalojar.
	return &Store{size: size, cache: expirable.NewLRU[string, struct{}](0, nil, ttl)}
}

func (s *Store) Revoke(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache.Contains(token) {
		return nil
	}
	if s.size > 0 && s.cache.Len() >= s.size {
		return ErrStoreFull
	}
	s.cache.Add(token, struct{}{})
	return nil
}

func (s *Store) IsRevoked(token string) bool {
	return s.cache.Contains(strings.TrimSpace(token))
}
