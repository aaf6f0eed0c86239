package memory

import "sync"

// keyedMutex serializa por clave; las entradas se liberan cuando nadie las usa.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	key  string
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock toma las claves en el orden recibido (el llamador las pasa ordenadas)
// y devuelve la función que las suelta en orden inverso.
func (k *keyedMutex) Lock(keys ...string) func() {
	held := make([]*keyedEntry, 0, len(keys))
	for _, key := range keys {
		if containsKey(held, key) {
			continue
		}
		k.mu.Lock()
		e, ok := k.locks[key]
		if !ok {
			e = &keyedEntry{key: key}
			k.locks[key] = e
		}
		e.refs++
		k.mu.Unlock()

		e.mu.Lock()
		held = append(held, e)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			e := held[i]
			e.mu.Unlock()

			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.locks, e.key)
			}
			k.mu.Unlock()
		}
	}
}

func containsKey(entries []*keyedEntry, key string) bool {
	for _, e := range entries {
		if e.key == key {
			return true
		}
	}
	return false
}
