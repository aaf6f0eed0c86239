package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int

	// Máximo de clientes con limiter en memoria (LRU).
	MaxClients int
}

// RateLimit aplica un token bucket por cliente (IP, o usuario si hay claims).
// RPS <= 0 deshabilita el límite.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(math.Ceil(cfg.RequestsPerSecond))
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 10000
	}

	store := newLimiterStore(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := store.get(clientKey(r))
			if !lim.Allow() {
				retry := int(math.Ceil(1 / cfg.RequestsPerSecond))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"kind":    "RATE_LIMITED",
					"message": "too many requests",
					"status":  http.StatusTooManyRequests,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *rate.Limiter]
	cfg   RateLimitConfig
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	c, _ := lru.New[string, *rate.Limiter](cfg.MaxClients)
	return &limiterStore{cache: c, cfg: cfg}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lim, ok := s.cache.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)
	s.cache.Add(key, lim)
	return lim
}

func clientKey(r *http.Request) string {
	if c, ok := GetClaims(r.Context()); ok && c.UserID != "" {
		return "user:" + c.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
