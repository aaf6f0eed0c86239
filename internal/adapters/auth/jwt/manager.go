package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vet-clinic-api/internal/ports/auth"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// RevocationChecker lo implementa adapters/auth/revocation.Store.
type RevocationChecker interface {
	IsRevoked(token string) bool
}

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type clinicClaims struct {
	gojwt.RegisteredClaims
	Email   string `json:"email"`
	Role    string `json:"role"`
	VetID   string `json:"vet_id,omitempty"`
	OwnerID string `json:"owner_id,omitempty"`
}

// Manager emite y verifica tokens HS256. Implementa auth.AuthVerifier.
type Manager struct {
	cfg     Config
	revoked RevocationChecker
	now     func() time.Time
}

func NewManager(cfg Config, revoked RevocationChecker) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 31 * 24 * time.Hour
	}
	return &Manager{cfg: cfg, revoked: revoked, now: time.Now}
}

// Issue firma un token para las claims y devuelve su expiración.
func (m *Manager) Issue(c auth.Claims) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.TTL)

	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, clinicClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.cfg.Issuer,
			Subject:   c.UserID,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
			NotBefore: gojwt.NewNumericDate(now.Add(-10 * time.Second)),
		},
		Email:   c.Email,
		Role:    string(c.Role),
		VetID:   c.VetID,
		OwnerID: c.OwnerID,
	})

	signed, err := tok.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *Manager) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenInvalid
	}
	if m.revoked != nil && m.revoked.IsRevoked(token) {
		return auth.Claims{}, ErrTokenRevoked
	}

	parsed, err := gojwt.ParseWithClaims(
		token,
		&clinicClaims{},
		func(t *gojwt.Token) (any, error) {
			if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(m.cfg.Secret), nil
		},
		gojwt.WithIssuer(m.cfg.Issuer),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return auth.Claims{}, ErrTokenExpired
		}
		return auth.Claims{}, ErrTokenInvalid
	}

	cc, ok := parsed.Claims.(*clinicClaims)
	if !ok || !parsed.Valid || strings.TrimSpace(cc.Subject) == "" {
		return auth.Claims{}, ErrTokenInvalid
	}

	return auth.Claims{
		UserID:  cc.Subject,
		Email:   cc.Email,
		Role:    auth.ParseRole(cc.Role),
		VetID:   cc.VetID,
		OwnerID: cc.OwnerID,
	}, nil
}
