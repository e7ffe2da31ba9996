// Package session turns a user id into an opaque signed token and back.
// It knows nothing about HTTP; handlers decide where the token is carried.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "shrtn"

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

type Claims struct {
	UserID   uint `json:"uid"`
	Remember bool `json:"rem,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func NewManager(secret []byte, ttl, rememberTTL time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: empty secret")
	}
	return &Manager{
		secret:      secret,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}, nil
}

// Lifetime is how long a token issued with the given remember flag stays valid.
func (m *Manager) Lifetime(remember bool) time.Duration {
	if remember {
		return m.rememberTTL
	}
	return m.ttl
}

func (m *Manager) Issue(userID uint, remember bool) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.Lifetime(remember))
	claims := Claims{
		UserID:   userID,
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse validates signature, algorithm, issuer and expiry and returns the user id.
func (m *Manager) Parse(token string) (uint, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
