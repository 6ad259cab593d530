package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/churchai-session/internal/errors"
	"github.com/jrsteele09/churchai-session/users"
	"github.com/pkg/errors"
)

// Type distinguishes access tokens from refresh tokens. Each endpoint accepts exactly one of them.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

const (
	DefaultAccessTokenExpiry  = 24 * time.Hour
	DefaultRefreshTokenExpiry = 30 * 24 * time.Hour
)

// Claims are the JWT claims carried by both token types
type Claims struct {
	Email string         `json:"email"`
	Role  users.RoleType `json:"role"`
	Type  Type           `json:"type"`
	jwt.RegisteredClaims
}

type Manager struct {
	signer             Signer
	revoked            RevocationList
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithRevocationList(list RevocationList) ManagerOption {
	return func(m *Manager) {
		m.revoked = list
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:  signer,
		revoked: NewMemoryRevocationList(),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = DefaultAccessTokenExpiry
	}
	if m.refreshTokenExpiry <= 0 {
		m.refreshTokenExpiry = DefaultRefreshTokenExpiry
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

func (m *Manager) CreateAccessToken(user *users.User) (string, error) {
	return m.create(user, TypeAccess, m.accessTokenExpiry)
}

func (m *Manager) CreateRefreshToken(user *users.User) (string, error) {
	return m.create(user, TypeRefresh, m.refreshTokenExpiry)
}

func (m *Manager) create(user *users.User, tokenType Type, expiry time.Duration) (string, error) {
	now := m.nowFunc()
	claims := &Claims{
		Email: user.Email,
		Role:  user.Role,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(), // jti, used for revocation
		},
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrapf(err, "[Manager.create] sign %s token", tokenType)
	}
	return signed, nil
}

// Verify parses rawToken and checks its signature, expiry, revocation and type.
// Expired tokens return ErrTokenExpired, every other failure ErrInvalidToken.
func (m *Manager) Verify(rawToken string, expected Type) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := m.signer.Parse(rawToken, claims,
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "%v", err)
	}
	if !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.Type != expected {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "expected %s token, got %q", expected, claims.Type)
	}
	if claims.ID != "" && m.revoked.Revoked(claims.ID, m.nowFunc()) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token revoked")
	}
	return claims, nil
}

// Revoke invalidates the token described by claims until its natural expiry
func (m *Manager) Revoke(claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	m.revoked.Revoke(claims.ID, claims.ExpiresAt.Time, m.nowFunc())
	return nil
}
