// Package session tracks who is signed in. A session is a server-side slot
// referenced by a signed token; deleting the slot ends the session even while
// the token itself is still unexpired.
package session

import (
	"context"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	Key string        `envconfig:"AUTH_JWT_KEY" default:"perpustakaan-dev-key"`
	TTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
}

// Claims identify the session slot (ID) and its owner (Subject).
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

type Accounts interface {
	Authenticate(ctx context.Context, username, password string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

type Manager struct {
	log      *zap.Logger
	accounts Accounts
	sessions repository.SessionRepository
	key      []byte
	ttl      time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(cfg Config, accounts Accounts, sessions repository.SessionRepository, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		log:      log.Named("session"),
		accounts: accounts,
		sessions: sessions,
		key:      []byte(cfg.Key),
		ttl:      cfg.TTL,
		now:      time.Now,
		// expiry is checked against the manager clock, not jwt.TimeFunc
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Login(ctx context.Context, username, password string) (model.AuthResponse, error) {
	user, err := m.accounts.Authenticate(ctx, username, password)
	if err != nil {
		return model.AuthResponse{}, err
	}
	now := m.now().UTC()
	sess := model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.sessions.SaveSession(ctx, sess); err != nil {
		return model.AuthResponse{}, errors.Wrap(err, "save session")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		Role: user.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return model.AuthResponse{}, errors.Wrap(err, "sign token")
	}
	m.log.Debug("login", zap.String("userId", user.ID), zap.String("sessionId", sess.ID))
	return model.AuthResponse{
		AccessToken: token,
		ExpiresIn:   int(m.ttl.Seconds()),
		User:        user,
	}, nil
}

// Restore resolves a token to the signed-in account. A slot whose account
// has disappeared is cleared.
func (m *Manager) Restore(ctx context.Context, token string) (model.User, error) {
	claims, err := m.parse(token)
	if err != nil {
		return model.User{}, err
	}
	sess, err := m.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		return model.User{}, err
	}
	if sess.UserID != claims.Subject {
		return model.User{}, errs.ErrSessionClosed
	}
	if !m.now().Before(sess.ExpiresAt) {
		m.drop(ctx, sess.ID)
		return model.User{}, errs.ErrSessionClosed
	}
	user, err := m.accounts.GetByID(ctx, sess.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		m.drop(ctx, sess.ID)
		return model.User{}, errs.ErrSessionClosed
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (m *Manager) Logout(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}
	return m.sessions.DeleteSession(ctx, claims.ID)
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := new(Claims)
	t, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil || !t.Valid || claims.ID == "" {
		return nil, errs.ErrSessionClosed
	}
	return claims, nil
}

func (m *Manager) drop(ctx context.Context, id string) {
	if err := m.sessions.DeleteSession(ctx, id); err != nil {
		m.log.Warn("delete session", zap.String("sessionId", id), zap.Error(err))
	}
}
