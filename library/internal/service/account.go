package service

import (
	"context"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordLen is the longest input bcrypt hashes.
const maxPasswordLen = 72

type Account struct {
	log  *zap.Logger
	repo repository.AccountRepository
	now  func() time.Time
	cost int
}

type AccountOption func(*Account)

func WithAccountClock(now func() time.Time) AccountOption {
	return func(a *Account) { a.now = now }
}

func WithBcryptCost(cost int) AccountOption {
	return func(a *Account) { a.cost = cost }
}

func NewAccount(repo repository.AccountRepository, log *zap.Logger, opts ...AccountOption) *Account {
	a := &Account{
		log:  log.Named("account"),
		repo: repo,
		now:  time.Now,
		cost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register creates an ordinary user. The role is never taken from the request.
func (s *Account) Register(ctx context.Context, req model.UserCreateRequest) (model.User, error) {
	return s.create(ctx, req, model.RoleUser)
}

// CreateAdmin creates a catalog maintainer. Only reachable from the CLI.
func (s *Account) CreateAdmin(ctx context.Context, req model.UserCreateRequest) (model.User, error) {
	return s.create(ctx, req, model.RoleAdmin)
}

func (s *Account) create(ctx context.Context, req model.UserCreateRequest, role model.Role) (model.User, error) {
	hash, err := s.hash(req.Password)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.repo.CreateUser(ctx, model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("account created", zap.String("id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Authenticate reports ErrInvalidCredentials for an unknown username and a
// wrong password alike.
func (s *Account) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		return model.User{}, errs.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.User{}, errs.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Account) GetByID(ctx context.Context, id string) (model.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Account) UpdateProfile(ctx context.Context, id string, req model.ProfileUpdateRequest) (model.User, error) {
	return s.repo.UpdateUser(ctx, id, req)
}

func (s *Account) ChangePassword(ctx context.Context, id, current, next string) (bool, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return false, errs.ErrWrongPassword
	}
	hash, err := s.hash(next)
	if err != nil {
		return false, err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Account) hash(password string) (string, error) {
	if len(password) > maxPasswordLen {
		return "", errs.ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}
