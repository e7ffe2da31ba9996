package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"shrtn/internal/apperror"
	"shrtn/internal/metrics"
	"shrtn/internal/models"
	"shrtn/internal/repository"
	"shrtn/pkg/utils"

	"go.uber.org/zap"
)

var (
	ErrPasswordMismatch   = apperror.New(apperror.Validation, "passwords do not match")
	ErrPasswordTooLong    = apperror.New(apperror.Validation, "password must be at most 72 bytes")
	ErrEmailTaken         = apperror.New(apperror.Conflict, "user already exists")
	ErrNameTaken          = apperror.New(apperror.Conflict, "user with this name already exists")
	ErrInvalidCredentials = apperror.New(apperror.Authentication, "invalid login or password")
	ErrUserNotFound       = apperror.New(apperror.Unauthorized, "user not found")
)

const maxPasswordBytes = 72

type RegisterInput struct {
	Email         string
	Password      string
	PasswordAgain string
	Name          string
	About         string
}

type AccountService struct {
	store   *repository.Store
	metrics *metrics.Metrics
	logger  *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(store *repository.Store, m *metrics.Metrics, logger *zap.Logger) *AccountService {
	return &AccountService{store: store, metrics: m, logger: logger}
}

// Register creates an account. The checks run in a fixed order and stop
// at the first failure: password confirmation, email, then name.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if in.Password != in.PasswordAgain {
		return nil, ErrPasswordMismatch
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureFree(ctx, tx.Users.FindByEmail, in.Email, ErrEmailTaken); err != nil {
			return err
		}
		if err := ensureFree(ctx, tx.Users.FindByName, in.Name, ErrNameTaken); err != nil {
			return err
		}

		if len(in.Password) > maxPasswordBytes {
			return ErrPasswordTooLong
		}
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		user = &models.User{
			Name:           in.Name,
			Email:          in.Email,
			HashedPassword: hash,
			About:          in.About,
		}
		return tx.Users.Create(ctx, user)
	})

	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent registration slipped in between the checks and the insert.
		return nil, s.duplicateCause(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.Registrations.Inc()
	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("name", user.Name))
	return user, nil
}

func ensureFree(ctx context.Context, find func(context.Context, string) (*models.User, error), value string, taken *apperror.Error) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup user: %w", err)
	}
}

func (s *AccountService) duplicateCause(ctx context.Context, in RegisterInput) error {
	if _, err := s.store.Users.FindByEmail(ctx, in.Email); err == nil {
		return ErrEmailTaken
	}
	return ErrNameTaken
}

// Authenticate answers unknown emails and wrong passwords with the same
// error and roughly the same cost.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		utils.CheckPasswordHash(password, s.placeholderHash())
		s.metrics.LoginAttempts.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.HashedPassword) {
		s.metrics.LoginAttempts.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	s.metrics.LoginAttempts.WithLabelValues("success").Inc()
	return user, nil
}

func (s *AccountService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := utils.HashPassword("placeholder-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func (s *AccountService) UserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %d: %w", id, err)
	}
	return user, nil
}
