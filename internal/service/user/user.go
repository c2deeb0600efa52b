package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

var DefaultHasher = BcryptHasher{}

var validate = validator.New()

// Service owns user records: credentials, profile and the refresh token list
type Service struct {
	hasher models.Hasher
	users  repository.UserRepo

	// Hash checked when email is unknown, so the answer takes as long as for a wrong password
	dummyHash func() string
}

func NewService(hasher models.Hasher, users repository.UserRepo) *Service {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &Service{
		hasher: hasher,
		users:  users,
		dummyHash: sync.OnceValue(func() string {
			hash, _ := hasher.Hash(uuid.NewString())
			return hash
		}),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, username string, email string, password string) (models.User, error) {
	var user models.User

	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	switch {
	case username == "":
		return user, fmt.Errorf("%w: username is required", apperrors.ErrValidation)
	case validate.Var(email, "required,email") != nil:
		return user, fmt.Errorf("%w: email is not valid", apperrors.ErrValidation)
	case password == "":
		return user, fmt.Errorf("%w: password is required", apperrors.ErrValidation)
	}

	if err := user.SetPassword(password, s.hasher); err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	created, err := s.users.CreateUser(ctx, username, email, user.HashedPassword)
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return created, nil
}

// VerifyCredentials returns apperrors.ErrInvalidCredentials both for unknown email and wrong password
func (s *Service) VerifyCredentials(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		s.hasher.Check(password, s.dummyHash())
		return models.User{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	if !user.CheckPassword(password, s.hasher) {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile changes username and email only
// Password and refresh tokens have their own paths
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (models.User, error) {
	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			return models.User{}, fmt.Errorf("%w: username must not be empty", apperrors.ErrValidation)
		}
		update.Username = &username
	}

	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if validate.Var(email, "required,email") != nil {
			return models.User{}, fmt.Errorf("%w: email is not valid", apperrors.ErrValidation)
		}
		update.Email = &email
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return user, fmt.Errorf("can't update profile. Err: %w", err)
	}

	return user, nil
}

// ChangePassword checks current password and stores hash of the new one
// Wrong current password is reported as apperrors.ErrInvalidCredentials
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current string, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", apperrors.ErrValidation)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("can't get user. Err: %w", err)
	}

	if !user.CheckPassword(current, s.hasher) {
		return apperrors.ErrInvalidCredentials
	}

	if err := user.SetPassword(password, s.hasher); err != nil {
		return fmt.Errorf("can't use this as password, Err: %w", err)
	}

	return s.users.UpdatePassword(ctx, userID, user.HashedPassword)
}

func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.users.DeleteUser(ctx, userID)
}

func (s *Service) AddRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.users.AddRefreshToken(ctx, userID, token)
}

func (s *Service) RemoveRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.users.RemoveRefreshToken(ctx, userID, token)
}
