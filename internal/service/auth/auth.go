package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/revocation"
	"github.com/nkiryanov/blogapi/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/blogapi/internal/service/user"
)

// Lifecycle events reported to Recorder
const (
	EventRegister     = "register"
	EventLogin        = "login"
	EventLogout       = "logout"
	EventRefresh      = "refresh"
	EventDelete       = "delete"
	EventAuthenticate = "authenticate"
)

// Recorder counts session lifecycle events
type Recorder interface {
	AuthEvent(event string, result string)
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, string) {}

type Config struct {
	// Logger for events that are swallowed and never reach the caller
	// NoOp logger used if not set
	Logger logger.Logger

	// Recorder for lifecycle counters, no counting if not set
	Recorder Recorder
}

// Session lifecycle service
// Issues token pairs, keeps refresh token lists and revokes access tokens
type Service struct {
	tokens  *tokenmanager.TokenManager
	users   *user.Service
	revoked revocation.Store

	logger   logger.Logger
	recorder Recorder
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, users *user.Service, revoked revocation.Store) (*Service, error) {
	if tokens == nil || users == nil || revoked == nil {
		return nil, errors.New("token manager, user service and revocation store must not be nil")
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}

	return &Service{
		tokens:   tokens,
		users:    users,
		revoked:  revoked,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
	}, nil
}

func (s *Service) Register(ctx context.Context, username string, email string, password string) (models.User, error) {
	u, err := s.users.Register(ctx, username, email, password)
	s.record(EventRegister, err)
	return u, err
}

// Login checks credentials and issues new token pair
// Refresh token is remembered in the user's list until logout
func (s *Service) Login(ctx context.Context, email string, password string) (pair models.TokenPair, err error) {
	defer func() { s.record(EventLogin, err) }()

	u, err := s.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return pair, err
	}

	pair.Access, err = s.tokens.IssueAccess(u.ID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. Err: %w", err)
	}

	pair.Refresh, err = s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. Err: %w", err)
	}

	if err := s.users.AddRefreshToken(ctx, u.ID, pair.Refresh.Value); err != nil {
		return models.TokenPair{}, fmt.Errorf("can't store refresh token. Err: %w", err)
	}

	return pair, nil
}

// Logout revokes access token and forgets refresh token if given
// Only revocation failure is reported, refresh cleanup is best effort
func (s *Service) Logout(ctx context.Context, access string, refresh string) (err error) {
	defer func() { s.record(EventLogout, err) }()

	userID, err := s.revoke(ctx, access)
	if err != nil {
		return err
	}

	s.forgetRefresh(ctx, userID, refresh)
	return nil
}

// Refresh issues new access token for refresh token the owner still holds
// Any rejection is apperrors.ErrRefreshTokenInvalid
func (s *Service) Refresh(ctx context.Context, refresh string) (token models.IssuedToken, err error) {
	defer func() { s.record(EventRefresh, err) }()

	if refresh == "" {
		return token, apperrors.ErrRefreshTokenMissing
	}

	claims, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		return token, fmt.Errorf("%w: %w", apperrors.ErrRefreshTokenInvalid, err)
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return token, fmt.Errorf("%w: owner is gone", apperrors.ErrRefreshTokenInvalid)
	case err != nil:
		return token, fmt.Errorf("can't get token owner. Err: %w", err)
	}

	if !u.HasRefreshToken(refresh) {
		return token, fmt.Errorf("%w: token was logged out", apperrors.ErrRefreshTokenInvalid)
	}

	token, err = s.tokens.IssueAccess(u.ID)
	if err != nil {
		return token, fmt.Errorf("token could not generated, sorry. Err: %w", err)
	}

	return token, nil
}

// DeleteAccount revokes the caller's tokens and removes the user with everything the user owns
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID, access string, refresh string) (err error) {
	defer func() { s.record(EventDelete, err) }()

	if _, err := s.revoke(ctx, access); err != nil {
		return err
	}

	// List goes away with the user row, but the removal logs a foreign token
	s.forgetRefresh(ctx, userID, refresh)

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("can't delete user. Err: %w", err)
	}

	return nil
}

// Authenticate decides whether access token lets the request in
// Returns user id or one of apperrors.ErrTokenMissing, ErrTokenRevoked, ErrTokenExpired, ErrTokenInvalid
func (s *Service) Authenticate(ctx context.Context, access string) (userID uuid.UUID, err error) {
	defer func() { s.record(EventAuthenticate, err) }()

	if access == "" {
		return uuid.Nil, apperrors.ErrTokenMissing
	}

	revoked, err := s.revoked.IsBlacklisted(ctx, access)
	if err != nil {
		return uuid.Nil, fmt.Errorf("can't check revoked tokens. Err: %w", err)
	}
	if revoked {
		return uuid.Nil, apperrors.ErrTokenRevoked
	}

	claims, err := s.tokens.ParseAccess(access)
	if err != nil {
		return uuid.Nil, err
	}

	return claims.UserID, nil
}

// Blacklist access token until its own expiry
// Expiry stays unknown for tokens that do not parse, the store picks its default then
func (s *Service) revoke(ctx context.Context, access string) (uuid.UUID, error) {
	if access == "" {
		return uuid.Nil, apperrors.ErrTokenMissing
	}

	var (
		userID    uuid.UUID
		expiresAt time.Time
	)
	if claims, err := s.tokens.ParseAccess(access); err == nil {
		userID = claims.UserID
		expiresAt = claims.ExpiresAt
	}

	if err := s.revoked.Blacklist(ctx, access, expiresAt); err != nil {
		return uuid.Nil, fmt.Errorf("can't revoke access token. Err: %w", err)
	}

	return userID, nil
}

// Remove refresh token from the list of its owner
// Token of another user is left alone
func (s *Service) forgetRefresh(ctx context.Context, userID uuid.UUID, refresh string) {
	if refresh == "" {
		return
	}

	claims, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		s.logger.Debug("refresh token not removed, it does not parse", "error", err)
		return
	}

	if userID != uuid.Nil && claims.UserID != userID {
		s.logger.Warn("refresh token not removed, it belongs to another user", "user_id", userID, "owner_id", claims.UserID)
		return
	}

	if err := s.users.RemoveRefreshToken(ctx, claims.UserID, refresh); err != nil {
		s.logger.Warn("refresh token not removed", "user_id", claims.UserID, "error", err)
	}
}

func (s *Service) record(event string, err error) {
	s.recorder.AuthEvent(event, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrTokenMissing), errors.Is(err, apperrors.ErrRefreshTokenMissing):
		return "missing"
	case errors.Is(err, apperrors.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return "expired"
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrRefreshTokenInvalid):
		return "invalid"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return "bad_credentials"
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrUserAlreadyExists):
		return "rejected"
	default:
		return "error"
	}
}
