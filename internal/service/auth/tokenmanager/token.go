package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 24 * time.Hour
)

// Token manager with sensible default
type Config struct {
	// Secrets to sign access and refresh tokens
	// Both required and must differ, so one kind of token never passes for another
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	access  signer
	refresh signer

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod
}

// Key and lifetime of one kind of token
type signer struct {
	key []byte
	ttl time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	switch {
	case cfg.AccessSecret == "":
		return nil, errors.New("access token secret must not be empty")
	case cfg.RefreshSecret == "":
		return nil, errors.New("refresh token secret must not be empty")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("access and refresh token secrets must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported, use one of HS256, HS384, HS512", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		access:  signer{key: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
		refresh: signer{key: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
		alg:     alg,
	}, nil
}

func (m *TokenManager) IssueAccess(userID uuid.UUID) (models.IssuedToken, error) {
	return m.issue(m.access, userID)
}

func (m *TokenManager) IssueRefresh(userID uuid.UUID) (models.IssuedToken, error) {
	return m.issue(m.refresh, userID)
}

// Parse and validate access token
// Returns apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid
func (m *TokenManager) ParseAccess(token string) (models.TokenClaims, error) {
	return m.parse(m.access, token)
}

// Parse and validate refresh token, same errors as ParseAccess
func (m *TokenManager) ParseRefresh(token string) (models.TokenClaims, error) {
	return m.parse(m.refresh, token)
}

func (m *TokenManager) issue(s signer, userID uuid.UUID) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	// jti keeps tokens issued in the same second apart
	token := jwt.NewWithClaims(m.alg, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) parse(s signer, token string) (models.TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return s.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.TokenClaims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	case err != nil:
		return models.TokenClaims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.TokenClaims{}, fmt.Errorf("%w: bad subject: %w", apperrors.ErrTokenInvalid, err)
	}

	result := models.TokenClaims{
		ID:        claims.ID,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}

	return result, nil
}
