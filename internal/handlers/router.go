package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/handlers/middleware"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	blogService blogService,
	health healthChecker,
	metrics metricsService,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService, logger)

	apiuser := http.NewServeMux()

	apiuser.Handle("POST /register", handleRegister(authService, logger))
	apiuser.Handle("POST /login", handleLogin(authService, logger))
	apiuser.Handle("POST /refresh-token", handleRefreshToken(authService, logger))
	apiuser.Handle("POST /logout", withAuth(handleLogout(authService, logger)))

	apiuser.Handle("GET /profile", withAuth(handleGetProfile(userService, logger)))
	apiuser.Handle("PUT /profile", withAuth(handleUpdateProfile(userService, logger)))
	apiuser.Handle("PUT /profile/password", withAuth(handleChangePassword(userService, logger)))
	apiuser.Handle("DELETE /profile", withAuth(handleDeleteProfile(authService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/users/", http.StripPrefix("/api/users", apiuser))

	root.Handle("POST /posts", withAuth(handleCreatePost(blogService, logger)))
	root.Handle("GET /posts", handleListPosts(blogService, logger))
	root.Handle("GET /posts/{id}", handleGetPost(blogService, logger))
	root.Handle("PUT /posts/{id}", withAuth(handleUpdatePost(blogService, logger)))
	root.Handle("DELETE /posts/{id}", withAuth(handleDeletePost(blogService, logger)))

	root.Handle("POST /comments", withAuth(handleCreateComment(blogService, logger)))
	root.Handle("GET /comments", handleListComments(blogService, logger))
	root.Handle("GET /comments/{postID}", handleListComments(blogService, logger))
	root.Handle("PUT /comments/{id}", withAuth(handleUpdateComment(blogService, logger)))
	root.Handle("DELETE /comments/{id}", withAuth(handleDeleteComment(blogService, logger)))

	root.Handle("GET /healthz", handleHealth(health, logger))
	root.Handle("GET /metrics", metrics.Handler())

	handler := chain(root,
		middleware.MetricsMiddleware(metrics),
		middleware.LoggerMiddleware(logger),
		middleware.RecoveryMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, username string, email string, password string) (models.User, error)

	// Has to return apperrors.ErrInvalidCredentials for unknown email and wrong password alike
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Revoke access token, forget refresh token if not empty
	Logout(ctx context.Context, access string, refresh string) error

	// New access token for stored refresh token
	// Has to return apperrors.ErrRefreshTokenMissing or apperrors.ErrRefreshTokenInvalid
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	DeleteAccount(ctx context.Context, userID uuid.UUID, access string, refresh string) error

	// Used by auth middleware
	Authenticate(ctx context.Context, access string) (uuid.UUID, error)
}

type userService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current string, password string) error
}

type blogService interface {
	CreatePost(ctx context.Context, senderID uuid.UUID, title string, content string) (models.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	UpdatePost(ctx context.Context, userID uuid.UUID, postID uuid.UUID, update models.PostUpdate) (models.Post, error)
	DeletePost(ctx context.Context, userID uuid.UUID, postID uuid.UUID) error

	CreateComment(ctx context.Context, senderID uuid.UUID, postID uuid.UUID, content string) (models.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	UpdateComment(ctx context.Context, userID uuid.UUID, commentID uuid.UUID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, userID uuid.UUID, commentID uuid.UUID) error
}

// Storage ping
type healthChecker func(ctx context.Context) error

type metricsService interface {
	Handler() http.Handler
	ObserveRequest(method string, code int, took time.Duration)
}
