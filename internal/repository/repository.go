package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user with already hashed password
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Update only fields set in the update
	// Must return apperrors.ErrUserAlreadyExists if the new email is taken
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error

	// Refresh token list is changed with single statement so concurrent calls never lose an update
	// Removing absent token is not an error
	AddRefreshToken(ctx context.Context, userID uuid.UUID, token string) error
	RemoveRefreshToken(ctx context.Context, userID uuid.UUID, token string) error

	// Delete user with everything the user owns
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// Post repository interface
// If post not found must return apperrors.ErrPostNotFound
type PostRepo interface {
	CreatePost(ctx context.Context, senderID uuid.UUID, title string, content string) (models.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	UpdatePost(ctx context.Context, postID uuid.UUID, update models.PostUpdate) (models.Post, error)
	DeletePost(ctx context.Context, postID uuid.UUID) error
}

// Comment repository interface
// If comment not found must return apperrors.ErrCommentNotFound
type CommentRepo interface {
	// Must return apperrors.ErrPostNotFound if the post does not exist
	CreateComment(ctx context.Context, postID uuid.UUID, senderID uuid.UUID, content string) (models.Comment, error)
	GetComment(ctx context.Context, commentID uuid.UUID) (models.Comment, error)

	// List comments of the post, or every comment if postID is uuid.Nil
	ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	UpdateComment(ctx context.Context, commentID uuid.UUID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
}

type Storage interface {
	User() UserRepo
	Post() PostRepo
	Comment() CommentRepo
}
