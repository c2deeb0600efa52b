package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

// Service for posts and comments
// Anyone may read, only the sender may change or delete
type Service struct {
	posts    repository.PostRepo
	comments repository.CommentRepo
}

func NewService(posts repository.PostRepo, comments repository.CommentRepo) *Service {
	return &Service{
		posts:    posts,
		comments: comments,
	}
}

func required(field string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", apperrors.ErrValidation, field)
	}
	return value, nil
}

func (s *Service) CreatePost(ctx context.Context, senderID uuid.UUID, title string, content string) (models.Post, error) {
	title, err := required("title", title)
	if err != nil {
		return models.Post{}, err
	}
	content, err = required("content", content)
	if err != nil {
		return models.Post{}, err
	}

	return s.posts.CreatePost(ctx, senderID, title, content)
}

func (s *Service) GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	return s.posts.GetPost(ctx, postID)
}

func (s *Service) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	return s.posts.ListPosts(ctx, filter)
}

// UpdatePost changes title or content of the post the user sent
func (s *Service) UpdatePost(ctx context.Context, userID uuid.UUID, postID uuid.UUID, update models.PostUpdate) (models.Post, error) {
	if update.Title != nil {
		title, err := required("title", *update.Title)
		if err != nil {
			return models.Post{}, err
		}
		update.Title = &title
	}
	if update.Content != nil {
		content, err := required("content", *update.Content)
		if err != nil {
			return models.Post{}, err
		}
		update.Content = &content
	}

	if err := s.ownPost(ctx, userID, postID); err != nil {
		return models.Post{}, err
	}

	return s.posts.UpdatePost(ctx, postID, update)
}

// DeletePost removes the post and its comments
func (s *Service) DeletePost(ctx context.Context, userID uuid.UUID, postID uuid.UUID) error {
	if err := s.ownPost(ctx, userID, postID); err != nil {
		return err
	}

	return s.posts.DeletePost(ctx, postID)
}

func (s *Service) ownPost(ctx context.Context, userID uuid.UUID, postID uuid.UUID) error {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.SenderID != userID {
		return apperrors.ErrNotOwner
	}
	return nil
}

func (s *Service) CreateComment(ctx context.Context, senderID uuid.UUID, postID uuid.UUID, content string) (models.Comment, error) {
	if postID == uuid.Nil {
		return models.Comment{}, fmt.Errorf("%w: post_id is required", apperrors.ErrValidation)
	}
	content, err := required("content", content)
	if err != nil {
		return models.Comment{}, err
	}

	return s.comments.CreateComment(ctx, postID, senderID, content)
}

func (s *Service) GetComment(ctx context.Context, commentID uuid.UUID) (models.Comment, error) {
	return s.comments.GetComment(ctx, commentID)
}

// ListComments returns comments of the post or every comment for uuid.Nil
// Unknown post is reported as apperrors.ErrPostNotFound, not as empty list
func (s *Service) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	if postID != uuid.Nil {
		if _, err := s.posts.GetPost(ctx, postID); err != nil {
			return nil, err
		}
	}

	return s.comments.ListComments(ctx, postID)
}

func (s *Service) UpdateComment(ctx context.Context, userID uuid.UUID, commentID uuid.UUID, content string) (models.Comment, error) {
	content, err := required("content", content)
	if err != nil {
		return models.Comment{}, err
	}

	if err := s.ownComment(ctx, userID, commentID); err != nil {
		return models.Comment{}, err
	}

	return s.comments.UpdateComment(ctx, commentID, content)
}

func (s *Service) DeleteComment(ctx context.Context, userID uuid.UUID, commentID uuid.UUID) error {
	if err := s.ownComment(ctx, userID, commentID); err != nil {
		return err
	}

	return s.comments.DeleteComment(ctx, commentID)
}

func (s *Service) ownComment(ctx context.Context, userID uuid.UUID, commentID uuid.UUID) error {
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.SenderID != userID {
		return apperrors.ErrNotOwner
	}
	return nil
}
