package blog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestBlog(t *testing.T) {
	t.Parallel()

	// Service with two registered users: author and reader
	setup := func(t *testing.T) (*Service, uuid.UUID, uuid.UUID) {
		storage := testutil.NewSQLiteStorage(t)

		author, err := storage.User().CreateUser(t.Context(), "author", "author@mail.com", "hash")
		require.NoError(t, err)
		reader, err := storage.User().CreateUser(t.Context(), "reader", "reader@mail.com", "hash")
		require.NoError(t, err)

		return NewService(storage.Post(), storage.Comment()), author.ID, reader.ID
	}

	t.Run("posts", func(t *testing.T) {
		t.Run("create and read", func(t *testing.T) {
			s, author, _ := setup(t)

			post, err := s.CreatePost(t.Context(), author, " Hello ", "World")
			require.NoError(t, err)
			require.Equal(t, "Hello", post.Title)
			require.Equal(t, author, post.SenderID)

			got, err := s.GetPost(t.Context(), post.ID)
			require.NoError(t, err)
			require.Equal(t, post.ID, got.ID)
		})

		t.Run("create validation", func(t *testing.T) {
			s, author, _ := setup(t)

			_, err := s.CreatePost(t.Context(), author, "", "World")
			require.ErrorIs(t, err, apperrors.ErrValidation)

			_, err = s.CreatePost(t.Context(), author, "Hello", "  ")
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})

		t.Run("list by sender", func(t *testing.T) {
			s, author, reader := setup(t)
			_, err := s.CreatePost(t.Context(), author, "first", "text")
			require.NoError(t, err)
			_, err = s.CreatePost(t.Context(), reader, "second", "text")
			require.NoError(t, err)

			all, err := s.ListPosts(t.Context(), models.PostFilter{})
			require.NoError(t, err)
			require.Len(t, all, 2)

			own, err := s.ListPosts(t.Context(), models.PostFilter{SenderID: author})
			require.NoError(t, err)
			require.Len(t, own, 1)
			require.Equal(t, "first", own[0].Title)
		})

		t.Run("only sender updates", func(t *testing.T) {
			s, author, reader := setup(t)
			post, err := s.CreatePost(t.Context(), author, "Hello", "World")
			require.NoError(t, err)

			_, err = s.UpdatePost(t.Context(), reader, post.ID, models.PostUpdate{Title: ptr("Hacked")})
			require.ErrorIs(t, err, apperrors.ErrNotOwner)

			updated, err := s.UpdatePost(t.Context(), author, post.ID, models.PostUpdate{Title: ptr("Hi")})
			require.NoError(t, err)
			require.Equal(t, "Hi", updated.Title)
			require.Equal(t, "World", updated.Content, "content left as is")

			_, err = s.UpdatePost(t.Context(), author, post.ID, models.PostUpdate{Content: ptr("")})
			require.ErrorIs(t, err, apperrors.ErrValidation)

			_, err = s.UpdatePost(t.Context(), author, uuid.New(), models.PostUpdate{Title: ptr("Hi")})
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})

		t.Run("only sender deletes", func(t *testing.T) {
			s, author, reader := setup(t)
			post, err := s.CreatePost(t.Context(), author, "Hello", "World")
			require.NoError(t, err)
			_, err = s.CreateComment(t.Context(), reader, post.ID, "nice")
			require.NoError(t, err)

			err = s.DeletePost(t.Context(), reader, post.ID)
			require.ErrorIs(t, err, apperrors.ErrNotOwner)

			err = s.DeletePost(t.Context(), author, post.ID)
			require.NoError(t, err)

			_, err = s.GetPost(t.Context(), post.ID)
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
			comments, err := s.ListComments(t.Context(), uuid.Nil)
			require.NoError(t, err)
			require.Empty(t, comments, "comments go away with the post")
		})
	})

	t.Run("comments", func(t *testing.T) {
		t.Run("create and list", func(t *testing.T) {
			s, author, reader := setup(t)
			post, err := s.CreatePost(t.Context(), author, "Hello", "World")
			require.NoError(t, err)
			other, err := s.CreatePost(t.Context(), author, "Other", "World")
			require.NoError(t, err)

			comment, err := s.CreateComment(t.Context(), reader, post.ID, " nice ")
			require.NoError(t, err)
			require.Equal(t, "nice", comment.Content)
			_, err = s.CreateComment(t.Context(), reader, other.ID, "also nice")
			require.NoError(t, err)

			forPost, err := s.ListComments(t.Context(), post.ID)
			require.NoError(t, err)
			require.Len(t, forPost, 1)
			require.Equal(t, comment.ID, forPost[0].ID)

			all, err := s.ListComments(t.Context(), uuid.Nil)
			require.NoError(t, err)
			require.Len(t, all, 2)
		})

		t.Run("unknown post", func(t *testing.T) {
			s, _, reader := setup(t)

			_, err := s.CreateComment(t.Context(), reader, uuid.New(), "nice")
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)

			_, err = s.ListComments(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})

		t.Run("create validation", func(t *testing.T) {
			s, author, _ := setup(t)
			post, err := s.CreatePost(t.Context(), author, "Hello", "World")
			require.NoError(t, err)

			_, err = s.CreateComment(t.Context(), author, uuid.Nil, "nice")
			require.ErrorIs(t, err, apperrors.ErrValidation)

			_, err = s.CreateComment(t.Context(), author, post.ID, "")
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})

		t.Run("only sender changes", func(t *testing.T) {
			s, author, reader := setup(t)
			post, err := s.CreatePost(t.Context(), author, "Hello", "World")
			require.NoError(t, err)
			comment, err := s.CreateComment(t.Context(), reader, post.ID, "nice")
			require.NoError(t, err)

			_, err = s.UpdateComment(t.Context(), author, comment.ID, "bad")
			require.ErrorIs(t, err, apperrors.ErrNotOwner, "post author does not own comments")
			err = s.DeleteComment(t.Context(), author, comment.ID)
			require.ErrorIs(t, err, apperrors.ErrNotOwner)

			updated, err := s.UpdateComment(t.Context(), reader, comment.ID, "very nice")
			require.NoError(t, err)
			require.Equal(t, "very nice", updated.Content)

			err = s.DeleteComment(t.Context(), reader, comment.ID)
			require.NoError(t, err)
			_, err = s.GetComment(t.Context(), comment.ID)
			require.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})
}
