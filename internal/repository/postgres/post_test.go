package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/testutil"
)

func Test_PostRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Create author and pass storage bound to the transaction
	withAuthor := func(t *testing.T, fn func(s *Storage, author models.User)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := &Storage{db: tx}
			author, err := s.User().CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
			require.NoError(t, err)

			fn(s, author)
		})
	}

	t.Run("create and get", func(t *testing.T) {
		withAuthor(t, func(s *Storage, author models.User) {
			created, err := s.Post().CreatePost(t.Context(), author.ID, "Hello", "World")
			require.NoError(t, err)
			assert.Equal(t, author.ID, created.SenderID)

			got, err := s.Post().GetPost(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("create for unknown author", func(t *testing.T) {
		withAuthor(t, func(s *Storage, _ models.User) {
			_, err := s.Post().CreatePost(t.Context(), uuid.New(), "Hello", "World")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("list with sender filter", func(t *testing.T) {
		withAuthor(t, func(s *Storage, author models.User) {
			other, err := s.User().CreateUser(t.Context(), "other", "other@mail.com", "hash")
			require.NoError(t, err)
			_, err = s.Post().CreatePost(t.Context(), author.ID, "first", "")
			require.NoError(t, err)
			_, err = s.Post().CreatePost(t.Context(), other.ID, "second", "")
			require.NoError(t, err)

			all, err := s.Post().ListPosts(t.Context(), models.PostFilter{})
			require.NoError(t, err)
			assert.Len(t, all, 2)

			own, err := s.Post().ListPosts(t.Context(), models.PostFilter{SenderID: other.ID})
			require.NoError(t, err)
			require.Len(t, own, 1)
			assert.Equal(t, "second", own[0].Title)
		})
	})

	t.Run("list empty is not nil", func(t *testing.T) {
		withAuthor(t, func(s *Storage, author models.User) {
			posts, err := s.Post().ListPosts(t.Context(), models.PostFilter{SenderID: author.ID})

			require.NoError(t, err)
			assert.NotNil(t, posts, "empty list should render as [] not null")
			assert.Empty(t, posts)
		})
	})

	t.Run("update partially", func(t *testing.T) {
		withAuthor(t, func(s *Storage, author models.User) {
			created, err := s.Post().CreatePost(t.Context(), author.ID, "Hello", "World")
			require.NoError(t, err)

			got, err := s.Post().UpdatePost(t.Context(), created.ID, models.PostUpdate{Content: ptr("Everyone")})

			require.NoError(t, err)
			assert.Equal(t, "Hello", got.Title)
			assert.Equal(t, "Everyone", got.Content)

			_, err = s.Post().UpdatePost(t.Context(), uuid.New(), models.PostUpdate{})
			assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})

	t.Run("delete cascades comments", func(t *testing.T) {
		withAuthor(t, func(s *Storage, author models.User) {
			post, err := s.Post().CreatePost(t.Context(), author.ID, "Hello", "World")
			require.NoError(t, err)
			comment, err := s.Comment().CreateComment(t.Context(), post.ID, author.ID, "nice")
			require.NoError(t, err)

			err = s.Post().DeletePost(t.Context(), post.ID)
			require.NoError(t, err)

			_, err = s.Post().GetPost(t.Context(), post.ID)
			assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
			_, err = s.Comment().GetComment(t.Context(), comment.ID)
			assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)

			err = s.Post().DeletePost(t.Context(), post.ID)
			assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})

	t.Run("deleting user removes posts", func(t *testing.T) {
		withAuthor(t, func(s *Storage, author models.User) {
			post, err := s.Post().CreatePost(t.Context(), author.ID, "Hello", "World")
			require.NoError(t, err)

			err = s.User().DeleteUser(t.Context(), author.ID)
			require.NoError(t, err)

			_, err = s.Post().GetPost(t.Context(), post.ID)
			assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})
}

func Test_CommentRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withPost := func(t *testing.T, fn func(s *Storage, post models.Post)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := &Storage{db: tx}
			author, err := s.User().CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
			require.NoError(t, err)
			post, err := s.Post().CreatePost(t.Context(), author.ID, "Hello", "World")
			require.NoError(t, err)

			fn(s, post)
		})
	}

	t.Run("create and list by post", func(t *testing.T) {
		withPost(t, func(s *Storage, post models.Post) {
			other, err := s.Post().CreatePost(t.Context(), post.SenderID, "Other", "")
			require.NoError(t, err)

			first, err := s.Comment().CreateComment(t.Context(), post.ID, post.SenderID, "first")
			require.NoError(t, err)
			_, err = s.Comment().CreateComment(t.Context(), other.ID, post.SenderID, "elsewhere")
			require.NoError(t, err)

			got, err := s.Comment().ListComments(t.Context(), post.ID)
			require.NoError(t, err)
			assert.Equal(t, []models.Comment{first}, got)

			all, err := s.Comment().ListComments(t.Context(), uuid.Nil)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	})

	t.Run("create for unknown post", func(t *testing.T) {
		withPost(t, func(s *Storage, post models.Post) {
			_, err := s.Comment().CreateComment(t.Context(), uuid.New(), post.SenderID, "lost")

			assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})

	t.Run("update and delete", func(t *testing.T) {
		withPost(t, func(s *Storage, post models.Post) {
			created, err := s.Comment().CreateComment(t.Context(), post.ID, post.SenderID, "first")
			require.NoError(t, err)

			updated, err := s.Comment().UpdateComment(t.Context(), created.ID, "edited")
			require.NoError(t, err)
			assert.Equal(t, "edited", updated.Content)

			err = s.Comment().DeleteComment(t.Context(), created.ID)
			require.NoError(t, err)

			_, err = s.Comment().UpdateComment(t.Context(), created.ID, "again")
			assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
			err = s.Comment().DeleteComment(t.Context(), created.ID)
			assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})
}
