package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), "adir", "adir@mail.com", "hashedpassword123")

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID, "ID should be generated")
			assert.Equal(t, "adir", user.Username)
			assert.Equal(t, "adir@mail.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Empty(t, user.RefreshTokens, "new user has no refresh tokens")
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), "other", "adir@mail.com", "hash")

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "findbyid", "findbyid@mail.com", "hashedpassword123")
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), "adir@mail.com")
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)

			_, err = r.GetUserByEmail(t.Context(), "nobody@mail.com")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update profile", func(t *testing.T) {
		t.Run("only set fields", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}
				created, err := r.CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
				require.NoError(t, err)

				got, err := r.UpdateProfile(t.Context(), created.ID, models.ProfileUpdate{Username: ptr("adir2")})

				require.NoError(t, err)
				assert.Equal(t, "adir2", got.Username)
				assert.Equal(t, "adir@mail.com", got.Email, "email is not set so should stay")
				assert.Equal(t, "hash", got.HashedPassword)
			})
		})

		t.Run("email taken", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}
				_, err := r.CreateUser(t.Context(), "first", "first@mail.com", "hash")
				require.NoError(t, err)
				second, err := r.CreateUser(t.Context(), "second", "second@mail.com", "hash")
				require.NoError(t, err)

				_, err = r.UpdateProfile(t.Context(), second.ID, models.ProfileUpdate{Email: ptr("first@mail.com")})

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})

		t.Run("user not found", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}

				_, err := r.UpdateProfile(t.Context(), uuid.New(), models.ProfileUpdate{Username: ptr("x")})

				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("update password", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
			require.NoError(t, err)

			err = r.UpdatePassword(t.Context(), created.ID, "new-hash")
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, "new-hash", got.HashedPassword)

			err = r.UpdatePassword(t.Context(), uuid.New(), "new-hash")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("refresh tokens", func(t *testing.T) {
		t.Run("add and remove keep order", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}
				created, err := r.CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
				require.NoError(t, err)

				for _, token := range []string{"first", "second", "third"} {
					err := r.AddRefreshToken(t.Context(), created.ID, token)
					require.NoError(t, err)
				}
				err = r.RemoveRefreshToken(t.Context(), created.ID, "second")
				require.NoError(t, err)

				got, err := r.GetUserByID(t.Context(), created.ID)
				require.NoError(t, err)
				assert.Equal(t, []string{"first", "third"}, got.RefreshTokens)
			})
		})

		t.Run("remove absent token is ok", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}
				created, err := r.CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
				require.NoError(t, err)

				err = r.RemoveRefreshToken(t.Context(), created.ID, "never-issued")

				require.NoError(t, err)
			})
		})

		t.Run("unknown user", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}

				err := r.AddRefreshToken(t.Context(), uuid.New(), "token")
				assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

				err = r.RemoveRefreshToken(t.Context(), uuid.New(), "token")
				assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("delete user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "adir", "adir@mail.com", "hash")
			require.NoError(t, err)

			err = r.DeleteUser(t.Context(), created.ID)
			require.NoError(t, err)

			_, err = r.GetUserByID(t.Context(), created.ID)
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

			err = r.DeleteUser(t.Context(), created.ID)
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "second delete finds nothing")
		})
	})
}
