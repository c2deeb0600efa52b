package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
)

type messageResponse struct {
	Message string `json:"message"`
}

// Optional body of logout and profile delete
type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Public part of the user, never password hash or tokens
type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Caller set by auth middleware
// Missing caller means the route is not protected, that is a programming error
func currentUser(w http.ResponseWriter, r *http.Request, l logger.Logger) (userctx.User, bool) {
	u, ok := userctx.FromContext(r.Context())
	if !ok {
		l.Error("no user in request context", "path", r.URL.Path)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
	return u, ok
}

func handleRegister(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,nonblank,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		_, err = authService.Register(r.Context(), data.Username, data.Email, data.Password)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSONWithStatus(w, messageResponse{Message: "User registered successfully"}, http.StatusCreated)
	})
}

func handleLogin(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message      string `json:"message"`
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSON(w, response{
			Message:      "Logged in successfully",
			Token:        pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

func handleLogout(authService authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		data, err := render.BindOptional[refreshTokenRequest](w, r)
		if err != nil {
			return
		}

		if err := authService.Logout(r.Context(), user.Token, data.RefreshToken); err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.Text(w, "Logged out successfully", http.StatusOK)
	})
}

func handleRefreshToken(authService authService, logger logger.Logger) http.Handler {
	type response struct {
		Token string `json:"token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindOptional[refreshTokenRequest](w, r)
		if err != nil {
			return
		}

		token, err := authService.Refresh(r.Context(), data.RefreshToken)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSON(w, response{Token: token.Value})
	})
}

func handleGetProfile(userService userService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		u, err := userService.GetByID(r.Context(), user.ID)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSON(w, newUserResponse(u))
	})
}

func handleUpdateProfile(userService userService, logger logger.Logger) http.Handler {
	// Only these fields may be changed, anything else in the body is ignored
	type request struct {
		Username *string `json:"username" validate:"omitempty,nonblank,max=50"`
		Email    *string `json:"email" validate:"omitempty,email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		u, err := userService.UpdateProfile(r.Context(), user.ID, models.ProfileUpdate{
			Username: data.Username,
			Email:    data.Email,
		})
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSON(w, newUserResponse(u))
	})
}

func handleChangePassword(userService userService, logger logger.Logger) http.Handler {
	type request struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = userService.ChangePassword(r.Context(), user.ID, data.CurrentPassword, data.NewPassword)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Password changed successfully"})
	})
}

func handleDeleteProfile(authService authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		data, err := render.BindOptional[refreshTokenRequest](w, r)
		if err != nil {
			return
		}

		if err := authService.DeleteAccount(r.Context(), user.ID, user.Token, data.RefreshToken); err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.Text(w, "User deleted successfully", http.StatusOK)
	})
}
