package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
)

type postResponse struct {
	ID        uuid.UUID `json:"id"`
	Sender    uuid.UUID `json:"sender"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newPostResponse(p models.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Sender:    p.SenderID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Parse uuid from path wildcard, answer 400 if it is not one
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		render.ServiceError(w, "Invalid identifier in path", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func handleCreatePost(blogService blogService, logger logger.Logger) http.Handler {
	type request struct {
		Title   string `json:"title" validate:"required,nonblank"`
		Content string `json:"content" validate:"required,nonblank"`
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

		post, err := blogService.CreatePost(r.Context(), user.ID, data.Title, data.Content)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSONWithStatus(w, newPostResponse(post), http.StatusCreated)
	})
}

func handleListPosts(blogService blogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var filter models.PostFilter

		if sender := r.URL.Query().Get("sender"); sender != "" {
			id, err := uuid.Parse(sender)
			if err != nil {
				render.ServiceError(w, "Invalid sender", http.StatusBadRequest)
				return
			}
			filter.SenderID = id
		}

		posts, err := blogService.ListPosts(r.Context(), filter)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		res := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			res = append(res, newPostResponse(p))
		}
		render.JSON(w, res)
	})
}

func handleGetPost(blogService blogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		post, err := blogService.GetPost(r.Context(), postID)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSON(w, newPostResponse(post))
	})
}

func handleUpdatePost(blogService blogService, logger logger.Logger) http.Handler {
	type request struct {
		Title   *string `json:"title" validate:"omitempty,nonblank"`
		Content *string `json:"content" validate:"omitempty,nonblank"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}
		postID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		post, err := blogService.UpdatePost(r.Context(), user.ID, postID, models.PostUpdate{
			Title:   data.Title,
			Content: data.Content,
		})
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSON(w, newPostResponse(post))
	})
}

func handleDeletePost(blogService blogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}
		postID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		if err := blogService.DeletePost(r.Context(), user.ID, postID); err != nil {
			serviceError(w, r, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
