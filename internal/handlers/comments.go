package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
)

type commentResponse struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	Sender    uuid.UUID `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCommentResponse(c models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Sender:    c.SenderID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func handleCreateComment(blogService blogService, logger logger.Logger) http.Handler {
	type request struct {
		PostID  string `json:"post_id" validate:"required,uuid"`
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

		comment, err := blogService.CreateComment(r.Context(), user.ID, uuid.MustParse(data.PostID), data.Content)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSONWithStatus(w, newCommentResponse(comment), http.StatusCreated)
	})
}

// Lists comments of the post from path or every comment without it
func handleListComments(blogService blogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := uuid.Nil
		if r.PathValue("postID") != "" {
			id, ok := pathID(w, r, "postID")
			if !ok {
				return
			}
			postID = id
		}

		comments, err := blogService.ListComments(r.Context(), postID)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		res := make([]commentResponse, 0, len(comments))
		for _, c := range comments {
			res = append(res, newCommentResponse(c))
		}
		render.JSON(w, res)
	})
}

func handleUpdateComment(blogService blogService, logger logger.Logger) http.Handler {
	type request struct {
		Content string `json:"content" validate:"required,nonblank"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}
		commentID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		comment, err := blogService.UpdateComment(r.Context(), user.ID, commentID, data.Content)
		if err != nil {
			serviceError(w, r, logger, err)
			return
		}

		render.JSON(w, newCommentResponse(comment))
	})
}

func handleDeleteComment(blogService blogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}
		commentID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		if err := blogService.DeleteComment(r.Context(), user.ID, commentID); err != nil {
			serviceError(w, r, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
