package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/payload"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/usecase"
	"github.com/vasapolrittideah/postly-api/shared/middleware"
)

func (h *contentHTTPHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentUsecase.GetComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err, "failed to list comments")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.NewCommentListResponse(comments))
}

func (h *contentHTTPHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateCommentRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err, "invalid create comment request")
		return
	}

	comment, err := h.commentUsecase.CreateComment(r.Context(), chi.URLParam(r, "id"), usecase.CreateCommentParams{
		PostID:  req.PostID,
		MadeBy:  middleware.UsernameFromContext(r.Context()),
		Content: req.Content,
		Likes:   req.Likes,
	})
	if err != nil {
		h.handleError(w, r, err, "failed to create comment")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, payload.NewCommentResponse(comment))
}
