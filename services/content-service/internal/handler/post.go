package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/payload"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/usecase"
	"github.com/vasapolrittideah/postly-api/shared/middleware"
)

func (h *contentHTTPHandler) GetAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postUsecase.GetAllPosts(r.Context())
	if err != nil {
		h.handleError(w, r, err, "failed to list posts")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.NewPostListResponse(posts))
}

func (h *contentHTTPHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.postUsecase.GetPost(r.Context(), chi.URLParam(r, "id"), middleware.UsernameFromContext(r.Context()))
	if err != nil {
		h.handleError(w, r, err, "failed to get post")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.NewPostResponse(post))
}

func (h *contentHTTPHandler) GetPostsByAuthor(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postUsecase.GetPostsByAuthor(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.handleError(w, r, err, "failed to list posts by author")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.NewPostListResponse(posts))
}

func (h *contentHTTPHandler) CountPostsByAuthor(w http.ResponseWriter, r *http.Request) {
	count, err := h.postUsecase.CountPostsByAuthor(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.handleError(w, r, err, "failed to count posts")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.CountResponse{Count: count})
}

// GetDrafts lists the caller's own drafts.
func (h *contentHTTPHandler) GetDrafts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username != middleware.UsernameFromContext(r.Context()) {
		h.handleError(w, r, usecase.ErrForbidden, "drafts of another user requested")
		return
	}

	drafts, err := h.postUsecase.GetDrafts(r.Context(), username)
	if err != nil {
		h.handleError(w, r, err, "failed to list drafts")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.NewPostListResponse(drafts))
}

func (h *contentHTTPHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	h.createPost(w, r, model.PostStatePublished)
}

func (h *contentHTTPHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	h.createPost(w, r, model.PostStateDraft)
}

func (h *contentHTTPHandler) createPost(w http.ResponseWriter, r *http.Request, state model.PostState) {
	var req payload.CreatePostRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err, "invalid create post request")
		return
	}

	post, err := h.postUsecase.CreatePost(r.Context(), state, usecase.CreatePostParams{
		Author:      middleware.UsernameFromContext(r.Context()),
		Category:    req.Category,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		Status:      req.Status,
		Visibility:  req.Visibility,
	})
	if err != nil {
		h.handleError(w, r, err, "failed to create post")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, payload.NewPostResponse(post))
}

func (h *contentHTTPHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdatePostRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err, "invalid update post request")
		return
	}

	post, err := h.postUsecase.EditPost(r.Context(), chi.URLParam(r, "id"), usecase.EditPostParams{
		Actor:       middleware.UsernameFromContext(r.Context()),
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		Category:    req.Category,
		Visibility:  req.Visibility,
	})
	if err != nil {
		h.handleError(w, r, err, "failed to edit post")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.NewPostResponse(post))
}

func (h *contentHTTPHandler) PublishPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.postUsecase.Publish(r.Context(), chi.URLParam(r, "id"), middleware.UsernameFromContext(r.Context()))
	if err != nil {
		h.handleError(w, r, err, "failed to publish post")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.NewPostResponse(post))
}
