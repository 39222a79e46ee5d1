package handler

import (
	"net/http"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/payload"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/usecase"
)

func (h *contentHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err, "invalid register request")
		return
	}

	user, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(w, r, err, "failed to register user")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, payload.RegisterResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func (h *contentHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err, "invalid login request")
		return
	}

	session, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(w, r, err, "failed to login")
		return
	}

	h.respondWithJSON(w, http.StatusOK, payload.LoginResponse{
		Username:    session.Username,
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
	})
}
