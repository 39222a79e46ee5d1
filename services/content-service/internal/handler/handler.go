package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/usecase"
	"github.com/vasapolrittideah/postly-api/shared/auth"
	"github.com/vasapolrittideah/postly-api/shared/middleware"
	"github.com/vasapolrittideah/postly-api/shared/store"
	"github.com/vasapolrittideah/postly-api/shared/validator"
)

const maxRequestBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type contentHTTPHandler struct {
	authUsecase    usecase.AuthUsecase
	postUsecase    usecase.PostUsecase
	commentUsecase usecase.CommentUsecase
	health         HealthChecker
	validator      *validator.Validator
	requestTimeout time.Duration
	logger         *zerolog.Logger
}

// NewContentHTTPHandler builds the HTTP API of the content service.
func NewContentHTTPHandler(
	authUsecase usecase.AuthUsecase,
	postUsecase usecase.PostUsecase,
	commentUsecase usecase.CommentUsecase,
	health HealthChecker,
	requestTimeout time.Duration,
	logger *zerolog.Logger,
) (http.Handler, error) {
	v, err := validator.New()
	if err != nil {
		return nil, err
	}

	h := &contentHTTPHandler{
		authUsecase:    authUsecase,
		postUsecase:    postUsecase,
		commentUsecase: commentUsecase,
		health:         health,
		validator:      v,
		requestTimeout: requestTimeout,
		logger:         logger,
	}

	return h.routes(), nil
}

func (h *contentHTTPHandler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)
	if h.requestTimeout > 0 {
		r.Use(chimiddleware.Timeout(h.requestTimeout))
	}

	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Get("/posts", h.GetAllPosts)
		r.With(middleware.OptionalBearer(h.authUsecase)).Get("/posts/{id}", h.GetPost)
		r.Get("/posts/{id}/comments", h.GetComments)
		r.Get("/users/{username}/posts", h.GetPostsByAuthor)
		r.Get("/users/{username}/posts/count", h.CountPostsByAuthor)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireBearer(h.authUsecase))

			r.Get("/users/{username}/drafts", h.GetDrafts)
			r.Post("/posts", h.CreatePost)
			r.Post("/drafts", h.CreateDraft)
			r.Patch("/posts/{id}", h.EditPost)
			r.Post("/posts/{id}/publish", h.PublishPost)
			r.Post("/posts/{id}/comments", h.CreateComment)
		})
	})

	return r
}

func (h *contentHTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("health check failed")
		h.respondWithError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeAndValidate reads a JSON body into dst and validates it.
func (h *contentHTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}

	return h.validator.Struct(dst)
}

func (h *contentHTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("failed to write HTTP response")
	}
}

func (h *contentHTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// handleError maps usecase and store errors to HTTP responses.
func (h *contentHTTPHandler) handleError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var validationErr *validator.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, errInvalidBody),
		errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrUsernameRequired),
		errors.Is(err, usecase.ErrNoFieldsToUpdate):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials):
		h.respondWithError(w, http.StatusUnauthorized, usecase.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		h.respondWithError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
	case errors.Is(err, usecase.ErrForbidden):
		h.respondWithError(w, http.StatusForbidden, usecase.ErrForbidden.Error())
	case errors.Is(err, usecase.ErrPostNotFound):
		h.respondWithError(w, http.StatusNotFound, usecase.ErrPostNotFound.Error())
	case errors.Is(err, usecase.ErrUsernameTaken):
		h.respondWithError(w, http.StatusConflict, usecase.ErrUsernameTaken.Error())
	case errors.Is(err, store.ErrStoreUnavailable):
		h.logger.Error().Err(err).Str("request_id", chimiddleware.GetReqID(r.Context())).Msg(msg)
		h.respondWithError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		h.logger.Error().Err(err).Str("request_id", chimiddleware.GetReqID(r.Context())).Msg(msg)
		h.respondWithError(w, http.StatusInternalServerError, "something went wrong")
	}
}
