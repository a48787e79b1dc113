package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kmatsui/go-todo-service/internal/auth"
	"github.com/kmatsui/go-todo-service/internal/model"
	"github.com/kmatsui/go-todo-service/internal/service"
	"github.com/kmatsui/go-todo-service/internal/telemetry"
)

// UserHandler handles registration and login requests.
type UserHandler struct {
	svc     *service.UserService
	codec   *auth.TokenCodec
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, codec *auth.TokenCodec, logger *slog.Logger, metrics *telemetry.Metrics) *UserHandler {
	return &UserHandler{
		svc:     svc,
		codec:   codec,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes returns the chi router with auth routes.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/login/form", h.LoginForm)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.codec, h.logger))
		r.Get("/me", h.Me)
	})

	return r
}

// Register creates a new user account and responds with the account view,
// password omitted.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "UserHandler.Register")
	defer span.End()

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordAuthMetrics(ctx, "POST", "/api/v1/auth/register", http.StatusBadRequest, start)
		return
	}

	view, err := h.svc.Register(ctx, req)
	if err != nil {
		var dup *model.DuplicateError
		var domainErr model.DomainError
		switch {
		case errors.As(err, &dup):
			h.logger.WarnContext(ctx, "duplicate identity",
				slog.String("username", req.Username), slog.String("field", dup.Field))
			respondError(w, http.StatusBadRequest, duplicateMessage(dup))
			h.recordAuthMetrics(ctx, "POST", "/api/v1/auth/register", http.StatusBadRequest, start)
		case errors.As(err, &domainErr):
			h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, err.Error())
			h.recordAuthMetrics(ctx, "POST", "/api/v1/auth/register", http.StatusBadRequest, start)
		default:
			h.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "failed to register user")
			h.recordAuthMetrics(ctx, "POST", "/api/v1/auth/register", http.StatusInternalServerError, start)
		}
		return
	}

	span.SetAttributes(attribute.String("user.id", view.ID))
	h.logger.InfoContext(ctx, "user registered", slog.String("username", view.Username))

	respondJSON(w, http.StatusOK, view)
	h.recordAuthMetrics(ctx, "POST", "/api/v1/auth/register", http.StatusOK, start)
}

// Login authenticates a JSON username/password body and responds with a
// bearer token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.login(w, r, req.Username, req.Password, "/api/v1/auth/login")
}

// LoginForm authenticates a standard form-encoded body with username and
// password fields.
func (h *UserHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	h.login(w, r, r.PostFormValue("username"), r.PostFormValue("password"), "/api/v1/auth/login/form")
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request, username, password, route string) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "UserHandler.Login")
	defer span.End()

	token, err := h.svc.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, model.ErrAuthenticationFailed) {
			// Unknown user and wrong password respond identically.
			h.logger.WarnContext(ctx, "login failed", slog.String("username", username))
			h.metrics.LoginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "failure")))
			respondError(w, http.StatusUnauthorized, "Invalid username or password")
			h.recordAuthMetrics(ctx, "POST", route, http.StatusUnauthorized, start)
			return
		}
		h.logger.ErrorContext(ctx, "failed to log in user", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to log in")
		h.recordAuthMetrics(ctx, "POST", route, http.StatusInternalServerError, start)
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("username", username))
	h.metrics.LoginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))

	respondJSON(w, http.StatusOK, token)
	h.recordAuthMetrics(ctx, "POST", route, http.StatusOK, start)
}

// Me returns the authenticated subject, exercising the bearer middleware.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"username": subject})
}

func duplicateMessage(dup *model.DuplicateError) string {
	switch dup.Field {
	case "email":
		return "The email address is already taken."
	case "username":
		return "The username is already taken."
	default:
		return "An integrity error occurred. Please check your data."
	}
}

func (h *UserHandler) recordAuthMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
