package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kmatsui/go-todo-service/internal/model"
	"github.com/kmatsui/go-todo-service/internal/service"
	"github.com/kmatsui/go-todo-service/internal/telemetry"
)

var tracer = otel.Tracer("github.com/kmatsui/go-todo-service/internal/handler")

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	svc     *service.TaskService
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger, metrics *telemetry.Metrics) *TaskHandler {
	return &TaskHandler{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes returns the chi router with task routes.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/attribute_type", h.Search)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// List returns one page of tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.List")
	defer span.End()

	pagination, err := parsePagination(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid pagination", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, err.Error())
		h.recordMetrics(ctx, "GET", "/api/v1/todos", http.StatusBadRequest, start)
		return
	}

	tasks, err := h.svc.List(ctx, pagination)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tasks", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to list tasks")
		h.recordMetrics(ctx, "GET", "/api/v1/todos", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("count", len(tasks)))

	respondJSON(w, http.StatusOK, tasks)
	h.recordMetrics(ctx, "GET", "/api/v1/todos", http.StatusOK, start)
}

// Search looks tasks up by id, title, or priority. An ID search responds
// with the single matching record or 404; the other attributes respond with
// a page of matches, which may be empty.
func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	route := "/api/v1/todos/attribute_type"

	searchType := model.SearchType(strings.ToUpper(r.URL.Query().Get("search_type")))
	searchValue := r.URL.Query().Get("search_value")

	ctx, span := tracer.Start(ctx, "TaskHandler.Search",
		trace.WithAttributes(attribute.String("search.type", string(searchType))),
	)
	defer span.End()

	pagination, err := parsePagination(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid pagination", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, err.Error())
		h.recordMetrics(ctx, "GET", route, http.StatusBadRequest, start)
		return
	}

	tasks, err := h.svc.Search(ctx, model.SearchQuery{
		Type:       searchType,
		Value:      searchValue,
		Pagination: pagination,
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUnsupportedAttribute):
			h.logger.WarnContext(ctx, "unsupported search attribute", slog.String("search_type", string(searchType)))
			respondError(w, http.StatusBadRequest, fmt.Sprintf(
				"The attribute type %q is not supported. Please use one of the following: ID, TITLE, or PRIORITY.",
				searchType))
			h.recordMetrics(ctx, "GET", route, http.StatusBadRequest, start)
		case errors.Is(err, model.ErrInvalidPriority):
			h.logger.WarnContext(ctx, "invalid search value", slog.String("search_value", searchValue))
			respondError(w, http.StatusBadRequest, fmt.Sprintf(
				"Invalid input for attribute value: %s. %s", searchValue, err.Error()))
			h.recordMetrics(ctx, "GET", route, http.StatusBadRequest, start)
		default:
			h.logger.ErrorContext(ctx, "failed to search tasks", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "failed to search tasks")
			h.recordMetrics(ctx, "GET", route, http.StatusInternalServerError, start)
		}
		return
	}

	// Single-record lookup: 404 on a miss, the bare record on a hit.
	if searchType == model.SearchByID {
		if len(tasks) == 0 {
			respondError(w, http.StatusNotFound, fmt.Sprintf("No task found matching id='%s'.", searchValue))
			h.recordMetrics(ctx, "GET", route, http.StatusNotFound, start)
			return
		}
		respondJSON(w, http.StatusOK, tasks[0])
		h.recordMetrics(ctx, "GET", route, http.StatusOK, start)
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	respondJSON(w, http.StatusOK, tasks)
	h.recordMetrics(ctx, "GET", route, http.StatusOK, start)
}

// Create adds a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Create")
	defer span.End()

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordMetrics(ctx, "POST", "/api/v1/todos", http.StatusBadRequest, start)
		return
	}

	task, err := h.svc.Create(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrTitleRequired) {
			h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, err.Error())
			h.recordMetrics(ctx, "POST", "/api/v1/todos", http.StatusBadRequest, start)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create task", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to create task")
		h.recordMetrics(ctx, "POST", "/api/v1/todos", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created", slog.String("id", task.ID))

	respondJSON(w, http.StatusCreated, task)
	h.recordMetrics(ctx, "POST", "/api/v1/todos", http.StatusCreated, start)
}

// Update applies a partial overwrite to an existing task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var upd model.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordMetrics(ctx, "PUT", "/api/v1/todos/{id}", http.StatusBadRequest, start)
		return
	}

	task, err := h.svc.Update(ctx, id, upd)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update task", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to update task")
		h.recordMetrics(ctx, "PUT", "/api/v1/todos/{id}", http.StatusInternalServerError, start)
		return
	}
	if task == nil {
		h.logger.WarnContext(ctx, "task not found", slog.String("id", id))
		respondError(w, http.StatusNotFound, fmt.Sprintf(
			"Task with ID '%s' not found. Please ensure the task exists before attempting an update.", id))
		h.recordMetrics(ctx, "PUT", "/api/v1/todos/{id}", http.StatusNotFound, start)
		return
	}

	h.logger.InfoContext(ctx, "task updated", slog.String("id", id))

	respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, "PUT", "/api/v1/todos/{id}", http.StatusOK, start)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	deleted, err := h.svc.Delete(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete task", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to delete task")
		h.recordMetrics(ctx, "DELETE", "/api/v1/todos/{id}", http.StatusInternalServerError, start)
		return
	}
	if !deleted {
		h.logger.WarnContext(ctx, "task not found", slog.String("id", id))
		respondError(w, http.StatusNotFound, fmt.Sprintf(
			"Task with ID '%s' not found. Unable to delete a non-existing task.", id))
		h.recordMetrics(ctx, "DELETE", "/api/v1/todos/{id}", http.StatusNotFound, start)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.String("id", id))

	w.WriteHeader(http.StatusNoContent)
	h.recordMetrics(ctx, "DELETE", "/api/v1/todos/{id}", http.StatusNoContent, start)
}

// Health returns a health check response.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parsePagination reads page, size, order_by, and desc from the query
// string, applying the documented defaults.
func parsePagination(r *http.Request) (model.Pagination, error) {
	p := model.DefaultPagination()
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return p, model.ErrInvalidPagination
		}
		p.Page = page
	}
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return p, model.ErrInvalidPagination
		}
		p.Size = size
	}
	if err := p.Validate(); err != nil {
		return p, err
	}

	orderBy, err := model.ParseOrderBy(q.Get("order_by"))
	if err != nil {
		return p, err
	}
	p.OrderBy = orderBy

	if v := q.Get("desc"); v != "" {
		desc, err := strconv.ParseBool(v)
		if err != nil {
			return p, model.DomainError{Message: "desc must be a boolean"}
		}
		p.Desc = desc
	}
	return p, nil
}

func (h *TaskHandler) recordMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
