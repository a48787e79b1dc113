// Package service orchestrates task and user operations over the record
// stores. It owns ordering and page boundaries for attribute searches so
// that the in-memory and PostgreSQL stores return identical pages.
package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kmatsui/go-todo-service/internal/model"
	"github.com/kmatsui/go-todo-service/internal/repository"
)

var tracer = otel.Tracer("github.com/kmatsui/go-todo-service/internal/service")

// TaskService provides list, attribute search, create, update, and delete
// operations over task records.
type TaskService struct {
	store repository.TaskStore
}

// NewTaskService creates a TaskService backed by the given store.
func NewTaskService(store repository.TaskStore) *TaskService {
	return &TaskService{store: store}
}

// List returns one page of tasks ordered per the pagination parameters.
func (s *TaskService) List(ctx context.Context, p model.Pagination) ([]model.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListAll(ctx, p)
}

// Search looks tasks up by one of the fixed attribute set.
//
// An ID search returns at most one record and discards the pagination
// parameters entirely; list-style parameters simply do not apply to a
// single-record lookup. TITLE matches by exact string equality and PRIORITY
// by the case-insensitively parsed enum; both are then ordered and sliced
// here, not in the store. Any other search type fails before the store is
// touched.
func (s *TaskService) Search(ctx context.Context, q model.SearchQuery) ([]model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Search",
		trace.WithAttributes(attribute.String("search.type", string(q.Type))),
	)
	defer span.End()

	switch q.Type {
	case model.SearchByID:
		t, err := s.store.GetByID(ctx, q.Value)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return []model.Task{}, nil
		}
		return []model.Task{*t}, nil

	case model.SearchByTitle:
		return s.searchFiltered(ctx, repository.TaskFilter{Title: &q.Value}, q.Pagination)

	case model.SearchByPriority:
		priority, err := model.ParsePriority(q.Value)
		if err != nil {
			return nil, err
		}
		return s.searchFiltered(ctx, repository.TaskFilter{Priority: &priority}, q.Pagination)

	default:
		return nil, model.ErrUnsupportedAttribute
	}
}

// searchFiltered fetches the full matched set from the store, then sorts and
// slices it. Keeping ordering out of the predicate layer guarantees the same
// page boundaries regardless of the backing store.
func (s *TaskService) searchFiltered(ctx context.Context, f repository.TaskFilter, p model.Pagination) ([]model.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	matched, err := s.store.ListBy(ctx, f)
	if err != nil {
		return nil, err
	}
	model.SortTasks(matched, p.OrderBy, p.Desc)
	return p.Window(matched), nil
}

// Create validates and persists a new task, returning the stored copy with
// its server-assigned id.
func (s *TaskService) Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	if err := req.Validate(); err != nil {
		return model.Task{}, err
	}
	return s.store.Insert(ctx, req.Task())
}

// Update applies a partial overwrite to the task with the given id. The id
// itself is never overwritten. Returns nil when the id is absent; the caller
// turns that into a not-found signal.
func (s *TaskService) Update(ctx context.Context, id string, u model.TaskUpdate) (*model.Task, error) {
	return s.store.Update(ctx, id, u)
}

// Delete removes the task with the given id, reporting whether a record was
// removed.
func (s *TaskService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}
