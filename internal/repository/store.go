// Package repository provides durable collections of task and user records.
// Two implementations satisfy the same contracts: an in-memory store for
// development and tests, and a PostgreSQL store for production. Both are
// selected at composition time via configuration.
package repository

import (
	"context"

	"github.com/kmatsui/go-todo-service/internal/model"
)

// TaskFilter is a predicate over task attributes. Exactly one field should
// be set; a zero filter matches everything.
type TaskFilter struct {
	Title    *string
	Priority *model.Priority
}

// Matches reports whether t satisfies the filter.
func (f TaskFilter) Matches(t model.Task) bool {
	if f.Title != nil && t.Title != *f.Title {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// TaskStore is the durable collection of task records.
//
// ListAll applies ordering and the page window in the store. ListBy returns
// the complete matched set in insertion order; ordering and slicing for
// filtered queries belong to the query engine so that both implementations
// produce identical page boundaries.
type TaskStore interface {
	Insert(ctx context.Context, t model.Task) (model.Task, error)
	GetByID(ctx context.Context, id string) (*model.Task, error)
	ListAll(ctx context.Context, p model.Pagination) ([]model.Task, error)
	ListBy(ctx context.Context, f TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, id string, u model.TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count() int64
}

// UserStore is the durable collection of user records. InsertUser fails
// with *model.DuplicateError when username, email, or hashed password
// collide.
type UserStore interface {
	InsertUser(ctx context.Context, u model.User) (model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
