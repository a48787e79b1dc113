package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kmatsui/go-todo-service/internal/model"
)

// MemoryStore keeps tasks and users in process memory. It implements both
// TaskStore and UserStore and guards its collections with a mutex since it
// has no native transactional isolation.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []model.Task
	users []model.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load seeds the store with tasks, assigning ids to any that lack one.
func (s *MemoryStore) Load(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		s.tasks = append(s.tasks, t)
	}
}

// Insert persists a new task, assigning an id when absent, and returns the
// stored copy.
func (s *MemoryStore) Insert(_ context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	s.tasks = append(s.tasks, t)
	return t, nil
}

// GetByID returns the task with the given id, or nil when absent.
func (s *MemoryStore) GetByID(_ context.Context, id string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			t := s.tasks[i]
			return &t, nil
		}
	}
	return nil, nil
}

// ListAll returns one page of tasks ordered by the pagination's sort field.
func (s *MemoryStore) ListAll(_ context.Context, p model.Pagination) ([]model.Task, error) {
	s.mu.RLock()
	all := make([]model.Task, len(s.tasks))
	copy(all, s.tasks)
	s.mu.RUnlock()

	model.SortTasks(all, p.OrderBy, p.Desc)
	return p.Window(all), nil
}

// ListBy returns every task matching the filter, in insertion order.
func (s *MemoryStore) ListBy(_ context.Context, f TaskFilter) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.Task, 0)
	for _, t := range s.tasks {
		if f.Matches(t) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// Update applies the non-nil fields of u to the task with the given id and
// returns the stored copy, or nil when the id is absent. The id itself is
// never overwritten.
func (s *MemoryStore) Update(_ context.Context, id string, u model.TaskUpdate) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			u.Apply(&s.tasks[i])
			t := s.tasks[i]
			return &t, nil
		}
	}
	return nil, nil
}

// Delete removes the task with the given id, reporting whether a record was
// removed.
func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Count returns the current number of tasks.
func (s *MemoryStore) Count() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.tasks))
}

// InsertUser persists a new user, enforcing uniqueness of username, email,
// and hashed password.
func (s *MemoryStore) InsertUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		switch {
		case existing.Username == u.Username:
			return model.User{}, &model.DuplicateError{Field: "username"}
		case existing.Email == u.Email:
			return model.User{}, &model.DuplicateError{Field: "email"}
		case existing.HashedPassword == u.HashedPassword:
			return model.User{}, &model.DuplicateError{}
		}
	}

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	s.users = append(s.users, u)
	return u, nil
}

// GetByUsername returns the user with the given username, or nil when absent.
func (s *MemoryStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Username == username {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}
