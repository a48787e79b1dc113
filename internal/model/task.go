package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Priority is the urgency level of a task. The ordinal order
// (LOW < MEDIUM < HIGH) is the natural sort order for the field.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// ParsePriority converts a string into a Priority, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(s) {
	case "LOW":
		return PriorityLow, nil
	case "MEDIUM":
		return PriorityMedium, nil
	case "HIGH":
		return PriorityHigh, nil
	default:
		return PriorityLow, ErrInvalidPriority
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	default:
		return "LOW"
	}
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("priority must be a string: %w", err)
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Task represents a todo item in the system.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    Priority `json:"priority"`
}

// CreateTaskRequest represents the request body for creating a task.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    Priority `json:"priority"`
}

// Validate checks if the CreateTaskRequest is valid.
func (r *CreateTaskRequest) Validate() error {
	if r.Title == "" {
		return ErrTitleRequired
	}
	return nil
}

// Task materializes the request into a Task, filling defaulted fields.
// The store assigns the id on insert.
func (r *CreateTaskRequest) Task() Task {
	status := r.Status
	if status == "" {
		status = "Pending"
	}
	return Task{
		Title:       r.Title,
		Description: r.Description,
		Status:      status,
		Priority:    r.Priority,
	}
}

// TaskUpdate carries a partial overwrite of a task. Nil fields are left
// untouched. The id is never part of an update: any id supplied in a payload
// is discarded before it reaches the store.
type TaskUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *Priority `json:"priority"`
}

// Apply overwrites the non-nil fields on t.
func (u TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
}

// SortTasks orders tasks by the given field, ascending unless desc is set.
// The sort is stable, so records that tie on the field keep their insertion
// order. Priority compares by ordinal, every other field lexically.
func SortTasks(tasks []Task, orderBy OrderBy, desc bool) {
	less := func(a, b Task) bool {
		switch orderBy {
		case OrderByDescription:
			return a.Description < b.Description
		case OrderByStatus:
			return a.Status < b.Status
		case OrderByPriority:
			return a.Priority < b.Priority
		default:
			return a.Title < b.Title
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if desc {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}
