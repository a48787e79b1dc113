package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kmatsui/go-todo-service/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Pending',
	priority    INTEGER NOT NULL DEFAULT 0,
	seq         BIGSERIAL
);

CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL UNIQUE,
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL,
	hashed_password TEXT NOT NULL UNIQUE
);
`

// PostgresStore persists tasks and users in PostgreSQL. Atomicity and
// isolation are delegated to the database; every operation is a single
// statement.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to the database at databaseURL and ensures the schema
// exists. The caller is responsible for calling Close.
func Open(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", model.ErrStoreUnavailable)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

// Insert persists a new task, assigning an id when absent, and returns the
// stored copy.
func (s *PostgresStore) Insert(ctx context.Context, t model.Task) (model.Task, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Title, t.Description, t.Status, int(t.Priority),
	)
	if err != nil {
		return model.Task{}, storeErr("insert task", err)
	}
	return t, nil
}

// GetByID returns the task with the given id, or nil when absent.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, priority FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get task", err)
	}
	return t, nil
}

// ListAll returns one page of tasks ordered by the pagination's sort field,
// with the insertion sequence as a stable tiebreak. The sort column comes
// from the fixed OrderBy set, never from raw input.
func (s *PostgresStore) ListAll(ctx context.Context, p model.Pagination) ([]model.Task, error) {
	direction := "ASC"
	if p.Desc {
		direction = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT id, title, description, status, priority FROM tasks
		ORDER BY %s %s, seq ASC
		OFFSET $1 LIMIT $2`, string(p.OrderBy), direction)

	rows, err := s.db.QueryContext(ctx, query, p.Offset(), p.Size)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListBy returns every task matching the filter, in insertion order. The
// query engine owns ordering and slicing for filtered lookups.
func (s *PostgresStore) ListBy(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	where := "TRUE"
	args := []any{}
	switch {
	case f.Title != nil:
		where = "title = $1"
		args = append(args, *f.Title)
	case f.Priority != nil:
		where = "priority = $1"
		args = append(args, int(*f.Priority))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, priority FROM tasks
		WHERE `+where+` ORDER BY seq ASC`, args...)
	if err != nil {
		return nil, storeErr("list tasks by predicate", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// Update applies the non-nil fields of u to the task with the given id and
// returns the stored copy, or nil when the id is absent.
func (s *PostgresStore) Update(ctx context.Context, id string, u model.TaskUpdate) (*model.Task, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.Priority != nil {
		add("priority", int(*u.Priority))
	}
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE tasks SET %s WHERE id = $%d
		RETURNING id, title, description, status, priority`,
		strings.Join(sets, ", "), len(args))

	row := s.db.QueryRowContext(ctx, query, args...)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("update task", err)
	}
	return t, nil
}

// Delete removes the task with the given id, reporting whether a record was
// removed.
func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, storeErr("delete task", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("delete task", err)
	}
	return affected > 0, nil
}

// Count returns the current number of tasks, or zero when the store is
// unreachable. It feeds the task gauge, which tolerates a stale reading.
func (s *PostgresStore) Count() int64 {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// InsertUser persists a new user. Unique constraint violations are
// translated into *model.DuplicateError carrying the conflicting field when
// the constraint name reveals it.
func (s *PostgresStore) InsertUser(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, hashed_password)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.HashedPassword,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.User{}, &model.DuplicateError{Field: duplicateField(pqErr.Constraint)}
		}
		return model.User{}, storeErr("insert user", err)
	}
	return u, nil
}

// GetByUsername returns the user with the given username, or nil when
// absent.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, first_name, last_name, hashed_password
		FROM users WHERE username = $1`, username)

	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.HashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &u, nil
}

// duplicateField derives the conflicting column from a unique constraint
// name such as "users_username_key".
func duplicateField(constraint string) string {
	switch {
	case strings.Contains(constraint, "username"):
		return "username"
	case strings.Contains(constraint, "email"):
		return "email"
	default:
		return ""
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	var priority int
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &priority); err != nil {
		return nil, err
	}
	t.Priority = model.Priority(priority)
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storeErr("scan task", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

// storeErr wraps a database failure. Timeouts and dead connections surface
// as model.ErrStoreUnavailable so callers can tell an unreachable store from
// a data-level failure.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%s: %w", op, model.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
