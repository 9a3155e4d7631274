// Package sqlitestore is an embedded task store on the pure Go SQLite driver.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/UniQw/taskq"
	"github.com/UniQw/taskq/internal/migrate"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const columns = `id, owner_id, title, description, priority, status, created_at, updated_at`

// Store implements taskq.TaskStore and taskq.TaskWriter on SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer; also keeps a :memory: database alive on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := migrate.Up(ctx, db, migrate.SQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(r scanner) (taskq.Task, error) {
	var (
		t            taskq.Task
		prio, status string
	)
	if err := r.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &prio, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return taskq.Task{}, err
	}
	t.Priority = taskq.Priority(prio)
	t.Status = taskq.Status(status)
	return t, nil
}

// FindTasks returns ownerID's tasks matching f, newest first.
func (s *Store) FindTasks(ctx context.Context, ownerID string, f taskq.Filter) ([]taskq.Task, error) {
	q := `SELECT ` + columns + ` FROM tasks WHERE owner_id = ?`
	args := []any{ownerID}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		q += ` AND priority = ?`
		args = append(args, string(f.Priority))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []taskq.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, ownerID, id string) (taskq.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return taskq.Task{}, taskq.ErrTaskNotFound
	}
	return t, err
}

// CreateTask inserts t, filling in a random ID and timestamps when unset.
func (s *Store) CreateTask(ctx context.Context, t *taskq.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := s.now().UnixMilli()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	if t.UpdatedAt == 0 {
		t.UpdatedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Title, t.Description, string(t.Priority), string(t.Status), t.CreatedAt, t.UpdatedAt)
	return err
}

// UpdateTask overwrites the mutable fields of an existing task owned by
// t.OwnerID. CreatedAt is read back from the row.
func (s *Store) UpdateTask(ctx context.Context, t *taskq.Task) error {
	if t.UpdatedAt == 0 {
		t.UpdatedAt = s.now().UnixMilli()
	}
	err := s.db.QueryRowContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? RETURNING created_at`,
		t.Title, t.Description, string(t.Priority), string(t.Status), t.UpdatedAt, t.ID, t.OwnerID,
	).Scan(&t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return taskq.ErrTaskNotFound
	}
	return err
}

func (s *Store) DeleteTask(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return taskq.ErrTaskNotFound
	}
	return nil
}
