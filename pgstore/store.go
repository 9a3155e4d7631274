// Package pgstore is a PostgreSQL task store on pgx.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/UniQw/taskq"
	"github.com/UniQw/taskq/internal/migrate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const columns = `id, owner_id, title, description, priority, status, created_at, updated_at`

// Store implements taskq.TaskStore and taskq.TaskWriter on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	db   *sql.DB // database/sql view of pool, used for migrations
	now  func() time.Time
}

// Open connects to url and applies the schema.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := New(pool)
	s.db = stdlib.OpenDBFromPool(pool)
	if _, err := migrate.Up(ctx, s.db, migrate.Postgres); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool whose schema is already migrated.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Pool returns the underlying pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close releases the pool.
func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	s.pool.Close()
}

func scanTask(row pgx.CollectableRow) (taskq.Task, error) {
	var (
		t            taskq.Task
		prio, status string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &prio, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return taskq.Task{}, err
	}
	t.Priority = taskq.Priority(prio)
	t.Status = taskq.Status(status)
	return t, nil
}

// FindTasks returns ownerID's tasks matching f, newest first.
func (s *Store) FindTasks(ctx context.Context, ownerID string, f taskq.Filter) ([]taskq.Task, error) {
	q := `SELECT ` + columns + ` FROM tasks WHERE owner_id = $1`
	args := []any{ownerID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		q += ` AND status = $` + strconv.Itoa(len(args))
	}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		q += ` AND priority = $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []taskq.Task{}
	}
	return out, nil
}

func (s *Store) GetTask(ctx context.Context, ownerID, id string) (taskq.Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+columns+` FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return taskq.Task{}, err
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if errors.Is(err, pgx.ErrNoRows) {
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
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tasks (`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.OwnerID, t.Title, t.Description, string(t.Priority), string(t.Status), t.CreatedAt, t.UpdatedAt)
	return err
}

// UpdateTask overwrites the mutable fields of an existing task owned by
// t.OwnerID. CreatedAt is read back from the row.
func (s *Store) UpdateTask(ctx context.Context, t *taskq.Task) error {
	if t.UpdatedAt == 0 {
		t.UpdatedAt = s.now().UnixMilli()
	}
	err := s.pool.QueryRow(ctx,
		`UPDATE tasks SET title = $1, description = $2, priority = $3, status = $4, updated_at = $5
		 WHERE id = $6 AND owner_id = $7 RETURNING created_at`,
		t.Title, t.Description, string(t.Priority), string(t.Status), t.UpdatedAt, t.ID, t.OwnerID,
	).Scan(&t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return taskq.ErrTaskNotFound
	}
	return err
}

func (s *Store) DeleteTask(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return taskq.ErrTaskNotFound
	}
	return nil
}
