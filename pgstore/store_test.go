package pgstore

import (
	"context"
	"os"
	"testing"

	"github.com/UniQw/taskq"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to TASKQ_TEST_DATABASE_URL or skips.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TASKQ_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TASKQ_TEST_DATABASE_URL not set")
	}
	s, err := Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestStore_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := "pg-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = s.Pool().Exec(context.Background(), `DELETE FROM tasks WHERE owner_id = $1`, owner)
	})

	tk := &taskq.Task{OwnerID: owner, Title: "a", Priority: taskq.PriorityLow, Status: taskq.StatusPending}
	require.NoError(t, s.CreateTask(ctx, tk))
	require.NotEmpty(t, tk.ID)

	got, err := s.GetTask(ctx, owner, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, *tk, got)

	_, err = s.GetTask(ctx, "someone-else", tk.ID)
	require.ErrorIs(t, err, taskq.ErrTaskNotFound)

	got.Status = taskq.StatusInProgress
	got.UpdatedAt++
	require.NoError(t, s.UpdateTask(ctx, &got))

	list, err := s.FindTasks(ctx, owner, taskq.Filter{Status: taskq.StatusInProgress})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = s.FindTasks(ctx, owner, taskq.Filter{Status: taskq.StatusPending, Priority: taskq.PriorityLow})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)

	require.NoError(t, s.DeleteTask(ctx, owner, tk.ID))
	require.ErrorIs(t, s.DeleteTask(ctx, owner, tk.ID), taskq.ErrTaskNotFound)
	missing := taskq.Task{ID: tk.ID, OwnerID: owner}
	require.ErrorIs(t, s.UpdateTask(ctx, &missing), taskq.ErrTaskNotFound)
}

func TestStore_WithService(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := "pg-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = s.Pool().Exec(context.Background(), `DELETE FROM tasks WHERE owner_id = $1`, owner)
	})
	svc := taskq.NewService(s, taskq.NewMemoryStore())

	require.NoError(t, svc.CreateTask(ctx, &taskq.Task{OwnerID: owner, Title: "x"}))
	r, err := svc.ListWithCache(ctx, owner, taskq.Filter{}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, r.TotalTasks)

	require.NoError(t, svc.CreateTask(ctx, &taskq.Task{OwnerID: owner, Title: "y"}))
	r, err = svc.ListWithCache(ctx, owner, taskq.Filter{}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, r.TotalTasks)
}
