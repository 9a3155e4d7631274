package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/UniQw/taskq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tk := &taskq.Task{OwnerID: "u1", Title: "a", Priority: taskq.PriorityHigh, Status: taskq.StatusPending}
	require.NoError(t, s.CreateTask(ctx, tk))
	require.NotEmpty(t, tk.ID)
	require.NotZero(t, tk.CreatedAt)

	got, err := s.GetTask(ctx, "u1", tk.ID)
	require.NoError(t, err)
	assert.Equal(t, *tk, got)

	_, err = s.GetTask(ctx, "u2", tk.ID)
	require.ErrorIs(t, err, taskq.ErrTaskNotFound)

	upd := got
	upd.Title = "b"
	upd.Status = taskq.StatusCompleted
	upd.CreatedAt = 0
	upd.UpdatedAt = got.UpdatedAt + 1
	require.NoError(t, s.UpdateTask(ctx, &upd))
	require.Equal(t, got.CreatedAt, upd.CreatedAt)

	got, err = s.GetTask(ctx, "u1", tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
	assert.Equal(t, taskq.StatusCompleted, got.Status)

	foreign := got
	foreign.OwnerID = "u2"
	require.ErrorIs(t, s.UpdateTask(ctx, &foreign), taskq.ErrTaskNotFound)

	require.ErrorIs(t, s.DeleteTask(ctx, "u2", tk.ID), taskq.ErrTaskNotFound)
	require.NoError(t, s.DeleteTask(ctx, "u1", tk.ID))
	require.ErrorIs(t, s.DeleteTask(ctx, "u1", tk.ID), taskq.ErrTaskNotFound)
}

func TestStore_FindTasks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Now().UnixMilli()
	seed := []taskq.Task{
		{ID: "1", OwnerID: "u1", Priority: taskq.PriorityHigh, Status: taskq.StatusPending, CreatedAt: base - 3},
		{ID: "2", OwnerID: "u1", Priority: taskq.PriorityLow, Status: taskq.StatusPending, CreatedAt: base - 2},
		{ID: "3", OwnerID: "u1", Priority: taskq.PriorityHigh, Status: taskq.StatusCompleted, CreatedAt: base - 1},
		{ID: "4", OwnerID: "u2", Priority: taskq.PriorityHigh, Status: taskq.StatusPending, CreatedAt: base},
	}
	for i := range seed {
		require.NoError(t, s.CreateTask(ctx, &seed[i]))
	}

	all, err := s.FindTasks(ctx, "u1", taskq.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID)

	pending, err := s.FindTasks(ctx, "u1", taskq.Filter{Status: taskq.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 2)

	both, err := s.FindTasks(ctx, "u1", taskq.Filter{Status: taskq.StatusPending, Priority: taskq.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "1", both[0].ID)

	none, err := s.FindTasks(ctx, "nobody", taskq.Filter{})
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestStore_WithService(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := taskq.NewService(s, taskq.NewMemoryStore())

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.CreateTask(ctx, &taskq.Task{OwnerID: "U1", Title: "t"}))
	}
	r, err := svc.ListWithCache(ctx, "U1", taskq.Filter{Status: taskq.StatusPending}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, r.TotalTasks)

	require.NoError(t, svc.CreateTask(ctx, &taskq.Task{OwnerID: "U1", Title: "t", Priority: taskq.PriorityHigh}))
	r, err = svc.ListWithCache(ctx, "U1", taskq.Filter{Status: taskq.StatusPending}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 4, r.TotalTasks)
	require.Equal(t, taskq.PriorityHigh, r.Tasks[0].Priority)

	order, err := svc.Scheduled(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, order, 4)
	require.Equal(t, taskq.PriorityHigh, order[0].Priority)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	tasks, err := s.FindTasks(context.Background(), "u", taskq.Filter{})
	require.NoError(t, err)
	require.Empty(t, tasks)
}
