package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/UniQw/taskq"
	mrd "github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) *mrd.Miniredis {
	t.Helper()
	s := mrd.RunT(t)
	t.Setenv("TASKQ_STORE", "sqlite")
	t.Setenv("TASKQ_SQLITE_PATH", filepath.Join(t.TempDir(), "tasks.db"))
	t.Setenv("REDIS_URL", "redis://"+s.Addr()+"/0")
	t.Setenv("LOG_LEVEL", "error")
	return s
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLI(t, args...)
	return out, err
}

func runCLI(t *testing.T, args ...string) (string, *cli, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := newCLI()
	c.root.SetOut(&out)
	c.root.SetErr(&errOut)
	c.root.SetArgs(args)
	err := c.execute(context.Background())
	return out.String(), c, err
}

func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	require.NoError(t, sonic.UnmarshalString(out, v))
}

func TestCLI_Lifecycle(t *testing.T) {
	mr := setupEnv(t)

	var created taskq.Task
	runJSON(t, &created, "add", "--owner", "U1", "--title", "first", "--priority", "low")
	require.NotEmpty(t, created.ID)
	require.Equal(t, taskq.StatusPending, created.Status)

	var res taskq.ListResult
	runJSON(t, &res, "list", "-o", "U1", "--status", "pending")
	require.Equal(t, 1, res.TotalTasks)
	require.Equal(t, 1, res.CurrentPage)

	// a second process sees the write through the shared cache namespace
	var second taskq.Task
	runJSON(t, &second, "add", "-o", "U1", "-t", "second", "-p", "high")
	runJSON(t, &res, "list", "-o", "U1", "--status", "pending")
	require.Equal(t, 2, res.TotalTasks)
	require.Equal(t, second.ID, res.Tasks[0].ID)
	require.NotEmpty(t, mr.Keys())

	var sched []taskq.Task
	runJSON(t, &sched, "schedule", "-o", "U1")
	require.Len(t, sched, 2)
	require.Equal(t, taskq.PriorityHigh, sched[0].Priority)

	var updated taskq.Task
	runJSON(t, &updated, "update", "-o", "U1", created.ID, "--status", "completed")
	require.Equal(t, taskq.StatusCompleted, updated.Status)
	require.Equal(t, "first", updated.Title)

	runJSON(t, &res, "list", "-o", "U1", "--status", "pending")
	require.Equal(t, 1, res.TotalTasks)

	var got taskq.Task
	runJSON(t, &got, "get", "-o", "U1", created.ID)
	require.Equal(t, taskq.StatusCompleted, got.Status)

	_, err := run(t, "delete", "-o", "U1", created.ID)
	require.NoError(t, err)
	_, err = run(t, "get", "-o", "U1", created.ID)
	require.ErrorIs(t, err, taskq.ErrTaskNotFound)

	_, err = run(t, "invalidate", "-o", "U1")
	require.NoError(t, err)
}

func TestCLI_Errors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "list")
	require.Error(t, err, "owner is required")

	_, err = run(t, "list", "-o", "U1", "--status", "archived")
	require.ErrorIs(t, err, taskq.ErrUnknownStatus)

	_, err = run(t, "list", "-o", "U1", "--size", "1000")
	require.ErrorIs(t, err, taskq.ErrInvalidQuery)

	_, err = run(t, "add", "-o", "U1", "-t", "x", "-p", "urgent")
	require.ErrorIs(t, err, taskq.ErrUnknownPriority)
}

func TestCLI_RedisDown_StillServes(t *testing.T) {
	mr := setupEnv(t)
	mr.Close()

	var created taskq.Task
	runJSON(t, &created, "add", "-o", "U1", "-t", "offline")
	var res taskq.ListResult
	runJSON(t, &res, "list", "-o", "U1")
	require.Equal(t, 1, res.TotalTasks)
}

func TestCLI_MemoryCache(t *testing.T) {
	setupEnv(t)
	t.Setenv("REDIS_URL", "")

	var created taskq.Task
	runJSON(t, &created, "add", "-o", "U1", "-t", "local")
	var res taskq.ListResult
	runJSON(t, &res, "list", "-o", "U1")
	require.Equal(t, 1, res.TotalTasks)
}

func TestCLI_ClosesAppOnFailure(t *testing.T) {
	setupEnv(t)

	_, c, err := runCLI(t, "get", "-o", "U1", "missing")
	require.ErrorIs(t, err, taskq.ErrTaskNotFound)
	require.Nil(t, c.app)

	// required flags are checked after the app is opened
	_, c, err = runCLI(t, "add", "-o", "U1")
	require.Error(t, err)
	require.Nil(t, c.app)

	_, c, err = runCLI(t, "list", "-o", "U1")
	require.NoError(t, err)
	require.Nil(t, c.app)
}

func TestCLI_CompletionWithoutOwner(t *testing.T) {
	t.Setenv("TASKQ_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	out, c, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	require.Contains(t, out, "taskq")
	require.Nil(t, c.app)

	_, err = run(t, "help")
	require.NoError(t, err)
}
