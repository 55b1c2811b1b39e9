package background_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cvforge/internal/background"
)

func TestInMemoryTaskStore_CRUD(t *testing.T) {
	store := background.NewInMemoryTaskStore()
	ctx := context.Background()

	result := &background.TaskResult{
		ProcessID: "task_abc",
		Type:      background.TaskTypeOptimize,
		Status:    background.TaskStatusAccepted,
		CreatedAt: time.Now(),
	}

	require.NoError(t, store.Store(ctx, result))

	got, err := store.Get(ctx, "task_abc")
	require.NoError(t, err)
	require.Equal(t, background.TaskStatusAccepted, got.Status)

	got.Status = background.TaskStatusSuccess
	require.NoError(t, store.Update(ctx, got))

	updated, err := store.Get(ctx, "task_abc")
	require.NoError(t, err)
	require.Equal(t, background.TaskStatusSuccess, updated.Status)

	require.NoError(t, store.Delete(ctx, "task_abc"))

	_, err = store.Get(ctx, "task_abc")
	require.True(t, errors.Is(err, background.ErrTaskNotFound))
}

func TestInMemoryTaskStore_NotFound(t *testing.T) {
	store := background.NewInMemoryTaskStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.True(t, errors.Is(err, background.ErrTaskNotFound))

	err = store.Update(ctx, &background.TaskResult{ProcessID: "missing"})
	require.True(t, errors.Is(err, background.ErrTaskNotFound))

	err = store.Delete(ctx, "missing")
	require.True(t, errors.Is(err, background.ErrTaskNotFound))
}

func TestInMemoryTaskStore_CleanupKeepsRunningTasks(t *testing.T) {
	store := background.NewInMemoryTaskStore()
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	done := old
	require.NoError(t, store.Store(ctx, &background.TaskResult{
		ProcessID:   "task_old_done",
		Status:      background.TaskStatusSuccess,
		CreatedAt:   old,
		CompletedAt: &done,
	}))
	require.NoError(t, store.Store(ctx, &background.TaskResult{
		ProcessID: "task_old_running",
		Status:    background.TaskStatusProcessing,
		CreatedAt: old,
	}))
	require.NoError(t, store.Store(ctx, &background.TaskResult{
		ProcessID: "task_fresh",
		Status:    background.TaskStatusSuccess,
		CreatedAt: time.Now(),
	}))

	require.NoError(t, store.Cleanup(ctx, 24*time.Hour))

	_, err := store.Get(ctx, "task_old_done")
	require.True(t, errors.Is(err, background.ErrTaskNotFound))

	_, err = store.Get(ctx, "task_old_running")
	require.NoError(t, err)

	_, err = store.Get(ctx, "task_fresh")
	require.NoError(t, err)
}

func TestInMemoryTaskStore_List(t *testing.T) {
	store := background.NewInMemoryTaskStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Store(ctx, &background.TaskResult{
			ProcessID: id,
			CreatedAt: time.Now(),
		}))
	}

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
}
