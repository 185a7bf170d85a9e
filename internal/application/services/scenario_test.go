package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/testutil"
)

func TestScenario_ProjectLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p1, err := h.projects.CreateOrUpdate(ctx, ProjectInput{Name: "Launch", StartDate: "2025-03-01"})
	require.NoError(t, err)

	t1, err := h.tasks.CreateOrUpdate(ctx, TaskInput{
		Title:     "Write spec",
		Date:      "2025-03-01",
		StartTime: "09:00",
		EndTime:   "10:00",
		ProjectID: p1.ID,
	})
	require.NoError(t, err)

	got, err := h.projects.Get(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, []entities.TaskRef{{TaskID: t1.ID, Date: "2025-03-01"}}, got.Tasks)

	progress, err := h.projects.Progress(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress)

	_, err = h.tasks.ToggleCompleted(ctx, t1.Date, t1.ID)
	require.NoError(t, err)

	progress, err = h.projects.Progress(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress)

	require.NoError(t, h.projects.Delete(ctx, p1.ID))

	task, err := h.tasks.Get(t1.ID)
	require.NoError(t, err)
	assert.True(t, task.ProjectID.IsZero())

	// the backend saw every step
	require.Len(t, h.remote.Tasks["2025-03-01"], 1)
	assert.True(t, h.remote.Tasks["2025-03-01"][0].ProjectID.IsZero())
	assert.True(t, h.remote.Tasks["2025-03-01"][0].Completed)
	assert.Empty(t, h.remote.Projects)
}

func TestScenario_OfflineSessionUsesLocalStorage(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	remote.Healthy = false
	h := newHarnessWith(t, remote, testutil.NewMockLocalStore())
	ctx := context.Background()

	_, err := h.tasks.CreateOrUpdate(ctx, validTask())
	require.NoError(t, err)
	_, err = h.notes.CreateOrUpdate(ctx, NoteInput{Title: "n", Content: "c", Date: "2025-03-01", Time: "09:00"})
	require.NoError(t, err)

	assert.Zero(t, remote.Count("SaveTasks"))
	assert.Zero(t, remote.Count("SaveNote"))
	assert.Len(t, h.local.Tasks["2025-03-01"], 1)
	assert.Len(t, h.local.Notes, 1)
}
