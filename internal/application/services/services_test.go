package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/application/reconcile"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/ports"
	"github.com/taskmaster/dayplanner/internal/testutil"
)

type harness struct {
	remote  *testutil.MockRemoteStore
	local   *testutil.MockLocalStore
	clock   *testutil.MockClock
	session *reconcile.Session

	tasks    *TaskService
	notes    *NoteService
	projects *ProjectService
	prefs    *PreferenceService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, testutil.NewMockRemoteStore(), testutil.NewMockLocalStore())
}

func newHarnessWith(t *testing.T, remote *testutil.MockRemoteStore, local *testutil.MockLocalStore) *harness {
	t.Helper()
	return newHarnessOn(t, remote, remote, local)
}

// newHarnessOn runs the session against store while remote stays reachable
// for assertions; store usually wraps remote.
func newHarnessOn(t *testing.T, store ports.RemoteStore, remote *testutil.MockRemoteStore, local *testutil.MockLocalStore) *harness {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()
	clock := testutil.NewMockClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	session := reconcile.NewSession(store, local, clock, log)
	session.Start(ctx)
	require.NoError(t, session.LoadAll(ctx))

	validate := NewValidator()
	return &harness{
		remote:   remote,
		local:    local,
		clock:    clock,
		session:  session,
		tasks:    NewTaskService(session, validate, log),
		notes:    NewNoteService(session, validate, log),
		projects: NewProjectService(session, validate, log),
		prefs:    NewPreferenceService(session, validate, log),
	}
}

// stallingRemote holds the first save of kind after hold is called until
// release is closed. Later saves pass straight through.
type stallingRemote struct {
	*testutil.MockRemoteStore
	kind    entities.EntityKind
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newStallingRemote(kind entities.EntityKind) *stallingRemote {
	return &stallingRemote{
		MockRemoteStore: testutil.NewMockRemoteStore(),
		kind:            kind,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (r *stallingRemote) hold() { r.armed.Store(true) }

func (r *stallingRemote) wait(kind entities.EntityKind) {
	if kind == r.kind && r.armed.CompareAndSwap(true, false) {
		close(r.entered)
		<-r.release
	}
}

func (r *stallingRemote) SaveTasks(ctx context.Context, tasks entities.TasksByDay) error {
	r.wait(entities.KindTasks)
	return r.MockRemoteStore.SaveTasks(ctx, tasks)
}

func (r *stallingRemote) SaveProjects(ctx context.Context, projects []entities.Project) error {
	r.wait(entities.KindProjects)
	return r.MockRemoteStore.SaveProjects(ctx, projects)
}
