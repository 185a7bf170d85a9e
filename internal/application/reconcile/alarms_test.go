package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/testutil"
)

func sessionWithNotes(t *testing.T, notes ...entities.Note) (*Session, *testutil.MockClock, *testutil.MockRemoteStore, *recorder) {
	t.Helper()
	remote := testutil.NewMockRemoteStore()
	remote.Notes = notes
	s, clock, rec := newTestSession(t, remote, testutil.NewMockLocalStore())
	s.Start(context.Background())
	require.NoError(t, s.LoadAll(context.Background()))
	return s, clock, remote, rec
}

func TestCheckAlarms_FiresAtMostOnce(t *testing.T) {
	ctx := context.Background()
	due := entities.Note{ID: "1", Title: "Call", Content: "Bob", Date: "2024-03-01", Time: "09:00"}
	later := entities.Note{ID: "2", Title: "Lunch", Content: "", Date: "2024-03-01", Time: "12:00"}
	s, clock, remote, rec := sessionWithNotes(t, due, later)

	var fired []entities.Note
	// 08:59 through 09:02 in 20 second steps
	for i := 0; i < 12; i++ {
		got, err := s.CheckAlarms(ctx, clock.Now())
		require.NoError(t, err)
		fired = append(fired, got...)
		clock.Advance(20 * time.Second)
	}

	require.Len(t, fired, 1)
	assert.Equal(t, entities.ID("1"), fired[0].ID)
	assert.Equal(t, 1, rec.count(NoteAlarm))

	require.Len(t, s.Notes(), 1, "fired note is deleted")
	assert.Equal(t, entities.ID("2"), s.Notes()[0].ID)
	assert.Equal(t, 1, remote.Count("DeleteNote"))
	require.Len(t, remote.Notes, 1)
}

func TestCheckAlarms_OtherDayNeverFires(t *testing.T) {
	ctx := context.Background()
	s, clock, _, _ := sessionWithNotes(t, entities.Note{ID: "1", Title: "t", Content: "c", Date: "2024-03-02", Time: "09:00"})

	clock.Set(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	fired, err := s.CheckAlarms(ctx, clock.Now())
	require.NoError(t, err)
	assert.Empty(t, fired)
	assert.Len(t, s.Notes(), 1)
}

func TestCheckAlarms_UnpaddedHour(t *testing.T) {
	ctx := context.Background()
	s, _, _, _ := sessionWithNotes(t, entities.Note{ID: "1", Title: "t", Content: "c", Date: "2024-03-01", Time: "9:05"})

	fired, err := s.CheckAlarms(ctx, time.Date(2024, 3, 1, 9, 5, 30, 0, time.Local))
	require.NoError(t, err)
	assert.Len(t, fired, 1)
}

func TestMinuteOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:00", 540, true},
		{"9:00", 540, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := minuteOfDay(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// blockingRemote holds DeleteNote until released so a check stays in flight.
type blockingRemote struct {
	*testutil.MockRemoteStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingRemote) DeleteNote(ctx context.Context, id entities.ID) error {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.MockRemoteStore.DeleteNote(ctx, id)
}

func TestAlarmWatcher_SkipsTickWhileCheckRuns(t *testing.T) {
	ctx := context.Background()
	remote := &blockingRemote{
		MockRemoteStore: testutil.NewMockRemoteStore(),
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	remote.Notes = []entities.Note{{ID: "1", Title: "t", Content: "c", Date: "2024-03-01", Time: "09:00"}}

	clock := testutil.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	s := NewSession(remote, testutil.NewMockLocalStore(), clock, logger.NewNop())
	s.Start(ctx)
	require.NoError(t, s.LoadAll(ctx))

	var mu sync.Mutex
	var fired []entities.Note
	handler := func(n entities.Note) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, n)
	}

	w := NewAlarmWatcher(s, time.Second, logger.NewNop())
	require.True(t, w.Tick(ctx, handler))
	<-remote.entered

	assert.False(t, w.Tick(ctx, handler), "tick skipped while the previous check is running")

	close(remote.release)
	w.Wait()

	assert.True(t, w.Tick(ctx, handler))
	w.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, fired, 1)
}

func TestAlarmWatcher_RunStopsOnCancel(t *testing.T) {
	s, _, _, _ := sessionWithNotes(t)
	w := NewAlarmWatcher(s, 10*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, nil) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
