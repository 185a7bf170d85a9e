package reconcile

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// CheckAlarms fires every note whose date is today and whose time is the
// current minute of now. A fired note is removed from memory and persisted
// as deleted before it is returned and announced as a NoteAlarm event, so
// each alarm is delivered at most once per session.
func (s *Session) CheckAlarms(ctx context.Context, now time.Time) ([]entities.Note, error) {
	today := now.Format(entities.DateLayout)
	current := now.Hour()*60 + now.Minute()

	var fired []entities.Note
	_, err := s.Apply(ctx, func(st *State) (Change, error) {
		kept := make([]entities.Note, 0, len(st.Notes))
		for _, note := range st.Notes {
			if note.Date == today {
				if minute, ok := minuteOfDay(note.Time); ok && minute == current {
					key := alarmKey(note)
					if _, seen := s.flagged[key]; !seen {
						s.flagged[key] = struct{}{}
						fired = append(fired, note)
						continue
					}
				}
			}
			kept = append(kept, note)
		}
		if len(fired) == 0 {
			return Change{}, nil
		}
		st.Notes = kept
		change := Change{Notes: true}
		for _, note := range fired {
			change.DeletedNotes = append(change.DeletedNotes, note.ID)
		}
		return change, nil
	})

	for i := range fired {
		note := fired[i]
		s.logger.Infow("Note alarm", "note_id", note.ID.String(), "title", note.Title, "time", note.Time)
		s.emit(Event{Type: NoteAlarm, Kind: entities.KindNotes, Note: &note})
	}
	return fired, err
}

func alarmKey(n entities.Note) string {
	return n.ID.Canonical().String() + "|" + n.Date + "|" + n.Time
}

// minuteOfDay parses H:MM or HH:MM into minutes after midnight.
func minuteOfDay(hhmm string) (int, bool) {
	hour, minute, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(hour))
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(minute))
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// AlarmWatcher polls a session for due note alarms.
type AlarmWatcher struct {
	session  *Session
	interval time.Duration
	logger   *logger.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewAlarmWatcher creates a watcher ticking every interval.
func NewAlarmWatcher(session *Session, interval time.Duration, log *logger.Logger) *AlarmWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &AlarmWatcher{
		session:  session,
		interval: interval,
		logger:   log.WithComponent("alarms"),
	}
}

// Run checks immediately and then on every tick until ctx is cancelled,
// calling handler for each fired note. A tick that arrives while the
// previous check is still running is skipped.
func (w *AlarmWatcher) Run(ctx context.Context, handler func(entities.Note)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Tick(ctx, handler)
	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return nil
		case <-ticker.C:
			w.Tick(ctx, handler)
		}
	}
}

// Tick starts one check in the background. It returns false when the
// previous check has not finished and this one was skipped.
func (w *AlarmWatcher) Tick(ctx context.Context, handler func(entities.Note)) bool {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Debugw("Skipping alarm tick, previous check still running")
		return false
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.running.Store(false)

		fired, err := w.session.CheckAlarms(ctx, w.session.Now())
		if err != nil {
			w.logger.Warnw("Persisting fired alarms failed", "error", err)
		}
		for _, note := range fired {
			if handler != nil {
				handler(note)
			}
		}
	}()
	return true
}

// Wait blocks until the in-flight check, if any, has finished.
func (w *AlarmWatcher) Wait() {
	w.wg.Wait()
}
