package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

func TestNoteService_CreateEditDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	later, err := h.notes.CreateOrUpdate(ctx, NoteInput{Title: "Lunch", Content: "with Sam", Date: "2025-03-01", Time: "12:30"})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	early, err := h.notes.CreateOrUpdate(ctx, NoteInput{Title: "Call", Content: "dentist", Date: "2025-03-01", Time: "09:15"})
	require.NoError(t, err)

	notes := h.notes.List()
	require.Len(t, notes, 2)
	assert.Equal(t, early.ID, notes[0].ID, "ordered by date and time")
	assert.Equal(t, "2025-03-01T08:00:00.000Z", later.CreatedAt)
	assert.Equal(t, 2, h.remote.Count("SaveNote"))

	edited, err := h.notes.CreateOrUpdate(ctx, NoteInput{ID: later.ID, Title: "Lunch", Content: "with Sam and Ana", Date: "2025-03-01", Time: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, later.CreatedAt, edited.CreatedAt)
	assert.Equal(t, later.ID, h.notes.List()[0].ID, "re-sorted after edit")

	require.NoError(t, h.notes.Delete(ctx, later.ID))
	require.Len(t, h.notes.List(), 1)
	assert.Equal(t, 1, h.remote.Count("DeleteNote"))
	require.Len(t, h.remote.Notes, 1)

	assert.ErrorIs(t, h.notes.Delete(ctx, "12345"), entities.ErrNotFound)
}

func TestNoteService_Validation(t *testing.T) {
	h := newHarness(t)

	_, err := h.notes.CreateOrUpdate(context.Background(), NoteInput{Title: "x", Date: "2025-03-01", Time: "25:00"})
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"content", "time"}, verr.Fields)
	assert.Zero(t, h.remote.Count("SaveNote"))
}

func TestNoteService_RejectsUnpaddedTime(t *testing.T) {
	h := newHarness(t)

	note, err := h.notes.CreateOrUpdate(context.Background(), NoteInput{Title: "Call", Content: "dentist", Date: "2025-03-01", Time: "9:15"})
	assert.Nil(t, note)

	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"time"}, verr.Fields)
	assert.Empty(t, h.notes.List())
}
