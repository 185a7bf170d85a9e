package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskmaster/dayplanner/internal/application/reconcile"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// NoteInput is the user-supplied form of a note.
type NoteInput struct {
	ID      entities.ID `json:"id"`
	Title   string      `json:"title" validate:"required"`
	Content string      `json:"content" validate:"required"`
	Date    string      `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string      `json:"time" validate:"required,hhmm"`
}

// NoteService manages dated reminder notes.
type NoteService struct {
	session  *reconcile.Session
	validate *validator.Validate
	logger   *logger.Logger
}

// NewNoteService creates a new note service
func NewNoteService(session *reconcile.Session, validate *validator.Validate, logger *logger.Logger) *NoteService {
	return &NoteService{
		session:  session,
		validate: validate,
		logger:   logger.WithComponent("notes"),
	}
}

// CreateOrUpdate stores a note. Edits keep the original createdAt. The
// collection stays ordered by date and time.
func (s *NoteService) CreateOrUpdate(ctx context.Context, input NoteInput) (*entities.Note, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	if err := validateInput(s.validate, "note", input); err != nil {
		return nil, err
	}

	var saved entities.Note
	change, err := s.session.Apply(ctx, func(st *reconcile.State) (reconcile.Change, error) {
		note := entities.Note{
			Title:   input.Title,
			Content: input.Content,
			Date:    input.Date,
			Time:    input.Time,
		}

		if !input.ID.IsZero() {
			idx, err := entities.Resolve(st.Notes, input.ID)
			if err != nil {
				return reconcile.Change{}, fmt.Errorf("edit note %s: %w", input.ID, entities.ErrNoteNotFound)
			}
			note.ID = st.Notes[idx].ID
			note.CreatedAt = st.Notes[idx].CreatedAt
			st.Notes[idx] = note
		} else {
			now := s.session.Now()
			note.ID = st.NextID(now)
			note.CreatedAt = now.UTC().Format(entities.TimestampLayout)
			st.Notes = append(st.Notes, note)
		}

		entities.SortNotes(st.Notes)
		saved = note
		return reconcile.Change{Notes: true, SavedNote: &note}, nil
	})

	if err == nil {
		s.logger.Infow("Note saved", "note_id", saved.ID.String(), "date", saved.Date, "time", saved.Time)
	}
	return applied(&saved, change.Any(), err)
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, id entities.ID) error {
	_, err := s.session.Apply(ctx, func(st *reconcile.State) (reconcile.Change, error) {
		idx, err := entities.Resolve(st.Notes, id)
		if err != nil {
			return reconcile.Change{}, fmt.Errorf("delete note %s: %w", id, entities.ErrNoteNotFound)
		}
		removed := st.Notes[idx].ID
		st.Notes = append(st.Notes[:idx:idx], st.Notes[idx+1:]...)
		return reconcile.Change{Notes: true, DeletedNotes: []entities.ID{removed}}, nil
	})
	return err
}

// List returns every note ordered by date and time.
func (s *NoteService) List() []entities.Note {
	return s.session.Notes()
}
