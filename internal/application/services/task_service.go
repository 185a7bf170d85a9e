package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/taskmaster/dayplanner/internal/application/reconcile"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// TaskInput is the user-supplied form of a task. A set ID edits the task
// with that id.
type TaskInput struct {
	ID          entities.ID `json:"id"`
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	Date        string      `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string      `json:"startTime" validate:"required,hhmm"`
	EndTime     string      `json:"endTime" validate:"required,hhmm"`
	Category    string      `json:"category"`
	ProjectID   entities.ID `json:"projectId"`
}

func (in TaskInput) trimmed() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

// TaskService handles task-related operations
type TaskService struct {
	session  *reconcile.Session
	validate *validator.Validate
	logger   *logger.Logger

	creating atomic.Bool
}

// NewTaskService creates a new task service
func NewTaskService(session *reconcile.Session, validate *validator.Validate, logger *logger.Logger) *TaskService {
	return &TaskService{
		session:  session,
		validate: validate,
		logger:   logger.WithComponent("tasks"),
	}
}

// CreateOrUpdate creates a task, or edits the task named by input.ID. Edits
// keep the completed flag and move the task when its date changes. A create
// issued while another create is in flight is dropped and returns nil, nil.
func (s *TaskService) CreateOrUpdate(ctx context.Context, input TaskInput) (*entities.Task, error) {
	input = input.trimmed()
	if err := validateInput(s.validate, "task", input); err != nil {
		return nil, err
	}

	editing := !input.ID.IsZero()
	if !editing {
		if !s.creating.CompareAndSwap(false, true) {
			s.logger.Debugw("Task creation already in progress, ignoring duplicate submission")
			return nil, nil
		}
		defer s.creating.Store(false)
	}

	category := input.Category
	if category == "" {
		category = entities.DefaultCategory
	}

	var saved entities.Task
	change, err := s.session.Apply(ctx, func(st *reconcile.State) (reconcile.Change, error) {
		task := entities.Task{
			Title:       input.Title,
			Description: input.Description,
			Date:        input.Date,
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
			Category:    category,
			ProjectID:   input.ProjectID,
		}

		var oldProjectID entities.ID
		if editing {
			existing, ok := st.FindTask(input.Date, input.ID)
			if !ok {
				return reconcile.Change{}, fmt.Errorf("edit task %s: %w", input.ID, entities.ErrTaskNotFound)
			}
			task.ID = existing.ID
			task.Completed = existing.Completed
			oldProjectID = existing.ProjectID
		} else {
			task.ID = st.NextID(s.session.Now())
		}

		st.PutTask(task)
		saved = task

		return reconcile.Change{
			Tasks:    true,
			Projects: st.Relink(task, oldProjectID, task.ProjectID),
		}, nil
	})

	if err == nil {
		s.logger.Infow("Task saved", "task_id", saved.ID.String(), "date", saved.Date, "editing", editing)
	}
	return applied(&saved, change.Any(), err)
}

// Delete removes a task and its project back-reference.
func (s *TaskService) Delete(ctx context.Context, date string, id entities.ID) error {
	_, err := s.session.Apply(ctx, func(st *reconcile.State) (reconcile.Change, error) {
		task, ok := st.RemoveTask(date, id)
		if !ok {
			return reconcile.Change{}, fmt.Errorf("delete task %s: %w", id, entities.ErrTaskNotFound)
		}
		return reconcile.Change{
			Tasks:    true,
			Projects: st.Relink(task, task.ProjectID, ""),
		}, nil
	})
	if err == nil {
		s.logger.Infow("Task deleted", "task_id", id.String(), "date", date)
	}
	return err
}

// ToggleCompleted flips the task's completed flag in place.
func (s *TaskService) ToggleCompleted(ctx context.Context, date string, id entities.ID) (*entities.Task, error) {
	var toggled entities.Task
	change, err := s.session.Apply(ctx, func(st *reconcile.State) (reconcile.Change, error) {
		task, ok := st.FindTask(date, id)
		if !ok {
			return reconcile.Change{}, fmt.Errorf("toggle task %s: %w", id, entities.ErrTaskNotFound)
		}
		task.Completed = !task.Completed
		toggled = *task
		return reconcile.Change{Tasks: true}, nil
	})
	return applied(&toggled, change.Any(), err)
}

// Get returns one task by id.
func (s *TaskService) Get(id entities.ID) (*entities.Task, error) {
	tasks := s.session.Tasks()
	date, idx, ok := tasks.Find(id)
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	task := tasks[date][idx]
	return &task, nil
}

// ListDay returns the tasks of one day in start time order.
func (s *TaskService) ListDay(date string) []entities.Task {
	bucket := s.session.Tasks()[date]
	if bucket == nil {
		return []entities.Task{}
	}
	return bucket
}

// List returns every task bucket.
func (s *TaskService) List() entities.TasksByDay {
	return s.session.Tasks()
}
