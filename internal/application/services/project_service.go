package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskmaster/dayplanner/internal/application/reconcile"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// ProjectInput is the user-supplied form of a project. Back-references and
// createdAt are never taken from input.
type ProjectInput struct {
	ID          entities.ID            `json:"id"`
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	StartDate   string                 `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string                 `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    entities.Priority      `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      entities.ProjectStatus `json:"status" validate:"omitempty,oneof=not-started in-progress on-hold completed"`
	Color       string                 `json:"color" validate:"omitempty,hexcolor"`
}

// ProjectService handles project-related operations
type ProjectService struct {
	session  *reconcile.Session
	validate *validator.Validate
	logger   *logger.Logger

	creating atomic.Bool
}

// NewProjectService creates a new project service
func NewProjectService(session *reconcile.Session, validate *validator.Validate, logger *logger.Logger) *ProjectService {
	return &ProjectService{
		session:  session,
		validate: validate,
		logger:   logger.WithComponent("projects"),
	}
}

// CreateOrUpdate creates a project, or edits the one named by input.ID.
// Missing optional fields take their defaults; edits carry createdAt and
// the task back-references forward. A create issued while another create is
// in flight is dropped and returns nil, nil.
func (s *ProjectService) CreateOrUpdate(ctx context.Context, input ProjectInput) (*entities.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.StartDate = strings.TrimSpace(input.StartDate)
	input.EndDate = strings.TrimSpace(input.EndDate)
	input.Color = strings.TrimSpace(input.Color)
	if err := validateInput(s.validate, "project", input); err != nil {
		return nil, err
	}

	editing := !input.ID.IsZero()
	if !editing {
		if !s.creating.CompareAndSwap(false, true) {
			s.logger.Debugw("Project creation already in progress, ignoring duplicate submission")
			return nil, nil
		}
		defer s.creating.Store(false)
	}

	project := entities.Project{
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Priority:    input.Priority,
		Status:      input.Status,
		Color:       input.Color,
	}
	applyProjectDefaults(&project)

	change, err := s.session.Apply(ctx, func(st *reconcile.State) (reconcile.Change, error) {
		if editing {
			idx, err := entities.Resolve(st.Projects, input.ID)
			if err != nil {
				return reconcile.Change{}, fmt.Errorf("edit project %s: %w", input.ID, entities.ErrProjectNotFound)
			}
			existing := st.Projects[idx]
			project.ID = existing.ID
			project.CreatedAt = existing.CreatedAt
			project.Tasks = append([]entities.TaskRef{}, existing.Tasks...)
			st.Projects[idx] = project
		} else {
			now := s.session.Now()
			project.ID = st.NextID(now)
			project.CreatedAt = now.UTC().Format(entities.TimestampLayout)
			project.Tasks = []entities.TaskRef{}
			st.Projects = append(st.Projects, project)
		}
		return reconcile.Change{Projects: true}, nil
	})

	if err == nil {
		s.logger.Infow("Project saved", "project_id", project.ID.String(), "name", project.Name, "editing", editing)
	}
	out := project.Clone()
	return applied(&out, change.Any(), err)
}

func applyProjectDefaults(p *entities.Project) {
	if p.EndDate == "" {
		if start, err := time.Parse(entities.DateLayout, p.StartDate); err == nil {
			p.EndDate = start.AddDate(0, 0, entities.DefaultProjectSpan).Format(entities.DateLayout)
		}
	}
	if p.Priority == "" {
		p.Priority = entities.PriorityMedium
	}
	if p.Status == "" {
		p.Status = entities.ProjectStatusNotStarted
	}
	if p.Color == "" {
		p.Color = entities.DefaultProjectColor
	}
}

// Delete removes a project after clearing projectId on every task that
// still points at it.
func (s *ProjectService) Delete(ctx context.Context, id entities.ID) error {
	cleared := 0
	_, err := s.session.Apply(ctx, func(st *reconcile.State) (reconcile.Change, error) {
		idx, err := entities.Resolve(st.Projects, id)
		if err != nil {
			return reconcile.Change{}, fmt.Errorf("delete project %s: %w", id, entities.ErrProjectNotFound)
		}
		cleared = st.UnlinkProject(id)
		st.Projects = append(st.Projects[:idx:idx], st.Projects[idx+1:]...)
		return reconcile.Change{Tasks: cleared > 0, Projects: true}, nil
	})
	if err == nil {
		s.logger.Infow("Project deleted", "project_id", id.String(), "tasks_unlinked", cleared)
	}
	return err
}

// Get returns one project by id.
func (s *ProjectService) Get(id entities.ID) (*entities.Project, error) {
	projects := s.session.Projects()
	idx, err := entities.Resolve(projects, id)
	if err != nil {
		return nil, entities.ErrProjectNotFound
	}
	return &projects[idx], nil
}

// List returns every project.
func (s *ProjectService) List() []entities.Project {
	return s.session.Projects()
}

// Progress returns the completion percentage of a project.
func (s *ProjectService) Progress(id entities.ID) (int, error) {
	state := s.session.Snapshot()
	idx, err := entities.Resolve(state.Projects, id)
	if err != nil {
		return 0, entities.ErrProjectNotFound
	}
	return CalculateProgress(state.Projects[idx], state.Tasks), nil
}

// CalculateProgress returns round(100 * completed / linked) over the
// project's back-references that still resolve to a task, or 0 when none do.
func CalculateProgress(project entities.Project, tasks entities.TasksByDay) int {
	total, completed := 0, 0
	for _, ref := range project.Tasks {
		task, ok := lookupTask(tasks, ref)
		if !ok {
			continue
		}
		total++
		if task.Completed {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

func lookupTask(tasks entities.TasksByDay, ref entities.TaskRef) (entities.Task, bool) {
	if idx, err := entities.Resolve(tasks[ref.Date], ref.TaskID); err == nil {
		return tasks[ref.Date][idx], true
	}
	if date, idx, ok := tasks.Find(ref.TaskID); ok {
		return tasks[date][idx], true
	}
	return entities.Task{}, false
}
