package commands

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

func TestSettled(t *testing.T) {
	quota := &entities.PersistenceError{Kind: entities.KindTasks, Err: entities.ErrQuotaExceeded}
	projects := &entities.PersistenceError{Kind: entities.KindProjects, Err: entities.ErrQuotaExceeded}

	tests := []struct {
		name    string
		err     error
		dropped bool
	}{
		{name: "nil", err: nil, dropped: true},
		{name: "bare persistence error", err: quota, dropped: true},
		{name: "joined persistence errors", err: errors.Join(quota, projects), dropped: true},
		{name: "wrapped joined persistence errors", err: fmt.Errorf("save: %w", errors.Join(quota, projects)), dropped: true},
		{name: "persistence joined with not found", err: errors.Join(quota, entities.ErrNotFound)},
		{name: "wrapped join with not found", err: fmt.Errorf("save: %w", errors.Join(quota, entities.ErrNotFound))},
		{name: "not found", err: fmt.Errorf("edit task 7: %w", entities.ErrTaskNotFound)},
		{name: "validation", err: &entities.ValidationError{Entity: "task", Fields: []string{"title"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := settled(tt.err)
			if tt.dropped {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.err, got)
		})
	}
}
