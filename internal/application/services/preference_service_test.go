package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

func TestPreferenceService_Language(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, "en", h.prefs.Language())

	require.NoError(t, h.prefs.SetLanguage(ctx, "AR"))
	assert.Equal(t, "ar", h.prefs.Language())
	assert.Equal(t, "ar", h.remote.Preferences.Language())

	require.NoError(t, h.prefs.SetLanguage(ctx, "ar"))
	assert.Equal(t, 1, h.remote.Count("SavePreferences"), "unchanged language is not saved again")

	assert.ErrorIs(t, h.prefs.SetLanguage(ctx, "fr"), entities.ErrValidation)
	assert.Equal(t, "ar", h.prefs.All()["language"])
}
