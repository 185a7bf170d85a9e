package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskmaster/dayplanner/internal/application/reconcile"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

type languageInput struct {
	Language string `json:"language" validate:"required,oneof=en ar"`
}

// PreferenceService manages per-device settings.
type PreferenceService struct {
	session  *reconcile.Session
	validate *validator.Validate
	logger   *logger.Logger
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(session *reconcile.Session, validate *validator.Validate, logger *logger.Logger) *PreferenceService {
	return &PreferenceService{
		session:  session,
		validate: validate,
		logger:   logger.WithComponent("preferences"),
	}
}

// Language returns the UI language, "en" when unset.
func (s *PreferenceService) Language() string {
	return s.session.Preferences().Language()
}

// SetLanguage stores the UI language. Supported values are en and ar.
func (s *PreferenceService) SetLanguage(ctx context.Context, lang string) error {
	input := languageInput{Language: strings.ToLower(strings.TrimSpace(lang))}
	if err := validateInput(s.validate, "preferences", input); err != nil {
		return err
	}

	_, err := s.session.Apply(ctx, func(st *reconcile.State) (reconcile.Change, error) {
		if st.Prefs == nil {
			st.Prefs = entities.Preferences{}
		}
		if current, ok := st.Prefs["language"].(string); ok && current == input.Language {
			return reconcile.Change{}, nil
		}
		st.Prefs["language"] = input.Language
		return reconcile.Change{Preferences: true}, nil
	})
	return err
}

// All returns every stored preference.
func (s *PreferenceService) All() entities.Preferences {
	return s.session.Preferences()
}
