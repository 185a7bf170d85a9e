package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/dayplanner/internal/application/documents"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// PreferenceHandler handles preference requests
type PreferenceHandler struct {
	documents *documents.Service
	logger    *logger.Logger
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(documentService *documents.Service, logger *logger.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		documents: documentService,
		logger:    logger,
	}
}

// GetPreferences godoc
// @Summary Get preferences
// @Tags preferences
// @Produce json
// @Success 200 {object} object
// @Router /preferences [get]
func (h *PreferenceHandler) GetPreferences(c echo.Context) error {
	prefs, err := h.documents.GetPreferences(c.Request().Context(), DeviceID(c))
	if err != nil {
		return serverError(c, h.logger, "Failed to read preferences", err)
	}
	return c.JSON(http.StatusOK, prefs)
}

// SavePreferences godoc
// @Summary Save preferences
// @Description Replaces the device's preference object
// @Tags preferences
// @Accept json
// @Produce json
// @Param preferences body object true "Preferences"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /preferences [post]
func (h *PreferenceHandler) SavePreferences(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	prefs, err := documents.DecodeObject(body)
	if err != nil {
		return badRequest(c, "Preferences must be an object")
	}

	if err := h.documents.ReplacePreferences(c.Request().Context(), DeviceID(c), prefs); err != nil {
		return serverError(c, h.logger, "Failed to save preferences", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{}.withMessage("Preferences saved successfully"))
}
