package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/dayplanner/internal/application/documents"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// NoteHandler handles note-related requests
type NoteHandler struct {
	documents *documents.Service
	logger    *logger.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(documentService *documents.Service, logger *logger.Logger) *NoteHandler {
	return &NoteHandler{
		documents: documentService,
		logger:    logger,
	}
}

// ListNotes godoc
// @Summary Get all notes
// @Tags notes
// @Produce json
// @Success 200 {array} object
// @Router /notes [get]
func (h *NoteHandler) ListNotes(c echo.Context) error {
	notes, err := h.documents.GetNotes(c.Request().Context(), DeviceID(c))
	if err != nil {
		return serverError(c, h.logger, "Failed to read notes", err)
	}
	return c.JSON(http.StatusOK, notes)
}

// SaveNote godoc
// @Summary Add or update a note
// @Description Upserts a note by id; assigns id and createdAt when absent
// @Tags notes
// @Accept json
// @Produce json
// @Param note body object true "Note"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /notes [post]
func (h *NoteHandler) SaveNote(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	note, err := documents.DecodeRecord(body)
	if err != nil {
		return badRequest(c, "Note must be an object")
	}

	saved, err := h.documents.UpsertNote(c.Request().Context(), DeviceID(c), note)
	if err != nil {
		return serverError(c, h.logger, "Failed to save note", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Note: saved})
}

// DeleteNote godoc
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Param id path string true "Note id"
// @Success 200 {object} SuccessResponse
// @Router /notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	if err := h.documents.DeleteNote(c.Request().Context(), DeviceID(c), entities.ID(c.Param("id"))); err != nil {
		return serverError(c, h.logger, "Failed to delete note", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{}.withMessage("Note deleted successfully"))
}
