package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/dayplanner/internal/application/documents"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// ProjectHandler handles project-related requests
type ProjectHandler struct {
	documents *documents.Service
	logger    *logger.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(documentService *documents.Service, logger *logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		documents: documentService,
		logger:    logger,
	}
}

// ListProjects godoc
// @Summary Get all projects
// @Tags projects
// @Produce json
// @Success 200 {array} object
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	projects, err := h.documents.GetProjects(c.Request().Context(), DeviceID(c))
	if err != nil {
		return serverError(c, h.logger, "Failed to read projects", err)
	}
	return c.JSON(http.StatusOK, projects)
}

// ReplaceProjects godoc
// @Summary Save all projects
// @Description Replaces the device's project list; a body that is not a list stores an empty list
// @Tags projects
// @Accept json
// @Produce json
// @Param projects body []object true "Projects"
// @Success 200 {object} SuccessResponse
// @Router /projects [post]
func (h *ProjectHandler) ReplaceProjects(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.documents.ReplaceProjects(c.Request().Context(), DeviceID(c), documents.DecodeRecordList(body)); err != nil {
		return serverError(c, h.logger, "Failed to save projects", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{}.withMessage("Projects saved successfully"))
}

// GetProject godoc
// @Summary Get project by ID
// @Tags projects
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} object
// @Failure 404 {object} ErrorResponse
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c echo.Context) error {
	project, err := h.documents.GetProject(c.Request().Context(), DeviceID(c), entities.ID(c.Param("id")))
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return notFound(c, "Project not found")
		}
		return serverError(c, h.logger, "Failed to read project", err)
	}
	return c.JSON(http.StatusOK, project)
}

// SaveProject godoc
// @Summary Add or update a project
// @Description Upserts a project by id; assigns id and createdAt when absent
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string false "Project id"
// @Param project body object true "Project"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /projects/{id} [post]
func (h *ProjectHandler) SaveProject(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	project, err := documents.DecodeRecord(body)
	if err != nil {
		return badRequest(c, "Project must be an object")
	}

	saved, err := h.documents.UpsertProject(c.Request().Context(), DeviceID(c), project)
	if err != nil {
		return serverError(c, h.logger, "Failed to save project", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Project: saved})
}

// DeleteProject godoc
// @Summary Delete a project
// @Tags projects
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} SuccessResponse
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	if err := h.documents.DeleteProject(c.Request().Context(), DeviceID(c), entities.ID(c.Param("id"))); err != nil {
		return serverError(c, h.logger, "Failed to delete project", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{}.withMessage("Project deleted successfully"))
}
