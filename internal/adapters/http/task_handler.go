package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/dayplanner/internal/application/documents"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	documents *documents.Service
	logger    *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(documentService *documents.Service, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		documents: documentService,
		logger:    logger,
	}
}

// ListTasks godoc
// @Summary Get all tasks
// @Description Returns the device's tasks grouped by date
// @Tags tasks
// @Produce json
// @Param deviceId query string false "Device id (X-Device-Id header takes precedence)"
// @Success 200 {object} map[string][]object
// @Failure 500 {object} ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	doc, err := h.documents.GetTasks(c.Request().Context(), DeviceID(c))
	if err != nil {
		return serverError(c, h.logger, "Failed to read tasks", err)
	}
	return c.JSON(http.StatusOK, doc)
}

// ReplaceTasks godoc
// @Summary Save all tasks
// @Description Replaces the device's whole task document
// @Tags tasks
// @Accept json
// @Produce json
// @Param tasks body map[string][]object true "Tasks grouped by date"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) ReplaceTasks(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	doc, err := documents.DecodeTaskDocument(body)
	if err != nil {
		return badRequest(c, "Tasks must be an object of date buckets")
	}

	if err := h.documents.ReplaceTasks(c.Request().Context(), DeviceID(c), doc); err != nil {
		return serverError(c, h.logger, "Failed to save tasks", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{}.withMessage("Tasks saved successfully"))
}

// ListTasksByDate godoc
// @Summary Get tasks for a date
// @Tags tasks
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {array} object
// @Router /tasks/{date} [get]
func (h *TaskHandler) ListTasksByDate(c echo.Context) error {
	bucket, err := h.documents.GetTaskBucket(c.Request().Context(), DeviceID(c), c.Param("date"))
	if err != nil {
		return serverError(c, h.logger, "Failed to read tasks", err)
	}
	return c.JSON(http.StatusOK, bucket)
}

// SaveTask godoc
// @Summary Add or update a task
// @Description Upserts a task by id within the date bucket; assigns an id when absent
// @Tags tasks
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param task body object true "Task"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /tasks/{date} [post]
func (h *TaskHandler) SaveTask(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	task, err := documents.DecodeRecord(body)
	if err != nil {
		return badRequest(c, "Task must be an object")
	}

	saved, err := h.documents.UpsertTask(c.Request().Context(), DeviceID(c), c.Param("date"), task)
	if err != nil {
		return serverError(c, h.logger, "Failed to save task", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Task: saved})
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param id path string true "Task id"
// @Success 200 {object} SuccessResponse
// @Router /tasks/{date}/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	err := h.documents.DeleteTask(c.Request().Context(), DeviceID(c), c.Param("date"), entities.ID(c.Param("id")))
	if err != nil {
		return serverError(c, h.logger, "Failed to delete task", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{}.withMessage("Task deleted successfully"))
}
