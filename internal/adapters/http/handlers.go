package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/dayplanner/internal/application/documents"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// DeviceHeader names the header a client identifies itself with.
const DeviceHeader = "X-Device-Id"

// DefaultDeviceID scopes requests that carry no device id.
const DefaultDeviceID = "default"

const maxBodyBytes = 10 << 20

// DeviceID returns the requesting device: the X-Device-Id header, then the
// deviceId query parameter, then "default".
func DeviceID(c echo.Context) string {
	if id := strings.TrimSpace(c.Request().Header.Get(DeviceHeader)); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.QueryParam("deviceId")); id != "" {
		return id
	}
	return DefaultDeviceID
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	documents *documents.Service
	logger    *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(documentService *documents.Service, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		documents: documentService,
		logger:    logger,
	}
}

// Health godoc
// @Summary Health check
// @Description Reports that the server is running
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Message: "Server is running"})
}

// Ready godoc
// @Summary Readiness check
// @Description Reports whether the document store is reachable
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} ErrorResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	if err := h.documents.Ping(c.Request().Context()); err != nil {
		h.logger.Warnw("Document store not ready", "error", err)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Document store unavailable"})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ready", Message: "Document store reachable"})
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (r SuccessResponse) withMessage(msg string) SuccessResponse {
	r.Success = true
	r.Message = msg
	return r
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: msg})
}

func serverError(c echo.Context, log *logger.Logger, msg string, err error) error {
	log.Errorw(msg, "error", err, "device_id", DeviceID(c), "path", c.Path())
	if errors.Is(err, entities.ErrNotFound) {
		return notFound(c, msg)
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
}

// Request/Response types

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Task    documents.Record `json:"task,omitempty"`
	Note    documents.Record `json:"note,omitempty"`
	Project documents.Record `json:"project,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
