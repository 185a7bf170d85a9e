// Package remote is the planner's HTTP client for the backend document API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/infrastructure/metrics"
)

// DeviceHeader carries the device id alongside the deviceId query parameter.
const DeviceHeader = "X-Device-Id"

// DefaultTimeout bounds a single request when none is configured.
const DefaultTimeout = 10 * time.Second

// Client talks to the backend on behalf of one device. It never retries;
// every failure wraps entities.ErrRemoteUnavailable.
type Client struct {
	baseURL    string
	deviceID   string
	timeout    time.Duration
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics counts requests on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL, deviceID string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		deviceID:   deviceID,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
		logger:     log.WithComponent("remote").WithDevice(deviceID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health reports whether the backend answers its health probe.
func (c *Client) Health(ctx context.Context) bool {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", "/health", nil, &resp); err != nil {
		c.logger.Warnw("Health check failed", "error", err)
		return false
	}
	return resp.Status == "ok"
}

// GetTasks fetches every task bucket of the device.
func (c *Client) GetTasks(ctx context.Context) (entities.TasksByDay, error) {
	tasks := entities.TasksByDay{}
	if err := c.do(ctx, http.MethodGet, "/tasks", "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = entities.TasksByDay{}
	}
	return tasks, nil
}

// SaveTasks replaces every task bucket of the device.
func (c *Client) SaveTasks(ctx context.Context, tasks entities.TasksByDay) error {
	if tasks == nil {
		tasks = entities.TasksByDay{}
	}
	return c.do(ctx, http.MethodPost, "/tasks", "/tasks", tasks, nil)
}

// GetTasksByDate fetches one bucket.
func (c *Client) GetTasksByDate(ctx context.Context, date string) ([]entities.Task, error) {
	var tasks []entities.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(date), "/tasks/:date", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []entities.Task{}
	}
	return tasks, nil
}

// GetNotes fetches every note of the device.
func (c *Client) GetNotes(ctx context.Context) ([]entities.Note, error) {
	var notes []entities.Note
	if err := c.do(ctx, http.MethodGet, "/notes", "/notes", nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []entities.Note{}
	}
	return notes, nil
}

type noteResponse struct {
	Note *entities.Note `json:"note"`
}

// SaveNote upserts one note and returns it as stored by the server.
func (c *Client) SaveNote(ctx context.Context, note entities.Note) (*entities.Note, error) {
	var resp noteResponse
	if err := c.do(ctx, http.MethodPost, "/notes", "/notes", note, &resp); err != nil {
		return nil, err
	}
	if resp.Note == nil {
		return &note, nil
	}
	return resp.Note, nil
}

// DeleteNote removes one note.
func (c *Client) DeleteNote(ctx context.Context, id entities.ID) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id.String()), "/notes/:id", nil, nil)
}

// GetProjects fetches every project of the device.
func (c *Client) GetProjects(ctx context.Context) ([]entities.Project, error) {
	var projects []entities.Project
	if err := c.do(ctx, http.MethodGet, "/projects", "/projects", nil, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []entities.Project{}
	}
	return projects, nil
}

// SaveProjects replaces the device's project list.
func (c *Client) SaveProjects(ctx context.Context, projects []entities.Project) error {
	if projects == nil {
		projects = []entities.Project{}
	}
	return c.do(ctx, http.MethodPost, "/projects", "/projects", projects, nil)
}

// GetProject fetches one project; a 404 yields entities.ErrProjectNotFound.
func (c *Client) GetProject(ctx context.Context, id entities.ID) (*entities.Project, error) {
	var project entities.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id.String()), "/projects/:id", nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetPreferences fetches the device's preference object.
func (c *Client) GetPreferences(ctx context.Context) (entities.Preferences, error) {
	prefs := entities.Preferences{}
	if err := c.do(ctx, http.MethodGet, "/preferences", "/preferences", nil, &prefs); err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = entities.Preferences{}
	}
	return prefs, nil
}

// SavePreferences replaces the device's preference object.
func (c *Client) SavePreferences(ctx context.Context, prefs entities.Preferences) error {
	if prefs == nil {
		prefs = entities.Preferences{}
	}
	return c.do(ctx, http.MethodPost, "/preferences", "/preferences", prefs, nil)
}

// do issues one request. route is the templated path used as metric label.
func (c *Client) do(ctx context.Context, method, path, route string, body, out any) (err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.ObserveRemote(method, route, outcome)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint, err := url.Parse(c.baseURL + "/api" + path)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, entities.ErrRemoteUnavailable, err)
	}
	query := endpoint.Query()
	query.Set("deviceId", c.deviceID)
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil && method != http.MethodGet {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, entities.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(DeviceHeader, c.deviceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, entities.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && route == "/projects/:id" && method == http.MethodGet {
		return fmt.Errorf("%s %s: %w", method, path, entities.ErrProjectNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w: status %d", method, path, entities.ErrRemoteUnavailable, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: decode response: %v", method, path, entities.ErrRemoteUnavailable, err)
	}
	return nil
}
