package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Todoist REST v2 API root.
	DefaultBaseURL = "https://api.todoist.com/rest/v2"

	// DefaultTimeout bounds every upstream call. No retries are
	// performed; a timeout surfaces immediately as a network-kind
	// error.
	DefaultTimeout = 15 * time.Second
)

// Client speaks to the Todoist REST API. It is stateless per call and
// safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the upstream base URL (used by tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout sets the per-call upstream timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for schema-drift warnings.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Todoist client authenticated with the given API
// token.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("todoist API token cannot be empty")
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// upstreamError is the best-effort shape of a Todoist error body.
type upstreamError struct {
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
}

// do issues a single request and returns the response body and status.
// Transport failures are wrapped into the network-kind Error; non-2xx
// statuses into the api-kind Error. Exactly one request is issued, no
// retries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, NewNetworkError(err, isTimeout(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, NewNetworkError(err, isTimeout(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Best-effort extraction of an upstream error code; the body
		// may be plain text.
		var ue upstreamError
		code := ""
		if json.Unmarshal(data, &ue) == nil && ue.ErrorCode != 0 {
			code = fmt.Sprintf("%d", ue.ErrorCode)
		}
		return nil, resp.StatusCode, NewAPIError(resp.StatusCode, code, string(data))
	}

	return data, resp.StatusCode, nil
}

// isTimeout reports whether a transport error represents a deadline or
// cancellation rather than an ordinary connect failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// queryFromFilter serializes a TaskFilter into query parameters, with
// IDs joined by comma.
func queryFromFilter(filter TaskFilter) url.Values {
	query := url.Values{}
	if filter.ProjectID != "" {
		query.Set("project_id", filter.ProjectID)
	}
	if filter.SectionID != "" {
		query.Set("section_id", filter.SectionID)
	}
	if filter.Label != "" {
		query.Set("label", filter.Label)
	}
	if filter.Filter != "" {
		query.Set("filter", filter.Filter)
	}
	if filter.Lang != "" {
		query.Set("lang", filter.Lang)
	}
	if len(filter.IDs) > 0 {
		query.Set("ids", strings.Join(filter.IDs, ","))
	}
	return query
}

// ListTasks returns active tasks, optionally narrowed by filter.
// Listing validation is per-item lenient.
func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/tasks", queryFromFilter(filter), nil)
	if err != nil {
		return nil, err
	}
	return ParseTaskList(data, c.logger)
}

// GetTask retrieves a single task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return ParseTask(data)
}

// CreateTask creates a task from an already-validated input.
func (c *Client) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/tasks", nil, input)
	if err != nil {
		return nil, err
	}
	return ParseTask(data)
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*Task, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id), nil, input)
	if err != nil {
		return nil, err
	}
	return ParseTask(data)
}

// CloseTask marks a task as completed.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/close", nil, nil)
	return err
}

// ReopenTask reopens a completed task.
func (c *Client) ReopenTask(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/reopen", nil, nil)
	return err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
	return err
}

// ListProjects returns all projects. Listing validation is per-item
// lenient.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/projects", nil, nil)
	if err != nil {
		return nil, err
	}
	return ParseProjectList(data, c.logger)
}

// GetProject retrieves a single project by ID.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return ParseProject(data)
}

// CreateProject creates a project from an already-validated input.
func (c *Client) CreateProject(ctx context.Context, input CreateProjectInput) (*Project, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/projects", nil, input)
	if err != nil {
		return nil, err
	}
	return ParseProject(data)
}

// UpdateProject applies a partial update to a project.
func (c *Client) UpdateProject(ctx context.Context, id string, input UpdateProjectInput) (*Project, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(id), nil, input)
	if err != nil {
		return nil, err
	}
	return ParseProject(data)
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
	return err
}

// ListLabels returns all personal labels. Listing validation is
// per-item lenient.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/labels", nil, nil)
	if err != nil {
		return nil, err
	}
	return ParseLabelList(data, c.logger)
}

// GetLabel retrieves a single label by ID.
func (c *Client) GetLabel(ctx context.Context, id string) (*Label, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/labels/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return ParseLabel(data)
}
