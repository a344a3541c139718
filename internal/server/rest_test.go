package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todobridge/todobridge/internal/relay"
	"github.com/todobridge/todobridge/internal/todoist"
)

// stubFacade implements Facade with canned results.
type stubFacade struct {
	tasks    []todoist.Task
	projects []todoist.Project
	labels   []todoist.Label
	info     *relay.AccountInfo

	err     error
	healthy bool

	lastCreateTask    *todoist.CreateTaskInput
	lastCreateProject *todoist.CreateProjectInput
}

func (s *stubFacade) ListTasks(ctx context.Context, filter todoist.TaskFilter) ([]todoist.Task, error) {
	return s.tasks, s.err
}

func (s *stubFacade) CreateTask(ctx context.Context, input todoist.CreateTaskInput) (*todoist.Task, error) {
	s.lastCreateTask = &input
	if s.err != nil {
		return nil, s.err
	}
	return &todoist.Task{ID: "1", Content: input.Content}, nil
}

func (s *stubFacade) UpdateTask(ctx context.Context, id string, input todoist.UpdateTaskInput) (*todoist.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &todoist.Task{ID: id, Content: input.Content}, nil
}

func (s *stubFacade) CloseTask(ctx context.Context, id string) error  { return s.err }
func (s *stubFacade) ReopenTask(ctx context.Context, id string) error { return s.err }
func (s *stubFacade) DeleteTask(ctx context.Context, id string) error { return s.err }

func (s *stubFacade) ListProjects(ctx context.Context) ([]todoist.Project, error) {
	return s.projects, s.err
}

func (s *stubFacade) CreateProject(ctx context.Context, input todoist.CreateProjectInput) (*todoist.Project, error) {
	s.lastCreateProject = &input
	if s.err != nil {
		return nil, s.err
	}
	return &todoist.Project{ID: "1", Name: input.Name}, nil
}

func (s *stubFacade) ListLabels(ctx context.Context) ([]todoist.Label, error) {
	return s.labels, s.err
}

func (s *stubFacade) HealthCheck(ctx context.Context) bool { return s.healthy }

func (s *stubFacade) AccountInfo(ctx context.Context) (*relay.AccountInfo, error) {
	return s.info, s.err
}

func newTestHandler(facade *stubFacade, development bool) http.Handler {
	sc := NewServerContext(context.Background(), nil)
	checker := NewHealthChecker(sc, facade)
	restServer := NewRESTServer(RESTConfig{
		ServiceName:    "todobridge",
		ServiceVersion: "test",
		Development:    development,
	}, facade, checker, nil, nil)
	return restServer.Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestRootMetadata(t *testing.T) {
	handler := newTestHandler(&stubFacade{healthy: true}, false)

	recorder := doRequest(t, handler, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "todobridge", data["name"])
	assert.NotEmpty(t, data["endpoints"])
}

func TestListTasksEnvelope(t *testing.T) {
	facade := &stubFacade{tasks: []todoist.Task{
		{ID: "1", Content: "a"},
		{ID: "2", Content: "b"},
	}}
	handler := newTestHandler(facade, false)

	recorder := doRequest(t, handler, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
}

func TestCreateTaskCreated(t *testing.T) {
	facade := &stubFacade{}
	handler := newTestHandler(facade, false)

	recorder := doRequest(t, handler, http.MethodPost, "/api/tasks", `{"content": "Buy milk", "priority": 2}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])

	require.NotNil(t, facade.lastCreateTask)
	assert.Equal(t, "Buy milk", facade.lastCreateTask.Content)
	assert.Equal(t, 2, facade.lastCreateTask.Priority)
}

func TestCreateTaskValidationRejectedBeforeFacade(t *testing.T) {
	facade := &stubFacade{}
	handler := newTestHandler(facade, false)

	recorder := doRequest(t, handler, http.MethodPost, "/api/tasks", `{"priority": 9}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["details"])

	// The facade must not have been called for an invalid input.
	assert.Nil(t, facade.lastCreateTask)
}

func TestUpstream404PassesThrough(t *testing.T) {
	facade := &stubFacade{err: todoist.NewAPIError(404, "", "Task not found")}
	handler := newTestHandler(facade, false)

	recorder := doRequest(t, handler, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "404")
}

func TestUpstreamStatusOutOfRangeBecomes500(t *testing.T) {
	facade := &stubFacade{err: todoist.NewAPIError(302, "", "")}
	handler := newTestHandler(facade, false)

	recorder := doRequest(t, handler, http.MethodGet, "/api/tasks", "")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestNetworkErrorHiddenInProduction(t *testing.T) {
	netErr := todoist.NewNetworkError(assert.AnError, false)
	facade := &stubFacade{err: netErr}

	recorder := doRequest(t, newTestHandler(facade, false), http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "internal server error", body["error"])

	// Development mode may include the underlying error string.
	recorder = doRequest(t, newTestHandler(facade, true), http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	body = decodeBody(t, recorder)
	assert.Contains(t, body["error"], "network error")
}

func TestCompleteTask(t *testing.T) {
	handler := newTestHandler(&stubFacade{}, false)

	recorder := doRequest(t, handler, http.MethodPost, "/api/tasks/7/complete", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "7", data["id"])
	assert.Equal(t, true, data["completed"])
}

func TestDeleteTask(t *testing.T) {
	handler := newTestHandler(&stubFacade{}, false)

	recorder := doRequest(t, handler, http.MethodDelete, "/api/tasks/7", "")
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestCreateProject(t *testing.T) {
	facade := &stubFacade{}
	handler := newTestHandler(facade, false)

	recorder := doRequest(t, handler, http.MethodPost, "/api/projects", `{"name": "Inbox", "color": "red"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	require.NotNil(t, facade.lastCreateProject)
	assert.Equal(t, "Inbox", facade.lastCreateProject.Name)
	assert.Equal(t, "red", facade.lastCreateProject.Color)
}

func TestUnknownRouteHint(t *testing.T) {
	handler := newTestHandler(&stubFacade{}, false)

	recorder := doRequest(t, handler, http.MethodGet, "/api/unknown", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["available_routes"])
}

func TestHealthReflectsUpstream(t *testing.T) {
	up := newTestHandler(&stubFacade{healthy: true}, false)
	recorder := doRequest(t, up, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	down := newTestHandler(&stubFacade{healthy: false}, false)
	recorder = doRequest(t, down, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	// The simple probe never touches upstream.
	recorder = doRequest(t, down, http.MethodGet, "/health/simple", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestAccountEndpoint(t *testing.T) {
	facade := &stubFacade{info: &relay.AccountInfo{ProjectCount: 2, TaskCount: 5}}
	handler := newTestHandler(facade, false)

	recorder := doRequest(t, handler, http.MethodGet, "/api/account", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["project_count"])
	assert.Equal(t, float64(5), data["task_count"])
}
