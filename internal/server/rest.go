package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/todobridge/todobridge/internal/instrumentation"
	"github.com/todobridge/todobridge/internal/logging"
	"github.com/todobridge/todobridge/internal/relay"
	"github.com/todobridge/todobridge/internal/todoist"
)

// maxBodyBytes bounds request bodies accepted by the REST front end.
const maxBodyBytes = 1 << 20

// Facade is the relay surface consumed by the REST front end. The
// concrete *relay.Service satisfies it; tests substitute a stub.
type Facade interface {
	ListTasks(ctx context.Context, filter todoist.TaskFilter) ([]todoist.Task, error)
	CreateTask(ctx context.Context, input todoist.CreateTaskInput) (*todoist.Task, error)
	UpdateTask(ctx context.Context, id string, input todoist.UpdateTaskInput) (*todoist.Task, error)
	CloseTask(ctx context.Context, id string) error
	ReopenTask(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]todoist.Project, error)
	CreateProject(ctx context.Context, input todoist.CreateProjectInput) (*todoist.Project, error)
	ListLabels(ctx context.Context) ([]todoist.Label, error)
	HealthCheck(ctx context.Context) bool
	AccountInfo(ctx context.Context) (*relay.AccountInfo, error)
}

// RESTConfig holds configuration for the REST front end.
type RESTConfig struct {
	// Addr is the address to bind the API server to (e.g., ":3000").
	Addr string

	// ServiceName and ServiceVersion are reported by the root endpoint.
	ServiceName    string
	ServiceVersion string

	// Development includes internal error strings in 500 responses.
	Development bool
}

// RESTServer is the JSON HTTP front end over the relay facade.
type RESTServer struct {
	config  RESTConfig
	service Facade
	checker *HealthChecker
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	httpServer *http.Server
}

// NewRESTServer creates the REST front end.
func NewRESTServer(config RESTConfig, service Facade, checker *HealthChecker, logger *slog.Logger, metrics *instrumentation.Metrics) *RESTServer {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &RESTServer{
		config:  config,
		service: service,
		checker: checker,
		logger:  logger,
		metrics: metrics,
	}
}

// apiRoutes lists the served routes, returned by the root endpoint and
// in 404 responses.
var apiRoutes = []string{
	"GET /",
	"GET /health",
	"GET /health/simple",
	"GET /health/ready",
	"GET /api/tasks",
	"POST /api/tasks",
	"PATCH /api/tasks/{id}",
	"POST /api/tasks/{id}/complete",
	"POST /api/tasks/{id}/reopen",
	"DELETE /api/tasks/{id}",
	"GET /api/projects",
	"POST /api/projects",
	"GET /api/labels",
	"GET /api/account",
}

// Handler builds the route table.
func (s *RESTServer) Handler() http.Handler {
	mux := http.NewServeMux()

	s.checker.RegisterHealthEndpoints(mux)

	mux.HandleFunc("GET /{$}", s.handleRoot)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.handleCompleteTask)
	mux.HandleFunc("POST /api/tasks/{id}/reopen", s.handleReopenTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)

	mux.HandleFunc("GET /api/labels", s.handleListLabels)
	mux.HandleFunc("GET /api/account", s.handleAccount)

	mux.HandleFunc("/", s.handleNotFound)

	return s.withObservability(mux)
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withObservability logs every request and records the HTTP metric,
// labelled by route pattern rather than raw path to keep cardinality
// bounded.
func (s *RESTServer) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		pattern := r.Pattern
		if pattern == "" {
			pattern = r.URL.Path
		}

		s.metrics.RecordHTTPRequest(r.Context(), r.Method, pattern, recorder.status, duration)
		s.logger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
			slog.String(logging.KeyMethod, r.Method),
			slog.String(logging.KeyPath, r.URL.Path),
			slog.Int("status_code", recorder.status),
			slog.Duration(logging.KeyDuration, duration),
		)
	})
}

func (s *RESTServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]interface{}{
		"name":      s.config.ServiceName,
		"version":   s.config.ServiceVersion,
		"endpoints": apiRoutes,
	})
}

func (s *RESTServer) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"success":          false,
		"error":            "route not found: " + r.Method + " " + r.URL.Path,
		"available_routes": apiRoutes,
	})
}

// filterFromQuery maps the listing query parameters onto a task
// filter. Unknown parameters are ignored.
func filterFromQuery(r *http.Request) todoist.TaskFilter {
	q := r.URL.Query()
	filter := todoist.TaskFilter{
		ProjectID: q.Get("project_id"),
		SectionID: q.Get("section_id"),
		Label:     q.Get("label"),
		Filter:    q.Get("filter"),
		Lang:      q.Get("lang"),
	}
	if ids := q.Get("ids"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.IDs = append(filter.IDs, id)
			}
		}
	}
	return filter
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, todoist.NewValidationError("request body unreadable: "+err.Error(), nil)
	}
	return body, nil
}

func (s *RESTServer) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.service.ListTasks(r.Context(), filterFromQuery(r))
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeList(w, tasks, len(tasks))
}

func (s *RESTServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}

	input, err := todoist.ValidateCreateTaskInput(body)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}

	task, err := s.service.CreateTask(r.Context(), *input)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeData(w, http.StatusCreated, task)
}

func (s *RESTServer) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}

	input, err := todoist.ValidateUpdateTaskInput(body)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}

	task, err := s.service.UpdateTask(r.Context(), r.PathValue("id"), *input)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeData(w, http.StatusOK, task)
}

func (s *RESTServer) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.CloseTask(r.Context(), id); err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"id": id, "completed": true})
}

func (s *RESTServer) handleReopenTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.ReopenTask(r.Context(), id); err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"id": id, "completed": false})
}

func (s *RESTServer) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteTask(r.Context(), id); err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true})
}

func (s *RESTServer) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.service.ListProjects(r.Context())
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeList(w, projects, len(projects))
}

func (s *RESTServer) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}

	input, err := todoist.ValidateCreateProjectInput(body)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}

	project, err := s.service.CreateProject(r.Context(), *input)
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeData(w, http.StatusCreated, project)
}

func (s *RESTServer) handleListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.service.ListLabels(r.Context())
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeList(w, labels, len(labels))
}

func (s *RESTServer) handleAccount(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.AccountInfo(r.Context())
	if err != nil {
		writeError(w, err, s.config.Development)
		return
	}
	writeData(w, http.StatusOK, info)
}

// Start starts the API server in a blocking manner.
func (s *RESTServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("starting api server", "addr", s.config.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the API server.
func (s *RESTServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down api server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
