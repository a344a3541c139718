package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/todobridge/todobridge/internal/instrumentation"
	"github.com/todobridge/todobridge/internal/logging"
	"github.com/todobridge/todobridge/internal/todoist"
)

// API is the set of Todoist operations the facade depends on. The
// concrete *todoist.Client satisfies it; tests substitute a stub.
type API interface {
	ListTasks(ctx context.Context, filter todoist.TaskFilter) ([]todoist.Task, error)
	GetTask(ctx context.Context, id string) (*todoist.Task, error)
	CreateTask(ctx context.Context, input todoist.CreateTaskInput) (*todoist.Task, error)
	UpdateTask(ctx context.Context, id string, input todoist.UpdateTaskInput) (*todoist.Task, error)
	CloseTask(ctx context.Context, id string) error
	ReopenTask(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error

	ListProjects(ctx context.Context) ([]todoist.Project, error)
	GetProject(ctx context.Context, id string) (*todoist.Project, error)
	CreateProject(ctx context.Context, input todoist.CreateProjectInput) (*todoist.Project, error)
	UpdateProject(ctx context.Context, id string, input todoist.UpdateProjectInput) (*todoist.Project, error)
	DeleteProject(ctx context.Context, id string) error

	ListLabels(ctx context.Context) ([]todoist.Label, error)
	GetLabel(ctx context.Context, id string) (*todoist.Label, error)
}

// Service is the transport-agnostic facade shared by the REST and MCP
// front ends. Every operation passes through to exactly one upstream
// call with uniform logging and metrics; errors propagate unchanged
// and nothing is retried or cached.
type Service struct {
	api     API
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewService creates a facade over the given API.
func NewService(api API, logger *slog.Logger, metrics *instrumentation.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Service{api: api, logger: logger, metrics: metrics}
}

// observe logs an operation outcome and records its metric.
func (s *Service) observe(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	duration := time.Since(start)
	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	s.metrics.RecordUpstreamOperation(ctx, op, status, duration)

	logAttrs := append([]slog.Attr{
		logging.Operation(op),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
		logging.Err(err),
	}, attrs...)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "operation failed", logAttrs...)
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "operation completed", logAttrs...)
}

// ListTasks returns active tasks, optionally narrowed by filter.
func (s *Service) ListTasks(ctx context.Context, filter todoist.TaskFilter) ([]todoist.Task, error) {
	start := time.Now()
	tasks, err := s.api.ListTasks(ctx, filter)
	s.observe(ctx, "list_tasks", start, err, slog.Int("count", len(tasks)))
	return tasks, err
}

// GetTask retrieves a single task.
func (s *Service) GetTask(ctx context.Context, id string) (*todoist.Task, error) {
	start := time.Now()
	task, err := s.api.GetTask(ctx, id)
	s.observe(ctx, "get_task", start, err, slog.String("task_id", id))
	return task, err
}

// CreateTask creates a task from a validated input.
func (s *Service) CreateTask(ctx context.Context, input todoist.CreateTaskInput) (*todoist.Task, error) {
	start := time.Now()
	task, err := s.api.CreateTask(ctx, input)
	attrs := []slog.Attr{slog.String("project_id", input.ProjectID)}
	if task != nil {
		attrs = append(attrs, slog.String("task_id", task.ID))
	}
	s.observe(ctx, "create_task", start, err, attrs...)
	return task, err
}

// UpdateTask applies a partial update to a task.
func (s *Service) UpdateTask(ctx context.Context, id string, input todoist.UpdateTaskInput) (*todoist.Task, error) {
	start := time.Now()
	task, err := s.api.UpdateTask(ctx, id, input)
	s.observe(ctx, "update_task", start, err, slog.String("task_id", id))
	return task, err
}

// CloseTask marks a task as completed.
func (s *Service) CloseTask(ctx context.Context, id string) error {
	start := time.Now()
	err := s.api.CloseTask(ctx, id)
	s.observe(ctx, "close_task", start, err, slog.String("task_id", id))
	return err
}

// ReopenTask reopens a completed task.
func (s *Service) ReopenTask(ctx context.Context, id string) error {
	start := time.Now()
	err := s.api.ReopenTask(ctx, id)
	s.observe(ctx, "reopen_task", start, err, slog.String("task_id", id))
	return err
}

// DeleteTask deletes a task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	start := time.Now()
	err := s.api.DeleteTask(ctx, id)
	s.observe(ctx, "delete_task", start, err, slog.String("task_id", id))
	return err
}

// ListProjects returns all projects.
func (s *Service) ListProjects(ctx context.Context) ([]todoist.Project, error) {
	start := time.Now()
	projects, err := s.api.ListProjects(ctx)
	s.observe(ctx, "list_projects", start, err, slog.Int("count", len(projects)))
	return projects, err
}

// GetProject retrieves a single project.
func (s *Service) GetProject(ctx context.Context, id string) (*todoist.Project, error) {
	start := time.Now()
	project, err := s.api.GetProject(ctx, id)
	s.observe(ctx, "get_project", start, err, slog.String("project_id", id))
	return project, err
}

// CreateProject creates a project from a validated input.
func (s *Service) CreateProject(ctx context.Context, input todoist.CreateProjectInput) (*todoist.Project, error) {
	start := time.Now()
	project, err := s.api.CreateProject(ctx, input)
	attrs := []slog.Attr{slog.String("name", input.Name)}
	if project != nil {
		attrs = append(attrs, slog.String("project_id", project.ID))
	}
	s.observe(ctx, "create_project", start, err, attrs...)
	return project, err
}

// UpdateProject applies a partial update to a project.
func (s *Service) UpdateProject(ctx context.Context, id string, input todoist.UpdateProjectInput) (*todoist.Project, error) {
	start := time.Now()
	project, err := s.api.UpdateProject(ctx, id, input)
	s.observe(ctx, "update_project", start, err, slog.String("project_id", id))
	return project, err
}

// DeleteProject deletes a project.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	start := time.Now()
	err := s.api.DeleteProject(ctx, id)
	s.observe(ctx, "delete_project", start, err, slog.String("project_id", id))
	return err
}

// ListLabels returns all personal labels.
func (s *Service) ListLabels(ctx context.Context) ([]todoist.Label, error) {
	start := time.Now()
	labels, err := s.api.ListLabels(ctx)
	s.observe(ctx, "list_labels", start, err, slog.Int("count", len(labels)))
	return labels, err
}

// GetLabel retrieves a single label.
func (s *Service) GetLabel(ctx context.Context, id string) (*todoist.Label, error) {
	start := time.Now()
	label, err := s.api.GetLabel(ctx, id)
	s.observe(ctx, "get_label", start, err, slog.String("label_id", id))
	return label, err
}

// HealthCheck issues one cheap read against upstream and reports
// connectivity. It never returns an error; any failure degrades to
// false.
func (s *Service) HealthCheck(ctx context.Context) bool {
	start := time.Now()
	_, err := s.api.ListProjects(ctx)
	s.observe(ctx, "health_check", start, err)
	return err == nil
}

// AccountInfo summarizes the account by listing projects and tasks.
type AccountInfo struct {
	ProjectCount int `json:"project_count"`
	TaskCount    int `json:"task_count"`
}

type listResult[T any] struct {
	items []T
	err   error
}

// AccountInfo issues the project and task listing calls concurrently
// and composes the result. If either sub-call fails the aggregate
// fails with the first error observed in completion order; partial
// data is never returned.
func (s *Service) AccountInfo(ctx context.Context) (*AccountInfo, error) {
	start := time.Now()

	projectCh := make(chan listResult[todoist.Project], 1)
	taskCh := make(chan listResult[todoist.Task], 1)

	go func() {
		projects, err := s.api.ListProjects(ctx)
		projectCh <- listResult[todoist.Project]{items: projects, err: err}
	}()
	go func() {
		tasks, err := s.api.ListTasks(ctx, todoist.TaskFilter{})
		taskCh <- listResult[todoist.Task]{items: tasks, err: err}
	}()

	var info AccountInfo
	var firstErr error
	for pending := 2; pending > 0; pending-- {
		select {
		case r := <-projectCh:
			if r.err != nil && firstErr == nil {
				firstErr = r.err
			}
			info.ProjectCount = len(r.items)
			projectCh = nil
		case r := <-taskCh:
			if r.err != nil && firstErr == nil {
				firstErr = r.err
			}
			info.TaskCount = len(r.items)
			taskCh = nil
		}
	}

	s.observe(ctx, "account_info", start, firstErr)
	if firstErr != nil {
		return nil, firstErr
	}
	return &info, nil
}
