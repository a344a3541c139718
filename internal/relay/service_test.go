package relay

import (
	"context"
	"testing"
	"time"

	"github.com/todobridge/todobridge/internal/todoist"
)

// stubAPI implements API with canned results and call counting.
type stubAPI struct {
	tasks    []todoist.Task
	projects []todoist.Project
	labels   []todoist.Label

	tasksErr    error
	projectsErr error

	projectsDelay time.Duration

	listTasksCalls    int
	listProjectsCalls int
	closeTaskCalls    int
}

func (s *stubAPI) ListTasks(ctx context.Context, filter todoist.TaskFilter) ([]todoist.Task, error) {
	s.listTasksCalls++
	if s.tasksErr != nil {
		return nil, s.tasksErr
	}
	return s.tasks, nil
}

func (s *stubAPI) GetTask(ctx context.Context, id string) (*todoist.Task, error) {
	return &todoist.Task{ID: id, Content: "stub"}, nil
}

func (s *stubAPI) CreateTask(ctx context.Context, input todoist.CreateTaskInput) (*todoist.Task, error) {
	return &todoist.Task{ID: "new", Content: input.Content}, nil
}

func (s *stubAPI) UpdateTask(ctx context.Context, id string, input todoist.UpdateTaskInput) (*todoist.Task, error) {
	return &todoist.Task{ID: id, Content: input.Content}, nil
}

func (s *stubAPI) CloseTask(ctx context.Context, id string) error {
	s.closeTaskCalls++
	return nil
}

func (s *stubAPI) ReopenTask(ctx context.Context, id string) error { return nil }
func (s *stubAPI) DeleteTask(ctx context.Context, id string) error { return nil }

func (s *stubAPI) ListProjects(ctx context.Context) ([]todoist.Project, error) {
	s.listProjectsCalls++
	if s.projectsDelay > 0 {
		time.Sleep(s.projectsDelay)
	}
	if s.projectsErr != nil {
		return nil, s.projectsErr
	}
	return s.projects, nil
}

func (s *stubAPI) GetProject(ctx context.Context, id string) (*todoist.Project, error) {
	return &todoist.Project{ID: id, Name: "stub"}, nil
}

func (s *stubAPI) CreateProject(ctx context.Context, input todoist.CreateProjectInput) (*todoist.Project, error) {
	return &todoist.Project{ID: "new", Name: input.Name}, nil
}

func (s *stubAPI) UpdateProject(ctx context.Context, id string, input todoist.UpdateProjectInput) (*todoist.Project, error) {
	return &todoist.Project{ID: id, Name: input.Name}, nil
}

func (s *stubAPI) DeleteProject(ctx context.Context, id string) error { return nil }

func (s *stubAPI) ListLabels(ctx context.Context) ([]todoist.Label, error) {
	return s.labels, nil
}

func (s *stubAPI) GetLabel(ctx context.Context, id string) (*todoist.Label, error) {
	return &todoist.Label{ID: id, Name: "stub"}, nil
}

func TestListTasksPassThrough(t *testing.T) {
	api := &stubAPI{tasks: []todoist.Task{{ID: "1", Content: "a"}, {ID: "2", Content: "b"}}}
	service := NewService(api, nil, nil)

	tasks, err := service.ListTasks(context.Background(), todoist.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(tasks))
	}
	if api.listTasksCalls != 1 {
		t.Errorf("expected exactly one upstream call, got %d", api.listTasksCalls)
	}
}

func TestErrorsPropagateUnchanged(t *testing.T) {
	upstream := todoist.NewAPIError(404, "", "Task not found")
	api := &stubAPI{tasksErr: upstream}
	service := NewService(api, nil, nil)

	_, err := service.ListTasks(context.Background(), todoist.TaskFilter{})
	if err != upstream {
		t.Fatalf("expected the upstream error to propagate unchanged, got %v", err)
	}
}

func TestCloseTaskDelegates(t *testing.T) {
	api := &stubAPI{}
	service := NewService(api, nil, nil)

	if err := service.CloseTask(context.Background(), "7"); err != nil {
		t.Fatalf("CloseTask: %v", err)
	}
	if api.closeTaskCalls != 1 {
		t.Errorf("expected one close call, got %d", api.closeTaskCalls)
	}
}

func TestHealthCheck(t *testing.T) {
	service := NewService(&stubAPI{}, nil, nil)
	if !service.HealthCheck(context.Background()) {
		t.Error("expected healthy with working upstream")
	}

	failing := NewService(&stubAPI{projectsErr: todoist.NewAPIError(500, "", "")}, nil, nil)
	if failing.HealthCheck(context.Background()) {
		t.Error("expected unhealthy with failing upstream")
	}
}

func TestAccountInfoComposesCounts(t *testing.T) {
	api := &stubAPI{
		tasks:    []todoist.Task{{ID: "1", Content: "a"}},
		projects: []todoist.Project{{ID: "p1", Name: "Inbox"}, {ID: "p2", Name: "Work"}},
	}
	service := NewService(api, nil, nil)

	info, err := service.AccountInfo(context.Background())
	if err != nil {
		t.Fatalf("AccountInfo: %v", err)
	}
	if info.ProjectCount != 2 || info.TaskCount != 1 {
		t.Errorf("expected 2 projects and 1 task, got %+v", info)
	}
	if api.listTasksCalls != 1 || api.listProjectsCalls != 1 {
		t.Errorf("expected one call each, got tasks=%d projects=%d",
			api.listTasksCalls, api.listProjectsCalls)
	}
}

// The aggregate fails with the first error observed: the task listing
// fails immediately while the project listing is still in flight.
func TestAccountInfoFirstErrorWins(t *testing.T) {
	taskErr := todoist.NewAPIError(403, "", "Forbidden")
	api := &stubAPI{
		tasksErr:      taskErr,
		projects:      []todoist.Project{{ID: "p1", Name: "Inbox"}},
		projectsDelay: 50 * time.Millisecond,
	}
	service := NewService(api, nil, nil)

	info, err := service.AccountInfo(context.Background())
	if err != taskErr {
		t.Fatalf("expected the task listing error, got %v", err)
	}
	if info != nil {
		t.Errorf("expected no partial data, got %+v", info)
	}
	// Both sub-calls ran even though one failed.
	if api.listProjectsCalls != 1 {
		t.Errorf("expected the project listing to have been issued, got %d calls", api.listProjectsCalls)
	}
}
