package todoist

import "encoding/json"

// Due represents the due sub-record of a task. Date and String are
// always present when Due is set; Datetime and Timezone may be absent
// or null upstream, both decode to nil.
type Due struct {
	Date        string  `json:"date"`
	String      string  `json:"string"`
	IsRecurring bool    `json:"is_recurring"`
	Datetime    *string `json:"datetime,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// Task represents a Todoist task as returned by the REST v2 API.
// Duration and Deadline are inconsistently documented upstream and are
// passed through opaque and unvalidated.
type Task struct {
	ID           string          `json:"id"`
	Content      string          `json:"content"`
	Description  string          `json:"description"`
	IsCompleted  bool            `json:"is_completed"`
	Labels       []string        `json:"labels"`
	Order        int             `json:"order"`
	Priority     int             `json:"priority"`
	ProjectID    string          `json:"project_id"`
	SectionID    string          `json:"section_id,omitempty"`
	ParentID     string          `json:"parent_id,omitempty"`
	AssigneeID   string          `json:"assignee_id,omitempty"`
	AssignerID   string          `json:"assigner_id,omitempty"`
	CreatorID    string          `json:"creator_id"`
	CreatedAt    string          `json:"created_at"`
	CommentCount int             `json:"comment_count"`
	URL          string          `json:"url"`
	Due          *Due            `json:"due,omitempty"`
	Duration     json.RawMessage `json:"duration,omitempty"`
	Deadline     json.RawMessage `json:"deadline,omitempty"`
}

// Project represents a Todoist project.
type Project struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	CommentCount   int    `json:"comment_count"`
	Order          int    `json:"order"`
	Color          string `json:"color"`
	IsShared       bool   `json:"is_shared"`
	IsFavorite     bool   `json:"is_favorite"`
	IsInboxProject bool   `json:"is_inbox_project"`
	IsTeamInbox    bool   `json:"is_team_inbox"`
	ViewStyle      string `json:"view_style"`
	URL            string `json:"url"`
	ParentID       string `json:"parent_id,omitempty"`
}

// Label represents a Todoist label.
type Label struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Order      int    `json:"order"`
	IsFavorite bool   `json:"is_favorite"`
}

// CreateTaskInput is the payload for creating a task. Content is
// required; everything else is optional. due_string, due_date and
// due_datetime all describe the due concept; the caller picks a
// coherent subset, upstream decides on conflicts.
type CreateTaskInput struct {
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	SectionID   string   `json:"section_id,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	Order       int      `json:"order,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	DueString   string   `json:"due_string,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	DueDatetime string   `json:"due_datetime,omitempty"`
	DueLang     string   `json:"due_lang,omitempty"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
}

// UpdateTaskInput is the CreateTaskInput shape with every field
// optional.
type UpdateTaskInput struct {
	Content     string   `json:"content,omitempty"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	DueString   string   `json:"due_string,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	DueDatetime string   `json:"due_datetime,omitempty"`
	DueLang     string   `json:"due_lang,omitempty"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
}

// CreateProjectInput is the payload for creating a project.
type CreateProjectInput struct {
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
	IsFavorite bool   `json:"is_favorite,omitempty"`
	ViewStyle  string `json:"view_style,omitempty"`
}

// UpdateProjectInput is the CreateProjectInput shape with every field
// optional.
type UpdateProjectInput struct {
	Name       string `json:"name,omitempty"`
	Color      string `json:"color,omitempty"`
	IsFavorite *bool  `json:"is_favorite,omitempty"`
	ViewStyle  string `json:"view_style,omitempty"`
}

// TaskFilter narrows a task listing. All fields are optional; Filter
// carries a raw Todoist filter-language query, the rest serialize to
// individual query parameters with IDs joined by comma.
type TaskFilter struct {
	ProjectID string
	SectionID string
	Label     string
	Filter    string
	Lang      string
	IDs       []string
}
