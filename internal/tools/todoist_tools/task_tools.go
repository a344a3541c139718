package todoist_tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/todobridge/todobridge/internal/todoist"
)

// createTaskArgKeys are the accepted create_task arguments, forwarded
// verbatim into schema validation.
var createTaskArgKeys = []string{
	"content", "description", "project_id", "section_id", "parent_id",
	"order", "labels", "priority", "due_string", "due_date",
	"due_datetime", "due_lang", "assignee_id",
}

// updateTaskArgKeys are the accepted update_task arguments, minus id.
var updateTaskArgKeys = []string{
	"content", "description", "labels", "priority", "due_string",
	"due_date", "due_datetime", "due_lang", "assignee_id",
}

// registerTaskTools registers the task management tools.
func registerTaskTools(s *mcpserver.MCPServer, deps *toolDeps) error {
	getTasksTool := mcp.NewTool("get_tasks",
		mcp.WithDescription("List active Todoist tasks, optionally narrowed by project, section, label, filter query, or ids"),
		mcp.WithString("project_id",
			mcp.Description("Only return tasks from this project"),
		),
		mcp.WithString("section_id",
			mcp.Description("Only return tasks from this section"),
		),
		mcp.WithString("label",
			mcp.Description("Only return tasks carrying this label name"),
		),
		mcp.WithString("filter",
			mcp.Description("Todoist filter-language query, e.g. 'today | overdue'"),
		),
		mcp.WithString("lang",
			mcp.Description("IETF language tag for interpreting the filter query"),
		),
		mcp.WithString("ids",
			mcp.Description("Comma-separated list of task ids to return"),
		),
	)

	deps.addTool(s, getTasksTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := argsFromRequest(request)

		filter := todoist.TaskFilter{
			ProjectID: stringArg(args, "project_id"),
			SectionID: stringArg(args, "section_id"),
			Label:     stringArg(args, "label"),
			Filter:    stringArg(args, "filter"),
			Lang:      stringArg(args, "lang"),
			IDs:       splitCommaList(stringArg(args, "ids")),
		}

		tasks, err := deps.sc.Service().ListTasks(ctx, filter)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(tasks), nil
	})

	createTaskTool := mcp.NewTool("create_task",
		mcp.WithDescription("Create a new Todoist task"),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The task text, e.g. 'Buy milk'"),
		),
		mcp.WithString("description",
			mcp.Description("Longer free-form description"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project to create the task in (defaults to the inbox)"),
		),
		mcp.WithString("section_id",
			mcp.Description("Section to create the task in"),
		),
		mcp.WithString("parent_id",
			mcp.Description("Parent task id for subtasks"),
		),
		mcp.WithString("labels",
			mcp.Description("Comma-separated list of label names to attach"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority from 1 (normal) to 4 (urgent)"),
		),
		mcp.WithString("due_string",
			mcp.Description("Human-readable due date, e.g. 'tomorrow at 12:00'"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date in YYYY-MM-DD format"),
		),
		mcp.WithString("due_datetime",
			mcp.Description("Due date and time in RFC 3339 format"),
		),
		mcp.WithString("due_lang",
			mcp.Description("Language of due_string, e.g. 'en'"),
		),
		mcp.WithString("assignee_id",
			mcp.Description("User to assign the task to (shared projects only)"),
		),
	)

	deps.addTool(s, createTaskTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := argsFromRequest(request)

		raw, err := json.Marshal(copyArgs(args, createTaskArgKeys...))
		if err != nil {
			return errorResult(err), nil
		}
		input, err := todoist.ValidateCreateTaskInput(raw)
		if err != nil {
			return errorResult(err), nil
		}

		task, err := deps.sc.Service().CreateTask(ctx, *input)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(task), nil
	})

	updateTaskTool := mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of an existing Todoist task"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The id of the task to update"),
		),
		mcp.WithString("content",
			mcp.Description("New task text"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("labels",
			mcp.Description("Comma-separated list of replacement label names"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority from 1 (normal) to 4 (urgent)"),
		),
		mcp.WithString("due_string",
			mcp.Description("Human-readable due date"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date in YYYY-MM-DD format"),
		),
		mcp.WithString("due_datetime",
			mcp.Description("Due date and time in RFC 3339 format"),
		),
		mcp.WithString("due_lang",
			mcp.Description("Language of due_string"),
		),
		mcp.WithString("assignee_id",
			mcp.Description("User to assign the task to"),
		),
	)

	deps.addTool(s, updateTaskTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := argsFromRequest(request)

		id := stringArg(args, "id")
		if id == "" {
			return errorResult(todoist.NewValidationError("id is required", nil)), nil
		}

		raw, err := json.Marshal(copyArgs(args, updateTaskArgKeys...))
		if err != nil {
			return errorResult(err), nil
		}
		input, err := todoist.ValidateUpdateTaskInput(raw)
		if err != nil {
			return errorResult(err), nil
		}

		task, err := deps.sc.Service().UpdateTask(ctx, id, *input)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(task), nil
	})

	completeTaskTool := mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a Todoist task as completed"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The id of the task to complete"),
		),
	)

	deps.addTool(s, completeTaskTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := stringArg(argsFromRequest(request), "id")
		if id == "" {
			return errorResult(todoist.NewValidationError("id is required", nil)), nil
		}

		if err := deps.sc.Service().CloseTask(ctx, id); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]interface{}{"id": id, "completed": true}), nil
	})

	reopenTaskTool := mcp.NewTool("reopen_task",
		mcp.WithDescription("Reopen a completed Todoist task"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The id of the task to reopen"),
		),
	)

	deps.addTool(s, reopenTaskTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := stringArg(argsFromRequest(request), "id")
		if id == "" {
			return errorResult(todoist.NewValidationError("id is required", nil)), nil
		}

		if err := deps.sc.Service().ReopenTask(ctx, id); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]interface{}{"id": id, "completed": false}), nil
	})

	deleteTaskTool := mcp.NewTool("delete_task",
		mcp.WithDescription("Permanently delete a Todoist task"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The id of the task to delete"),
		),
	)

	deps.addTool(s, deleteTaskTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := stringArg(argsFromRequest(request), "id")
		if id == "" {
			return errorResult(todoist.NewValidationError("id is required", nil)), nil
		}

		if err := deps.sc.Service().DeleteTask(ctx, id); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]interface{}{"id": id, "deleted": true}), nil
	})

	return nil
}
