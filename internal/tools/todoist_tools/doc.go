// Package todoist_tools provides the MCP tools for the Todoist relay.
//
// # Available Tools
//
// Task Management:
//   - get_tasks: List active tasks (with filters)
//   - create_task: Create a new task
//   - update_task: Update fields of an existing task
//   - complete_task: Mark a task as completed
//   - reopen_task: Reopen a completed task
//   - delete_task: Permanently delete a task
//
// Project and Label Management:
//   - get_projects: List all projects
//   - create_project: Create a new project
//   - get_labels: List all personal labels
//
// Diagnostics:
//   - health_check: Check connectivity to the Todoist API
//
// # Error Handling
//
// Every tool returns exactly one text content block containing a JSON
// envelope. Failures stay in-band as {"success":false,"error":...}
// with the upstream HTTP status attached for api failures; tools never
// raise MCP protocol errors for upstream or validation problems.
package todoist_tools
