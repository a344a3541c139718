package todoist_tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/todobridge/todobridge/internal/todoist"
)

// createProjectArgKeys are the accepted create_project arguments.
var createProjectArgKeys = []string{
	"name", "color", "parent_id", "is_favorite", "view_style",
}

// registerProjectTools registers the project management tools.
func registerProjectTools(s *mcpserver.MCPServer, deps *toolDeps) error {
	getProjectsTool := mcp.NewTool("get_projects",
		mcp.WithDescription("List all Todoist projects"),
	)

	deps.addTool(s, getProjectsTool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projects, err := deps.sc.Service().ListProjects(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(projects), nil
	})

	createProjectTool := mcp.NewTool("create_project",
		mcp.WithDescription("Create a new Todoist project"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The project name"),
		),
		mcp.WithString("color",
			mcp.Description("Color name, e.g. 'red' or 'berry_red'"),
		),
		mcp.WithString("parent_id",
			mcp.Description("Parent project id for nested projects"),
		),
		mcp.WithBoolean("is_favorite",
			mcp.Description("Mark the project as a favorite"),
		),
		mcp.WithString("view_style",
			mcp.Description("Display style: 'list' or 'board'"),
		),
	)

	deps.addTool(s, createProjectTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := argsFromRequest(request)

		raw, err := json.Marshal(copyArgs(args, createProjectArgKeys...))
		if err != nil {
			return errorResult(err), nil
		}
		input, err := todoist.ValidateCreateProjectInput(raw)
		if err != nil {
			return errorResult(err), nil
		}

		project, err := deps.sc.Service().CreateProject(ctx, *input)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(project), nil
	})

	return nil
}

// registerLabelTools registers the label tools.
func registerLabelTools(s *mcpserver.MCPServer, deps *toolDeps) error {
	getLabelsTool := mcp.NewTool("get_labels",
		mcp.WithDescription("List all personal Todoist labels"),
	)

	deps.addTool(s, getLabelsTool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		labels, err := deps.sc.Service().ListLabels(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(labels), nil
	})

	return nil
}

// registerHealthTools registers the connectivity check tool.
func registerHealthTools(s *mcpserver.MCPServer, deps *toolDeps) error {
	healthCheckTool := mcp.NewTool("health_check",
		mcp.WithDescription("Check connectivity to the Todoist API"),
	)

	deps.addTool(s, healthCheckTool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		healthy := deps.sc.Service().HealthCheck(ctx)
		return successResult(map[string]interface{}{"healthy": healthy}), nil
	})

	return nil
}
