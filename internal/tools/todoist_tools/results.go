package todoist_tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/todobridge/todobridge/internal/todoist"
)

// successResult wraps data in a success envelope inside a single text
// content block.
func successResult(data interface{}) *mcp.CallToolResult {
	payload, err := json.Marshal(map[string]interface{}{
		"success": true,
		"data":    data,
	})
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(string(payload))
}

// errorResult wraps err in a failure envelope inside a single text
// content block. Errors stay in-band so MCP clients always receive a
// well-formed tool result; the upstream HTTP status rides along for
// api failures and field details for validation failures.
func errorResult(err error) *mcp.CallToolResult {
	envelope := map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}
	if e, ok := todoist.AsError(err); ok {
		switch e.Kind {
		case todoist.KindAPI:
			envelope["status"] = e.Status
		case todoist.KindValidation:
			if len(e.Fields) > 0 {
				envelope["details"] = e.Fields
			}
		}
	}

	payload, marshalErr := json.Marshal(envelope)
	if marshalErr != nil {
		// Fall back to a minimal static envelope
		return mcp.NewToolResultText(`{"success":false,"error":"failed to encode error"}`)
	}
	return mcp.NewToolResultText(string(payload))
}
