package docker

import (
	"encoding/json"
	"time"

	"github.com/jamesprial/docker-manager-mcp/internal/safety"
	"github.com/jamesprial/docker-manager-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
)

// Guards holds the name filters applied before a call is relayed. Nil
// filters allow every name.
type Guards struct {
	Containers *safety.Filter
	Networks   *safety.Filter
}

// DockerTools returns a slice of tool registrations for every Docker-manager
// MCP tool, wired to mgr, the name guards and the audit logger.
func DockerTools(mgr DockerManager, guards Guards, audit *safety.AuditLogger) []tools.Registration {
	return []tools.Registration{
		toolPullImage(mgr, audit),
		toolListImages(mgr, audit),

		toolCreateContainer(mgr, guards, audit),
		toolRunContainerByCompose(mgr, audit),
		toolFetchContainerLogs(mgr, guards, audit),
		toolStopContainer(mgr, guards, audit),
		toolStartContainer(mgr, guards, audit),
		toolRestartContainer(mgr, guards, audit),
		toolRemoveContainer(mgr, guards, audit),
		toolFetchContainerInfo(mgr, guards, audit),

		toolCreateExecSession(mgr, guards, audit),
		toolExecuteCommandInSession(mgr, guards, audit),
		toolCloseExecSession(mgr, guards, audit),
		toolGetMoreSessionOutput(mgr, guards, audit),

		toolWaitForSeconds(audit),

		toolCreateNetwork(mgr, guards, audit),
		toolDeleteNetwork(mgr, guards, audit),
		toolListNetworks(mgr, audit),
		toolNetworkInfo(mgr, guards, audit),
		toolConnectNetwork(mgr, guards, audit),
		toolDisconnectNetwork(mgr, guards, audit),
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// failure audits err and converts it to an error result.
func failure(audit *safety.AuditLogger, toolName string, params map[string]any, err error, start time.Time) *mcp.CallToolResult {
	tools.LogAudit(audit, toolName, params, "error: "+err.Error(), start)
	return tools.ErrorResult(err.Error())
}

// denied audits a filtered call and converts it to an error result.
func denied(audit *safety.AuditLogger, toolName string, params map[string]any, err error, start time.Time) *mcp.CallToolResult {
	tools.LogAudit(audit, toolName, params, "denied", start)
	return tools.ErrorResult(err.Error())
}

// relayed turns the outcome of a DockerManager call into a tool result,
// passing the manager's JSON through unchanged.
func relayed(audit *safety.AuditLogger, toolName string, params map[string]any, raw json.RawMessage, err error, start time.Time) *mcp.CallToolResult {
	if err != nil {
		return failure(audit, toolName, params, err, start)
	}
	tools.LogAudit(audit, toolName, params, "ok", start)
	return tools.RawJSONResult(raw)
}
