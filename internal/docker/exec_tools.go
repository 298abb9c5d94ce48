package docker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jamesprial/docker-manager-mcp/internal/safety"
	"github.com/jamesprial/docker-manager-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Exec sessions live in the Docker-manager. These tools only pass the
// session id through; the agent keeps it between calls.

func toolCreateExecSession(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return containerNameTool("create_exec_session",
		"Open a new interactive shell session in a container (recommended for running commands). "+
			"Returns an exec_session_id and a status.",
		mgr.CreateExecSession, guards, audit,
		mcp.WithDestructiveHintAnnotation(false),
	)
}

func toolExecuteCommandInSession(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	const toolName = "execute_command_in_session"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Run a command in an existing shell session (recommended). Returns the command output and a status."),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("container_name",
			mcp.Required(),
			mcp.Description("Container name"),
		),
		mcp.WithString("cmd",
			mcp.Required(),
			mcp.Description("Command to execute"),
		),
		mcp.WithString("exec_session_id",
			mcp.Required(),
			mcp.Description("Session ID returned by create_exec_session"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		cmd := ExecCommand{
			ContainerName: req.GetString("container_name", ""),
			Cmd:           req.GetString("cmd", ""),
			ExecSessionID: req.GetString("exec_session_id", ""),
		}
		params := map[string]any{
			"container_name":  cmd.ContainerName,
			"cmd":             cmd.Cmd,
			"exec_session_id": cmd.ExecSessionID,
		}

		for _, key := range []string{"container_name", "cmd", "exec_session_id"} {
			if _, err := req.RequireString(key); err != nil {
				return failure(audit, toolName, params, err, start), nil
			}
		}
		if err := guards.Containers.Check(cmd.ContainerName); err != nil {
			return denied(audit, toolName, params, err, start), nil
		}

		raw, err := mgr.ExecuteInSession(ctx, cmd)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolCloseExecSession(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return sessionTool("close_exec_session",
		"Close an interactive shell session. Returns a status.",
		mgr.CloseExecSession, guards, audit,
		mcp.WithDestructiveHintAnnotation(true),
	)
}

func toolGetMoreSessionOutput(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return sessionTool("get_more_session_output",
		"Fetch further output from an interactive shell session. Call it when output may still be pending. "+
			"Returns the session output.",
		mgr.GetMoreSessionOutput, guards, audit,
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// sessionTool builds a tool taking container_name and exec_session_id.
func sessionTool(
	toolName, description string,
	call func(ctx context.Context, ref ExecSessionRef) (json.RawMessage, error),
	guards Guards,
	audit *safety.AuditLogger,
	annotations ...mcp.ToolOption,
) tools.Registration {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("container_name",
			mcp.Required(),
			mcp.Description("Container name"),
		),
		mcp.WithString("exec_session_id",
			mcp.Required(),
			mcp.Description("Session ID returned by create_exec_session"),
		),
	}, annotations...)
	tool := mcp.NewTool(toolName, opts...)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ref := ExecSessionRef{
			ContainerName: req.GetString("container_name", ""),
			ExecSessionID: req.GetString("exec_session_id", ""),
		}
		params := map[string]any{
			"container_name":  ref.ContainerName,
			"exec_session_id": ref.ExecSessionID,
		}

		for _, key := range []string{"container_name", "exec_session_id"} {
			if _, err := req.RequireString(key); err != nil {
				return failure(audit, toolName, params, err, start), nil
			}
		}
		if err := guards.Containers.Check(ref.ContainerName); err != nil {
			return denied(audit, toolName, params, err, start), nil
		}

		raw, err := call(ctx, ref)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
