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

func toolCreateContainer(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	const toolName = "create_container"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Create and start a container. Returns the container details and a status."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("image_name",
			mcp.Required(),
			mcp.Description("Image name"),
		),
		mcp.WithString("container_name",
			mcp.Required(),
			mcp.Description("Container name"),
		),
		mcp.WithString("cmd",
			mcp.Description("Container start command (default: the image's own)"),
		),
		mcp.WithArray("add_caps",
			mcp.Description("Linux capabilities to add, e.g. [\"NET_ADMIN\"]"),
			mcp.WithStringItems(),
		),
		mcp.WithString("host_name",
			mcp.Description("Container hostname"),
		),
		mcp.WithArray("ports_map",
			mcp.Description("Port mappings as host:container, e.g. [\"8080:80\"]"),
			mcp.WithStringItems(),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		spec := ContainerSpec{
			ImageName:     req.GetString("image_name", ""),
			ContainerName: req.GetString("container_name", ""),
			Cmd:           req.GetString("cmd", ""),
			AddCaps:       req.GetStringSlice("add_caps", []string{}),
			HostName:      req.GetString("host_name", ""),
			PortsMap:      req.GetStringSlice("ports_map", []string{}),
		}
		params := map[string]any{
			"image_name":     spec.ImageName,
			"container_name": spec.ContainerName,
			"cmd":            spec.Cmd,
			"add_caps":       spec.AddCaps,
			"host_name":      spec.HostName,
			"ports_map":      spec.PortsMap,
		}

		if _, err := req.RequireString("image_name"); err != nil {
			return failure(audit, toolName, params, err, start), nil
		}
		if _, err := req.RequireString("container_name"); err != nil {
			return failure(audit, toolName, params, err, start), nil
		}
		if err := guards.Containers.Check(spec.ContainerName); err != nil {
			return denied(audit, toolName, params, err, start), nil
		}

		raw, err := mgr.RunContainer(ctx, spec)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolRunContainerByCompose(mgr DockerManager, audit *safety.AuditLogger) tools.Registration {
	const toolName = "run_container_by_compose"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Run containers from a compose file. Returns the container details and a status."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("compose_file",
			mcp.Required(),
			mcp.Description("Compose file content"),
		),
		mcp.WithString("other_files",
			mcp.Description("JSON object string of extra files the compose file needs (Dockerfile, start scripts, ...), "+
				"keyed by filename with the file content as value. Use \"{}\" or an empty string when there are none."),
			mcp.DefaultString("{}"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		composeFile := req.GetString("compose_file", "")
		otherFilesRaw := req.GetString("other_files", "{}")
		params := map[string]any{"compose_file": composeFile, "other_files": otherFilesRaw}

		if _, err := req.RequireString("compose_file"); err != nil {
			return failure(audit, toolName, params, err, start), nil
		}

		otherFiles, err := ParseOtherFiles(otherFilesRaw)
		if err != nil {
			return failure(audit, toolName, params, err, start), nil
		}

		raw, err := mgr.RunCompose(ctx, ComposeBundle{
			ComposeFile: composeFile,
			OtherFiles:  otherFiles,
		})
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolFetchContainerLogs(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return containerNameTool("fetch_container_logs",
		"Fetch a container's logs. Returns the logs and a status.",
		mgr.FetchContainerLogs, guards, audit,
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func toolStopContainer(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return containerNameTool("stop_container",
		"Stop a container. Returns a status.",
		mgr.StopContainer, guards, audit,
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func toolStartContainer(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return containerNameTool("start_container",
		"Start a container. Returns a status.",
		mgr.StartContainer, guards, audit,
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func toolRestartContainer(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return containerNameTool("restart_container",
		"Restart a container. Returns a status.",
		mgr.RestartContainer, guards, audit,
		mcp.WithDestructiveHintAnnotation(true),
	)
}

func toolRemoveContainer(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return containerNameTool("remove_container",
		"Remove a container. Returns a status.",
		mgr.RemoveContainer, guards, audit,
		mcp.WithDestructiveHintAnnotation(true),
	)
}

func toolFetchContainerInfo(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	return containerNameTool("fetch_container_info",
		"Fetch a container's details. Returns the container details and a status.",
		mgr.FetchContainerInfo, guards, audit,
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// containerNameTool builds a tool whose only argument is container_name and
// which relays it through call.
func containerNameTool(
	toolName, description string,
	call func(ctx context.Context, containerName string) (json.RawMessage, error),
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
	}, annotations...)
	tool := mcp.NewTool(toolName, opts...)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		params := map[string]any{"container_name": req.GetString("container_name", "")}

		name, err := req.RequireString("container_name")
		if err != nil {
			return failure(audit, toolName, params, err, start), nil
		}
		if err := guards.Containers.Check(name); err != nil {
			return denied(audit, toolName, params, err, start), nil
		}

		raw, err := call(ctx, name)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
