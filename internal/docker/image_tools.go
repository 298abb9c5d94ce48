package docker

import (
	"context"
	"time"

	"github.com/jamesprial/docker-manager-mcp/internal/safety"
	"github.com/jamesprial/docker-manager-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func toolPullImage(mgr DockerManager, audit *safety.AuditLogger) tools.Registration {
	const toolName = "pull_image"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Pull an image from its remote registry. Returns the image details and a status."),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("image_name",
			mcp.Required(),
			mcp.Description("Image name, e.g. nginx:latest"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		params := map[string]any{"image_name": req.GetString("image_name", "")}

		image, err := req.RequireString("image_name")
		if err != nil {
			return failure(audit, toolName, params, err, start), nil
		}

		raw, err := mgr.PullImage(ctx, image)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolListImages(mgr DockerManager, audit *safety.AuditLogger) tools.Registration {
	const toolName = "list_images"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("List all images. Returns the image details and a status."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		raw, err := mgr.ListImages(ctx)
		return relayed(audit, toolName, map[string]any{}, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
