package docker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jamesprial/docker-manager-mcp/internal/safety"
	"github.com/jamesprial/docker-manager-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// maxWaitSeconds is the largest wait expressible as a time.Duration.
const maxWaitSeconds = math.MaxInt64 / int64(time.Second)

// waitForSeconds blocks the calling goroutine for the given number of seconds
// or until ctx is done. Negative values do not wait. Waits beyond the range of
// time.Duration are clamped to the maximum duration.
func waitForSeconds(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	timer := time.NewTimer(secondsToDuration(seconds))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func secondsToDuration(seconds int) time.Duration {
	if int64(seconds) > maxWaitSeconds {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds) * time.Second
}

func toolWaitForSeconds(audit *safety.AuditLogger) tools.Registration {
	const toolName = "wait_for_seconds"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Wait for the given number of seconds, e.g. for a container to finish starting. Returns a status."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithNumber("seconds",
			mcp.Required(),
			mcp.Description("Number of seconds to wait"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		params := map[string]any{"seconds": req.GetInt("seconds", 0)}

		seconds, err := req.RequireInt("seconds")
		if err != nil {
			return failure(audit, toolName, params, err, start), nil
		}

		if err := waitForSeconds(ctx, seconds); err != nil {
			return failure(audit, toolName, params, fmt.Errorf("wait interrupted: %w", err), start), nil
		}

		tools.LogAudit(audit, toolName, params, "ok", start)
		return tools.JSONResult(map[string]string{"status": "success"}), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
