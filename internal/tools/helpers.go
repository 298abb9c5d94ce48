// Package tools provides shared helper utilities for MCP tool handlers.
package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesprial/docker-manager-mcp/internal/safety"
	"github.com/mark3labs/mcp-go/mcp"
)

// JSONResult marshals v to indented JSON and returns an mcp.CallToolResult.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(fmt.Sprintf("marshal result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// RawJSONResult returns raw unchanged as the text of the result.
func RawJSONResult(raw json.RawMessage) *mcp.CallToolResult {
	return mcp.NewToolResultText(string(raw))
}

// ErrorResult returns an mcp.CallToolResult flagged as an error whose text is
// "error: <msg>".
func ErrorResult(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("error: %s", msg))
}

// LogAudit logs a tool invocation to the audit logger, silently ignoring a nil logger.
func LogAudit(audit *safety.AuditLogger, toolName string, params map[string]any, result string, start time.Time) {
	if audit == nil {
		return
	}
	_ = audit.Log(safety.AuditEntry{
		Timestamp: start,
		Tool:      toolName,
		Params:    params,
		Result:    result,
		Duration:  time.Since(start),
	})
}
