package docker

import (
	"context"
	"time"

	"github.com/jamesprial/docker-manager-mcp/internal/safety"
	"github.com/jamesprial/docker-manager-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func toolCreateNetwork(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	const toolName = "create_network"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Create a Docker network. Returns the creation result and a status."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("network_name",
			mcp.Required(),
			mcp.Description("Network name"),
		),
		mcp.WithBoolean("is_internal",
			mcp.Required(),
			mcp.Description("Whether the network is internal (no external connectivity)"),
		),
		mcp.WithString("subnet",
			mcp.Required(),
			mcp.Description("Subnet in CIDR notation, e.g. 172.20.0.0/16"),
		),
		mcp.WithString("ip_range",
			mcp.Description("Allocatable IP range in CIDR notation, e.g. 172.20.10.0/24"),
		),
		mcp.WithString("gateway",
			mcp.Description("Gateway address, e.g. 172.20.0.1"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		spec := NetworkSpec{
			NetworkName: req.GetString("network_name", ""),
			IsInternal:  req.GetBool("is_internal", false),
			Subnet:      req.GetString("subnet", ""),
			IPRange:     req.GetString("ip_range", ""),
			Gateway:     req.GetString("gateway", ""),
		}
		params := map[string]any{
			"network_name": spec.NetworkName,
			"is_internal":  spec.IsInternal,
			"subnet":       spec.Subnet,
			"ip_range":     spec.IPRange,
			"gateway":      spec.Gateway,
		}

		if _, err := req.RequireString("network_name"); err != nil {
			return failure(audit, toolName, params, err, start), nil
		}
		if _, err := req.RequireBool("is_internal"); err != nil {
			return failure(audit, toolName, params, err, start), nil
		}
		if _, err := req.RequireString("subnet"); err != nil {
			return failure(audit, toolName, params, err, start), nil
		}
		if err := guards.Networks.Check(spec.NetworkName); err != nil {
			return denied(audit, toolName, params, err, start), nil
		}

		raw, err := mgr.CreateNetwork(ctx, spec)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolDeleteNetwork(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	const toolName = "delete_network"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Delete a Docker network. Returns the deletion result and a status."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("network_name",
			mcp.Required(),
			mcp.Description("Network name"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		params := map[string]any{"network_name": req.GetString("network_name", "")}

		name, err := req.RequireString("network_name")
		if err != nil {
			return failure(audit, toolName, params, err, start), nil
		}
		if err := guards.Networks.Check(name); err != nil {
			return denied(audit, toolName, params, err, start), nil
		}

		raw, err := mgr.DeleteNetwork(ctx, name)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolListNetworks(mgr DockerManager, audit *safety.AuditLogger) tools.Registration {
	const toolName = "list_networks"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("List all Docker networks. Returns the network details and a status."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		raw, err := mgr.ListNetworks(ctx)
		return relayed(audit, toolName, map[string]any{}, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolNetworkInfo(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	const toolName = "network_info"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Fetch a Docker network's details. Returns the network details and a status."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("network_name",
			mcp.Required(),
			mcp.Description("Network name"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		params := map[string]any{"network_name": req.GetString("network_name", "")}

		name, err := req.RequireString("network_name")
		if err != nil {
			return failure(audit, toolName, params, err, start), nil
		}
		if err := guards.Networks.Check(name); err != nil {
			return denied(audit, toolName, params, err, start), nil
		}

		raw, err := mgr.NetworkInfo(ctx, name)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolConnectNetwork(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	const toolName = "connect_network"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Connect a container to a network. Returns the connection result and a status."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("network_name",
			mcp.Required(),
			mcp.Description("Network name"),
		),
		mcp.WithString("container_name",
			mcp.Required(),
			mcp.Description("Container name"),
		),
		mcp.WithString("ipv4_address",
			mcp.Description("IPv4 address for the container; Docker assigns one when omitted"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		conn := NetworkConnect{
			NetworkName:   req.GetString("network_name", ""),
			ContainerName: req.GetString("container_name", ""),
			IPv4Address:   req.GetString("ipv4_address", ""),
		}
		params := map[string]any{
			"network_name":   conn.NetworkName,
			"container_name": conn.ContainerName,
			"ipv4_address":   conn.IPv4Address,
		}

		if res := checkAttachment(req, guards, audit, toolName, params, start); res != nil {
			return res, nil
		}

		raw, err := mgr.ConnectNetwork(ctx, conn)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolDisconnectNetwork(mgr DockerManager, guards Guards, audit *safety.AuditLogger) tools.Registration {
	const toolName = "disconnect_network"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Disconnect a container from a network. Returns the disconnection result and a status."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("network_name",
			mcp.Required(),
			mcp.Description("Network name"),
		),
		mcp.WithString("container_name",
			mcp.Required(),
			mcp.Description("Container name"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		disc := NetworkDisconnect{
			NetworkName:   req.GetString("network_name", ""),
			ContainerName: req.GetString("container_name", ""),
		}
		params := map[string]any{
			"network_name":   disc.NetworkName,
			"container_name": disc.ContainerName,
		}

		if res := checkAttachment(req, guards, audit, toolName, params, start); res != nil {
			return res, nil
		}

		raw, err := mgr.DisconnectNetwork(ctx, disc)
		return relayed(audit, toolName, params, raw, err, start), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

// checkAttachment validates the network_name/container_name pair shared by
// connect and disconnect. It returns nil when the call may proceed.
func checkAttachment(req mcp.CallToolRequest, guards Guards, audit *safety.AuditLogger, toolName string, params map[string]any, start time.Time) *mcp.CallToolResult {
	network, err := req.RequireString("network_name")
	if err != nil {
		return failure(audit, toolName, params, err, start)
	}
	container, err := req.RequireString("container_name")
	if err != nil {
		return failure(audit, toolName, params, err, start)
	}
	if err := guards.Networks.Check(network); err != nil {
		return denied(audit, toolName, params, err, start)
	}
	if err := guards.Containers.Check(container); err != nil {
		return denied(audit, toolName, params, err, start)
	}
	return nil
}
