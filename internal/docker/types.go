// Package docker relays Docker container, image, network and exec-session
// operations to an external Docker-manager service and exposes them as MCP
// tools.
package docker

import (
	"context"
	"encoding/json"
)

// ContainerSpec is the body of a run_container call.
type ContainerSpec struct {
	ImageName     string   `json:"image_name"`
	ContainerName string   `json:"container_name"`
	Cmd           string   `json:"cmd"`
	AddCaps       []string `json:"add_caps"`
	HostName      string   `json:"host_name"`
	PortsMap      []string `json:"ports_map"` // "host:container"
}

// ComposeBundle is a compose file plus auxiliary files (Dockerfiles, scripts)
// keyed by filename.
type ComposeBundle struct {
	ComposeFile   string         `json:"compose_file"`
	OtherFiles    map[string]any `json:"other_files"`
	DeleteTempDir bool           `json:"delete_temp_dir"`
}

// ExecCommand runs Cmd inside an existing exec session.
type ExecCommand struct {
	ContainerName string `json:"container_name"`
	Cmd           string `json:"cmd"`
	ExecSessionID string `json:"exec_session_id"`
}

// ExecSessionRef identifies an exec session owned by the Docker-manager.
// The ID is opaque to this package.
type ExecSessionRef struct {
	ExecSessionID string `json:"exec_session_id"`
	ContainerName string `json:"container_name"`
}

// NetworkSpec is the body of a create_network call.
type NetworkSpec struct {
	NetworkName string `json:"network_name"`
	IsInternal  bool   `json:"is_internal"`
	Subnet      string `json:"subnet"`
	IPRange     string `json:"ip_range"`
	Gateway     string `json:"gateway"`
}

// NetworkConnect attaches a container to a network, optionally at a fixed
// IPv4 address.
type NetworkConnect struct {
	NetworkName   string `json:"network_name"`
	ContainerName string `json:"container_name"`
	IPv4Address   string `json:"ipv4_address"`
}

// NetworkDisconnect detaches a container from a network.
type NetworkDisconnect struct {
	NetworkName   string `json:"network_name"`
	ContainerName string `json:"container_name"`
}

type imageRequest struct {
	ImageName string `json:"image_name"`
}

type containerRequest struct {
	ContainerName string `json:"container_name"`
}

type networkRequest struct {
	NetworkName string `json:"network_name"`
}

// DockerManager defines the operations relayed to the Docker-manager service.
// Every method performs exactly one request and returns the response body
// unchanged.
type DockerManager interface {
	PullImage(ctx context.Context, imageName string) (json.RawMessage, error)
	ListImages(ctx context.Context) (json.RawMessage, error)

	RunContainer(ctx context.Context, spec ContainerSpec) (json.RawMessage, error)
	RunCompose(ctx context.Context, bundle ComposeBundle) (json.RawMessage, error)
	FetchContainerLogs(ctx context.Context, containerName string) (json.RawMessage, error)
	StopContainer(ctx context.Context, containerName string) (json.RawMessage, error)
	StartContainer(ctx context.Context, containerName string) (json.RawMessage, error)
	RestartContainer(ctx context.Context, containerName string) (json.RawMessage, error)
	RemoveContainer(ctx context.Context, containerName string) (json.RawMessage, error)
	FetchContainerInfo(ctx context.Context, containerName string) (json.RawMessage, error)

	CreateExecSession(ctx context.Context, containerName string) (json.RawMessage, error)
	ExecuteInSession(ctx context.Context, cmd ExecCommand) (json.RawMessage, error)
	CloseExecSession(ctx context.Context, ref ExecSessionRef) (json.RawMessage, error)
	GetMoreSessionOutput(ctx context.Context, ref ExecSessionRef) (json.RawMessage, error)

	CreateNetwork(ctx context.Context, spec NetworkSpec) (json.RawMessage, error)
	DeleteNetwork(ctx context.Context, networkName string) (json.RawMessage, error)
	ListNetworks(ctx context.Context) (json.RawMessage, error)
	NetworkInfo(ctx context.Context, networkName string) (json.RawMessage, error)
	ConnectNetwork(ctx context.Context, req NetworkConnect) (json.RawMessage, error)
	DisconnectNetwork(ctx context.Context, req NetworkDisconnect) (json.RawMessage, error)
}
