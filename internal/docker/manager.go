package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jamesprial/docker-manager-mcp/internal/config"
	"github.com/rs/zerolog"
)

// Endpoint names under {base_url}/api/.
const (
	endpointPullImage            = "pull_image"
	endpointListImages           = "list_images"
	endpointRunContainer         = "run_container"
	endpointRunCompose           = "run_container_by_compose"
	endpointFetchContainerLogs   = "fetch_container_logs"
	endpointStopContainer        = "stop_container"
	endpointStartContainer       = "start_container"
	endpointRestartContainer     = "restart_container"
	endpointDeleteContainer      = "delete_container"
	endpointFetchContainerInfo   = "fetch_container_info"
	endpointCreateExecSession    = "create_exec_session"
	endpointExecuteInSession     = "execute_command_in_session"
	endpointCloseExecSession     = "close_exec_session"
	endpointGetMoreSessionOutput = "get_more_session_output"
	endpointCreateNetwork        = "create_network"
	endpointDeleteNetwork        = "delete_network"
	endpointListNetworks         = "list_networks"
	endpointNetworkInfo          = "network_info"
	endpointConnectNetwork       = "connect_network"
	endpointDisconnectNetwork    = "disconnect_network"
)

// RequestIDHeader carries a per-request UUID for correlating relay and
// Docker-manager logs.
const RequestIDHeader = "X-Request-ID"

// HTTPManager is the DockerManager implementation that relays every call to
// the Docker-manager HTTP API. It keeps no state between calls and never
// retries.
type HTTPManager struct {
	client *http.Client
	apiURL string
	token  string
	logger zerolog.Logger
}

// NewHTTPManager builds an HTTPManager from cfg. It returns an error if
// cfg.BaseURL is empty. A zero cfg.Timeout leaves the HTTP client without a
// timeout, so long image pulls are bounded only by the caller's context.
func NewHTTPManager(cfg config.ManagerConfig, logger zerolog.Logger) (*HTTPManager, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("docker: manager base URL is required")
	}

	return &HTTPManager{
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		apiURL: strings.TrimRight(cfg.BaseURL, "/") + "/api/",
		token:  cfg.Token,
		logger: logger.With().Str("component", "docker-manager").Logger(),
	}, nil
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// do sends one request to endpoint. A nil body sends no body at all. The
// response body is returned unchanged whenever it is valid JSON, regardless
// of the HTTP status; the Docker-manager reports failures in the payload.
func (m *HTTPManager) do(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("docker: %s: marshal request: %w", endpoint, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.apiURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("docker: %s: build request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if m.token != "" {
		req.Header.Set("Authorization", m.token)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Warn().Err(err).
			Str("method", method).
			Str("endpoint", endpoint).
			Str("request_id", requestID).
			Msg("request failed")
		return nil, fmt.Errorf("docker: %s: request failed: %w", endpoint, err)
	}

	data, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("docker: %s: %w", endpoint, err)
	}

	m.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("relayed")

	if !json.Valid(data) {
		return nil, newResponseError(endpoint, resp.StatusCode, data)
	}
	return json.RawMessage(data), nil
}

func (m *HTTPManager) post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return m.do(ctx, http.MethodPost, endpoint, body)
}

// readBody reads the full response body and closes it.
func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// Images
// ---------------------------------------------------------------------------

// PullImage asks the manager to pull imageName.
func (m *HTTPManager) PullImage(ctx context.Context, imageName string) (json.RawMessage, error) {
	return m.post(ctx, endpointPullImage, imageRequest{ImageName: imageName})
}

// ListImages lists local images. The request carries no body.
func (m *HTTPManager) ListImages(ctx context.Context) (json.RawMessage, error) {
	return m.post(ctx, endpointListImages, nil)
}

// ---------------------------------------------------------------------------
// Containers
// ---------------------------------------------------------------------------

// RunContainer creates and starts a container. Nil slices are sent as empty
// arrays.
func (m *HTTPManager) RunContainer(ctx context.Context, spec ContainerSpec) (json.RawMessage, error) {
	if spec.AddCaps == nil {
		spec.AddCaps = []string{}
	}
	if spec.PortsMap == nil {
		spec.PortsMap = []string{}
	}
	return m.post(ctx, endpointRunContainer, spec)
}

// RunCompose deploys a compose bundle. A nil OtherFiles map is sent as {}.
func (m *HTTPManager) RunCompose(ctx context.Context, bundle ComposeBundle) (json.RawMessage, error) {
	if bundle.OtherFiles == nil {
		bundle.OtherFiles = map[string]any{}
	}
	return m.post(ctx, endpointRunCompose, bundle)
}

func (m *HTTPManager) FetchContainerLogs(ctx context.Context, containerName string) (json.RawMessage, error) {
	return m.post(ctx, endpointFetchContainerLogs, containerRequest{ContainerName: containerName})
}

func (m *HTTPManager) StopContainer(ctx context.Context, containerName string) (json.RawMessage, error) {
	return m.post(ctx, endpointStopContainer, containerRequest{ContainerName: containerName})
}

func (m *HTTPManager) StartContainer(ctx context.Context, containerName string) (json.RawMessage, error) {
	return m.post(ctx, endpointStartContainer, containerRequest{ContainerName: containerName})
}

func (m *HTTPManager) RestartContainer(ctx context.Context, containerName string) (json.RawMessage, error) {
	return m.post(ctx, endpointRestartContainer, containerRequest{ContainerName: containerName})
}

// RemoveContainer deletes a container via the manager's delete_container
// endpoint.
func (m *HTTPManager) RemoveContainer(ctx context.Context, containerName string) (json.RawMessage, error) {
	return m.post(ctx, endpointDeleteContainer, containerRequest{ContainerName: containerName})
}

func (m *HTTPManager) FetchContainerInfo(ctx context.Context, containerName string) (json.RawMessage, error) {
	return m.post(ctx, endpointFetchContainerInfo, containerRequest{ContainerName: containerName})
}

// ---------------------------------------------------------------------------
// Exec sessions
// ---------------------------------------------------------------------------

// CreateExecSession opens an interactive shell session. The response carries
// the exec_session_id the caller must pass to later session calls.
func (m *HTTPManager) CreateExecSession(ctx context.Context, containerName string) (json.RawMessage, error) {
	return m.post(ctx, endpointCreateExecSession, containerRequest{ContainerName: containerName})
}

func (m *HTTPManager) ExecuteInSession(ctx context.Context, cmd ExecCommand) (json.RawMessage, error) {
	return m.post(ctx, endpointExecuteInSession, cmd)
}

func (m *HTTPManager) CloseExecSession(ctx context.Context, ref ExecSessionRef) (json.RawMessage, error) {
	return m.post(ctx, endpointCloseExecSession, ref)
}

func (m *HTTPManager) GetMoreSessionOutput(ctx context.Context, ref ExecSessionRef) (json.RawMessage, error) {
	return m.post(ctx, endpointGetMoreSessionOutput, ref)
}

// ---------------------------------------------------------------------------
// Networks
// ---------------------------------------------------------------------------

func (m *HTTPManager) CreateNetwork(ctx context.Context, spec NetworkSpec) (json.RawMessage, error) {
	return m.post(ctx, endpointCreateNetwork, spec)
}

func (m *HTTPManager) DeleteNetwork(ctx context.Context, networkName string) (json.RawMessage, error) {
	return m.post(ctx, endpointDeleteNetwork, networkRequest{NetworkName: networkName})
}

// ListNetworks is the only GET in the API and carries no body.
func (m *HTTPManager) ListNetworks(ctx context.Context) (json.RawMessage, error) {
	return m.do(ctx, http.MethodGet, endpointListNetworks, nil)
}

func (m *HTTPManager) NetworkInfo(ctx context.Context, networkName string) (json.RawMessage, error) {
	return m.post(ctx, endpointNetworkInfo, networkRequest{NetworkName: networkName})
}

func (m *HTTPManager) ConnectNetwork(ctx context.Context, req NetworkConnect) (json.RawMessage, error) {
	return m.post(ctx, endpointConnectNetwork, req)
}

func (m *HTTPManager) DisconnectNetwork(ctx context.Context, req NetworkDisconnect) (json.RawMessage, error) {
	return m.post(ctx, endpointDisconnectNetwork, req)
}
