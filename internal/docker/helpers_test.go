package docker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jamesprial/docker-manager-mcp/internal/config"
	"github.com/jamesprial/docker-manager-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Fake Docker-manager service
// ---------------------------------------------------------------------------

// recordedRequest is one request received by the fake Docker-manager.
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// bodyMap decodes the recorded body as a JSON object.
func (r recordedRequest) bodyMap(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &m), "body %q is not a JSON object", r.Body)
	return m
}

// fakeManager is an httptest server standing in for the Docker-manager. It
// records every request and answers with a fixed status and body.
type fakeManager struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeManager(t *testing.T, status int, body string) *fakeManager {
	t.Helper()
	f := &fakeManager{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   data,
		})
		f.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeManager) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// newTestManager returns an HTTPManager pointed at f.
func newTestManager(t *testing.T, f *fakeManager) *HTTPManager {
	t.Helper()
	mgr, err := NewHTTPManager(config.ManagerConfig{
		BaseURL: f.URL,
		Token:   "test-token",
		Timeout: 5,
	}, zerolog.Nop())
	require.NoError(t, err)
	return mgr
}

// ---------------------------------------------------------------------------
// Tool invocation helpers
// ---------------------------------------------------------------------------

// newCallToolRequest builds an mcp.CallToolRequest with the given arguments map.
func newCallToolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// findTool returns the registration named name.
func findTool(t *testing.T, regs []tools.Registration, name string) tools.Registration {
	t.Helper()
	for _, r := range regs {
		if r.Tool.Name == name {
			return r
		}
	}
	t.Fatalf("tool %q not registered", name)
	return tools.Registration{}
}

// callTool invokes the handler of the named tool with args.
func callTool(t *testing.T, regs []tools.Registration, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	return callToolCtx(t, context.Background(), regs, name, args)
}

func callToolCtx(t *testing.T, ctx context.Context, regs []tools.Registration, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	reg := findTool(t, regs, name)
	result, err := reg.Handler(ctx, newCallToolRequest(args))
	require.NoError(t, err, "handlers report failures in the result, never as Go errors")
	require.NotNil(t, result)
	return result
}

// extractResultText extracts the text of the first content entry.
func extractResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "result has no content entries")
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "first content entry is %T, want TextContent", result.Content[0])
	return tc.Text
}
