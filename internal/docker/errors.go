package docker

import (
	"errors"
	"fmt"
)

// ErrInvalidOtherFiles is returned when the compose auxiliary-files argument
// is not a JSON object.
var ErrInvalidOtherFiles = errors.New("other_files must be a json object")

// maxErrorBody caps how much of a non-JSON response is kept in a ResponseError.
const maxErrorBody = 256

// ResponseError reports a Docker-manager response whose body is not JSON.
type ResponseError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("docker: %s: non-JSON response (HTTP %d, empty body)", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("docker: %s: non-JSON response (HTTP %d): %s", e.Endpoint, e.StatusCode, e.Body)
}

func newResponseError(endpoint string, status int, body []byte) *ResponseError {
	if len(body) > maxErrorBody {
		body = append(body[:maxErrorBody:maxErrorBody], "..."...)
	}
	return &ResponseError{Endpoint: endpoint, StatusCode: status, Body: string(body)}
}
