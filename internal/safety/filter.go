// Package safety provides name filtering and audit logging for relayed
// Docker-manager tool calls.
package safety

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jamesprial/docker-manager-mcp/internal/config"
)

// ErrNotAllowed is wrapped by Filter.Check when a name is rejected.
var ErrNotAllowed = errors.New("not allowed")

// Filter controls access to named resources using an allowlist and a denylist
// of filepath.Match glob patterns.
//
// Rules:
//   - A nil Filter, or one with both lists empty, allows every name.
//   - The denylist is consulted first and always wins.
//   - A non-empty allowlist must match for the name to be allowed.
type Filter struct {
	kind      string
	allowlist []string
	denylist  []string
}

// NewFilter builds a Filter for resources of the given kind ("container",
// "network") from the configured pattern lists.
func NewFilter(kind string, rf config.ResourceFilter) *Filter {
	return &Filter{
		kind:      kind,
		allowlist: rf.Allowlist,
		denylist:  rf.Denylist,
	}
}

// IsAllowed reports whether name is permitted by this filter.
func (f *Filter) IsAllowed(name string) bool {
	if f == nil {
		return true
	}
	for _, pattern := range f.denylist {
		if matchGlob(pattern, name) {
			return false
		}
	}
	if len(f.allowlist) == 0 {
		return true
	}
	for _, pattern := range f.allowlist {
		if matchGlob(pattern, name) {
			return true
		}
	}
	return false
}

// Check returns an error wrapping ErrNotAllowed if name is rejected.
func (f *Filter) Check(name string) error {
	if f.IsAllowed(name) {
		return nil
	}
	return fmt.Errorf("access to %s %q is %w", f.kind, name, ErrNotAllowed)
}

// matchGlob reports whether name matches pattern. Malformed patterns never
// match.
func matchGlob(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		return false
	}
	return matched
}
