package agent

import (
	"context"
	"errors"
	"regexp"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/tooltransport"
)

// toolInvoker is the subset of tooltransport.Client every agent needs.
type toolInvoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (any, error)
}

// scopeGuard holds the compiled cannot_handle trigger patterns for one agent.
// Matching is against the verbatim user query, case-insensitively.
type scopeGuard struct {
	patterns []*regexp.Regexp
	reason   string
}

func newScopeGuard(reason string, raw ...string) scopeGuard {
	patterns := make([]*regexp.Regexp, 0, len(raw))
	for _, p := range raw {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+p))
	}
	return scopeGuard{patterns: patterns, reason: reason}
}

// match reports whether query trips any trigger pattern.
func (g scopeGuard) match(query string) bool {
	for _, p := range g.patterns {
		if p.MatchString(query) {
			return true
		}
	}
	return false
}

// invokeTool calls transport.Invoke and classifies the error per the
// retryable/terminal split the dispatcher relies on: a transport-level fault
// (network, timeout, unreadable body) is retryable; a structured tool-side
// error, including a non-2xx status or a malformed body, is terminal.
func invokeTool(ctx context.Context, transport toolInvoker, tool string, args map[string]any) (any, *models.AgentResult) {
	result, err := transport.Invoke(ctx, tool, args)
	if err == nil {
		return result, nil
	}

	var transportErr *tooltransport.TransportError
	if errors.As(err, &transportErr) {
		r := models.NeedsRetry(transportErr.Error())
		return nil, &r
	}

	r := models.Failure(err.Error())
	return nil, &r
}
