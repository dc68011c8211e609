// Package shared holds the context passed to all CLI commands.
package shared

import (
	"github.com/go-ports/focusflow/internal/config"
	"github.com/go-ports/focusflow/internal/service"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// Home overrides the focus home directory.
	// When empty, resolution falls through to FOCUS_HOME env var → persisted config → ~/.focusflow.
	Home string

	// LogLevel is the minimum slog level written to stderr.
	LogLevel string
}

// ResolvedHome returns the --home value or the resolved default.
func (c *Context) ResolvedHome() string {
	if c.Home != "" {
		return c.Home
	}
	return config.GetHome()
}

// OpenService opens the service for the resolved home. Callers must Close it.
func (c *Context) OpenService() (*service.Service, error) {
	return service.New(c.Home)
}
