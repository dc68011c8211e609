// Package servecmd implements the `focus serve` command.
package servecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
	"github.com/go-ports/focusflow/internal/httpapi"
)

// Command implements `focus serve`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	addr string
}

// New creates the serve command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.addr, "addr", "", "Listen address (default: server.addr from config.yaml)")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.OpenService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if c.addr != "" {
		svc.Config.Server.Addr = c.addr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving FocusFlow API on http://%s (Ctrl-C to stop)\n", svc.Config.Server.Addr)
	return httpapi.Serve(cmd.Context(), svc)
}
