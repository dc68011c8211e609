// Package reindexcmd implements the `focus reindex` command.
package reindexcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
)

// Command implements `focus reindex`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the reindex command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the plan vector index with the current embedding provider",
		RunE:  c.run,
	}
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

	total, err := svc.CountPlans("")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if total == 0 {
		fmt.Fprintln(out, "No plans to reindex.")
		return nil
	}

	fmt.Fprintf(out, "Reindexing %d plans with %s/%s...\n",
		total, svc.Config.Embedding.Provider, svc.Config.Embedding.Model)

	result, err := svc.Reindex(cmd.Context(), func(current, count int) {
		fmt.Fprintf(out, "\r  %d/%d", current, count)
		if current == count {
			fmt.Fprintln(out)
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Re-indexed %d plans with %s (%d dims)\n",
		result.Count, result.Model, result.Dim)
	return nil
}
