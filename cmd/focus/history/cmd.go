// Package historycmd implements the `focus history` command.
package historycmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
)

// Command implements `focus history`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	limit    int
	category string
}

// New creates the history command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "history",
		Short: "List saved plans, newest first",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.IntVar(&c.limit, "limit", 10, "Maximum number of plans")
	f.StringVar(&c.category, "category", "", "Filter by category")

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

	plans, err := svc.History(c.limit, c.category)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(plans) == 0 {
		fmt.Fprintln(out, "No plans yet.")
		return nil
	}
	for _, p := range plans {
		done := 0
		for i := range p.Tasks {
			if p.Tasks[i].Done() {
				done++
			}
		}
		fmt.Fprintf(out, "%s  %s  [%s] %s  (%d/%d done, %d XP)\n",
			shared.ShortID(p.ID), p.CreatedAt.Format(time.DateOnly), p.Category, p.RawText,
			done, len(p.Tasks), p.TotalXP)
	}
	return nil
}
